package notification

import (
	"fmt"
	"net/url"
	"strings"
	"text/template"
)

// Template names. Outbox events use their event type as the template name.
const (
	TemplatePickupShipped = "email.pickup_shipped"
	TemplateProduction    = "email.production"
	TemplateFeedback      = "email.feedback"
	TemplateNudgeStage1   = "nudge.stage1"
	TemplateNudgeStage2   = "nudge.stage2"
)

// EmailData is the set of values templates may reference.
type EmailData struct {
	OrderID        string
	JobID          string
	CustomerName   string
	ChildName      string
	TrackingNumber string
	TrackingURL    string
	CourierPartner string
	PreviewURL     string
}

type emailTemplate struct {
	subject *template.Template
	body    *template.Template
}

var templates = map[string]emailTemplate{
	TemplatePickupShipped: mustTemplate(TemplatePickupShipped,
		`{{.ChildName}}'s storybook is on its way!`,
		`Hi {{.CustomerName}},

Good news: order {{.OrderID}} has been picked up by {{if .CourierPartner}}{{.CourierPartner}}{{else}}our courier{{end}}.

Tracking number: {{.TrackingNumber}}
Track it here: {{.TrackingURL}}

Thank you for choosing Diffrun.
`),
	TemplateProduction: mustTemplate(TemplateProduction,
		`Order {{.OrderID}}: {{.ChildName}}'s storybook is now in production`,
		`Hi {{.CustomerName}},

{{.ChildName}}'s personalised storybook has been sent to our printing partner.
We will email you a tracking link as soon as it ships.

Follow your order: https://diffrun.com/track-your-order?job_id={{.JobID}}

Team Diffrun
`),
	TemplateFeedback: mustTemplate(TemplateFeedback,
		`We'd love your feedback on {{.ChildName}}'s Storybook!`,
		`Hi {{.CustomerName}},

We hope {{.ChildName}} is enjoying their storybook. Could you spare a minute to tell us what you think?
Reply to this email with your thoughts, or browse more books at https://diffrun.com.

Team Diffrun
`),
	TemplateNudgeStage1: mustTemplate(TemplateNudgeStage1,
		`{{.ChildName}}'s Diffrun Storybook is waiting!`,
		`Hi {{.CustomerName}},

The preview of {{.ChildName}}'s storybook is ready and waiting for you.
Pick up where you left off: {{.PreviewURL}}

Team Diffrun
`),
	TemplateNudgeStage2: mustTemplate(TemplateNudgeStage2,
		`Final reminder: {{.ChildName}}'s storybook is still waiting`,
		`Hi {{.CustomerName}},

This is a last reminder that {{.ChildName}}'s storybook preview is still saved for you.
Finish your book here: {{.PreviewURL}}

Team Diffrun
`),
}

func mustTemplate(name, subject, body string) emailTemplate {
	return emailTemplate{
		subject: template.Must(template.New(name + ".subject").Parse(subject)),
		body:    template.Must(template.New(name + ".body").Parse(body)),
	}
}

// HasTemplate reports whether name is a known template.
func HasTemplate(name string) bool {
	_, ok := templates[name]
	return ok
}

// NudgeTemplate returns the template for a nudge stage.
func NudgeTemplate(stage int) (string, error) {
	switch stage {
	case 1:
		return TemplateNudgeStage1, nil
	case 2:
		return TemplateNudgeStage2, nil
	default:
		return "", fmt.Errorf("no nudge template for stage %d", stage)
	}
}

// PreviewURL links a customer back to their unpaid preview job.
func PreviewURL(jobID, childName, bookID string) string {
	q := url.Values{}
	q.Set("job_id", jobID)
	q.Set("name", childName)
	q.Set("book_id", bookID)
	return "https://diffrun.com/preview?" + q.Encode()
}

// Compose renders the named template into a message for to. Blank names fall
// back to neutral salutations.
func Compose(name, to string, data EmailData) (Message, error) {
	tmpl, ok := templates[name]
	if !ok {
		return Message{}, fmt.Errorf("unknown email template %q", name)
	}

	data.CustomerName = fallback(data.CustomerName, "there")
	data.ChildName = fallback(data.ChildName, "your child")

	var subject, body strings.Builder
	if err := tmpl.subject.Execute(&subject, data); err != nil {
		return Message{}, fmt.Errorf("render %s subject: %w", name, err)
	}
	if err := tmpl.body.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("render %s body: %w", name, err)
	}

	return Message{To: to, Subject: subject.String(), Body: body.String()}, nil
}

func fallback(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}

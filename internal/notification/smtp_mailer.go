package notification

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	apperrors "github.com/diffrun/opsdesk/internal/errors"
)

// SMTPConfig configures an SMTPMailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPMailer sends plain-text mail through an SMTP relay, upgrading with
// STARTTLS when the server offers it.
type SMTPMailer struct {
	config SMTPConfig
	from   *mail.Address
}

// NewSMTPMailer creates an SMTPMailer. From must be a valid RFC 5322 address.
func NewSMTPMailer(config SMTPConfig) (*SMTPMailer, error) {
	from, err := mail.ParseAddress(config.From)
	if err != nil {
		return nil, apperrors.Wrapf(err, "invalid sender address %q", config.From)
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &SMTPMailer{config: config, from: from}, nil
}

// Send delivers msg in a single SMTP session.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	to, err := mail.ParseAddress(msg.To)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid recipient %q", msg.To)
	}

	ctx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	addr := net.JoinHostPort(m.config.Host, strconv.Itoa(m.config.Port))
	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return apperrors.Wrap(err, "failed to connect to smtp server")
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, m.config.Host)
	if err != nil {
		_ = conn.Close()
		return apperrors.Wrap(err, "failed to start smtp session")
	}
	defer func() {
		_ = client.Close()
	}()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.config.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return apperrors.Wrap(err, "failed to start tls")
		}
	}
	if m.config.Username != "" {
		auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
		if err := client.Auth(auth); err != nil {
			return apperrors.Wrap(err, "smtp authentication failed")
		}
	}

	if err := client.Mail(m.from.Address); err != nil {
		return apperrors.Wrap(err, "smtp MAIL FROM rejected")
	}
	if err := client.Rcpt(to.Address); err != nil {
		return apperrors.Wrap(err, "smtp RCPT TO rejected")
	}

	w, err := client.Data()
	if err != nil {
		return apperrors.Wrap(err, "smtp DATA rejected")
	}
	if _, err := w.Write(m.render(to, msg, time.Now())); err != nil {
		_ = w.Close()
		return apperrors.Wrap(err, "failed to write message")
	}
	if err := w.Close(); err != nil {
		return apperrors.Wrap(err, "smtp server rejected message")
	}

	return client.Quit()
}

func (m *SMTPMailer) render(to *mail.Address, msg Message, now time.Time) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", m.from.String())
	fmt.Fprintf(&buf, "To: %s\r\n", to.String())
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", now.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	buf.Write(bytes.ReplaceAll([]byte(msg.Body), []byte("\n"), []byte("\r\n")))
	return buf.Bytes()
}

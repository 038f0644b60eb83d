package partner

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	apperrors "github.com/diffrun/opsdesk/internal/errors"
)

const cloudprinterName = "cloudprinter"

// CloudprinterConfig configures a CloudprinterClient.
type CloudprinterConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// PrintOrder is the body of a Cloudprinter order submission. The API key is
// filled in by the client.
type PrintOrder struct {
	APIKey    string         `json:"apikey"`
	Reference string         `json:"reference"`
	Email     string         `json:"email"`
	Addresses []PrintAddress `json:"addresses"`
	Items     []PrintItem    `json:"items"`
}

// PrintAddress is a delivery address of a print order.
type PrintAddress struct {
	Type      string `json:"type"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Street1   string `json:"street1"`
	Street2   string `json:"street2"`
	Zip       string `json:"zip"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// PrintItem is one product of a print order.
type PrintItem struct {
	Reference     string        `json:"reference"`
	Product       string        `json:"product"`
	ShippingLevel string        `json:"shipping_level"`
	Title         string        `json:"title"`
	Count         int           `json:"count"`
	Files         []PrintFile   `json:"files"`
	Options       []PrintOption `json:"options"`
}

// PrintFile is a printable file with its checksum.
type PrintFile struct {
	Type   string `json:"type"`
	URL    string `json:"url"`
	MD5Sum string `json:"md5sum"`
}

// PrintOption is a product option such as the page count.
type PrintOption struct {
	Type  string `json:"type"`
	Count string `json:"count"`
}

// CloudprinterClient submits orders to Cloudprinter.
type CloudprinterClient struct {
	http   *resty.Client
	apiKey string
	logger *slog.Logger
}

// NewCloudprinterClient creates a CloudprinterClient.
func NewCloudprinterClient(config CloudprinterConfig, logger *slog.Logger) *CloudprinterClient {
	client := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &CloudprinterClient{
		http:   client,
		apiKey: config.APIKey,
		logger: logger,
	}
}

// AddOrder submits a print order and returns the Cloudprinter order reference.
func (c *CloudprinterClient) AddOrder(ctx context.Context, order PrintOrder) (string, error) {
	if c.apiKey == "" {
		return "", apperrors.Wrap(ErrPartner, "cloudprinter api key is not configured")
	}
	order.APIKey = c.apiKey

	var out struct {
		Reference string `json:"reference"`
		Order     string `json:"order"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(order).
		SetResult(&out).
		Post("orders/add")
	if err != nil {
		return "", apperrors.Wrap(err, "failed to call cloudprinter add order")
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return "", newAPIError(cloudprinterName, "add order", resp.StatusCode(), resp.String())
	}

	reference := out.Reference
	if reference == "" {
		reference = out.Order
	}

	c.logger.Debug("cloudprinter order added",
		slog.String("reference", order.Reference),
		slog.String("cloudprinter_reference", reference),
	)
	return reference, nil
}

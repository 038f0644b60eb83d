package partner

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/diffrun/opsdesk/internal/errors"
)

const shiprocketName = "shiprocket"

// shiprocketTokenTTL is kept well under the partner's 10 day token validity.
const shiprocketTokenTTL = 24 * time.Hour

// ShiprocketConfig configures a ShiprocketClient.
type ShiprocketConfig struct {
	BaseURL  string
	Email    string
	Password string
	Timeout  time.Duration
}

// AdhocOrder is the body of an adhoc order creation.
type AdhocOrder struct {
	OrderID             string      `json:"order_id"`
	OrderDate           string      `json:"order_date"`
	PickupLocation      string      `json:"pickup_location"`
	Comment             string      `json:"comment"`
	BillingCustomerName string      `json:"billing_customer_name"`
	BillingLastName     string      `json:"billing_last_name"`
	BillingAddress      string      `json:"billing_address"`
	BillingAddress2     string      `json:"billing_address_2"`
	BillingCity         string      `json:"billing_city"`
	BillingPincode      string      `json:"billing_pincode"`
	BillingState        string      `json:"billing_state"`
	BillingCountry      string      `json:"billing_country"`
	BillingEmail        string      `json:"billing_email"`
	BillingPhone        string      `json:"billing_phone"`
	ShippingIsBilling   bool        `json:"shipping_is_billing"`
	OrderItems          []AdhocItem `json:"order_items"`
	PaymentMethod       string      `json:"payment_method"`
	SubTotal            float64     `json:"sub_total"`
	Length              float64     `json:"length"`
	Breadth             float64     `json:"breadth"`
	Height              float64     `json:"height"`
	Weight              float64     `json:"weight"`
}

// AdhocItem is one line of an adhoc order.
type AdhocItem struct {
	Name         string  `json:"name"`
	SKU          string  `json:"sku"`
	Units        int     `json:"units"`
	SellingPrice float64 `json:"selling_price"`
	Discount     float64 `json:"discount"`
	Tax          float64 `json:"tax"`
	HSN          string  `json:"hsn"`
}

// AdhocOrderResult holds the identifiers Shiprocket assigned to a new order.
type AdhocOrderResult struct {
	OrderID    ID     `json:"order_id"`
	ShipmentID ID     `json:"shipment_id"`
	Status     string `json:"status"`
}

// AWBAssignment is the courier and tracking number assigned to a shipment.
type AWBAssignment struct {
	AWBCode     string `json:"awb_code"`
	CourierName string `json:"courier_name"`
	CourierID   ID     `json:"courier_company_id"`
}

// PickupRequest is the scheduled pickup for one or more shipments.
type PickupRequest struct {
	ScheduledDate string `json:"pickup_scheduled_date"`
	TokenNumber   string `json:"pickup_token_number"`
}

// TrackActivity is one scan in a shipment's tracking history.
type TrackActivity struct {
	Date          string `json:"date"`
	Status        string `json:"status"`
	Activity      string `json:"activity"`
	Location      string `json:"location"`
	SRStatus      ID     `json:"sr-status"`
	SRStatusLabel string `json:"sr-status-label"`
}

// Tracking is the current state of a shipment looked up by AWB.
type Tracking struct {
	AWB            string
	CourierName    string
	CurrentStatus  string
	ShipmentStatus ID
	OrderID        string
	ETD            string
	Activities     []TrackActivity
}

type shiprocketTrackResponse struct {
	TrackingData struct {
		ShipmentStatus ID `json:"shipment_status"`
		ShipmentTrack  []struct {
			AWBCode       string `json:"awb_code"`
			CourierName   string `json:"courier_name"`
			CurrentStatus string `json:"current_status"`
			OrderID       ID     `json:"order_id"`
		} `json:"shipment_track"`
		Activities []TrackActivity `json:"shipment_track_activities"`
		ETD        string          `json:"etd"`
		Error      string          `json:"error"`
	} `json:"tracking_data"`
}

// ShiprocketClient calls the Shiprocket external API. The login token is
// cached and concurrent logins collapse into a single request.
type ShiprocketClient struct {
	http     *resty.Client
	email    string
	password string
	logger   *slog.Logger
	now      func() time.Time

	group     singleflight.Group
	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewShiprocketClient creates a ShiprocketClient.
func NewShiprocketClient(config ShiprocketConfig, logger *slog.Logger) *ShiprocketClient {
	client := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &ShiprocketClient{
		http:     client,
		email:    config.Email,
		password: config.Password,
		logger:   logger,
		now:      time.Now,
	}
}

// Login returns a valid API token, fetching a new one when the cache is empty or expired.
func (s *ShiprocketClient) Login(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.token != "" && s.now().Before(s.expiresAt) {
		token := s.token
		s.mu.Unlock()
		return token, nil
	}
	s.mu.Unlock()

	v, err, _ := s.group.Do("login", func() (any, error) {
		return s.login(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *ShiprocketClient) login(ctx context.Context) (string, error) {
	if s.email == "" || s.password == "" {
		return "", apperrors.Wrap(ErrPartner, "shiprocket credentials are not configured")
	}

	var out struct {
		Token string `json:"token"`
	}
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": s.email, "password": s.password}).
		SetResult(&out).
		Post("auth/login")
	if err != nil {
		return "", apperrors.Wrap(err, "failed to call shiprocket login")
	}
	if resp.IsError() {
		return "", newAPIError(shiprocketName, "login", resp.StatusCode(), resp.String())
	}
	if out.Token == "" {
		return "", newAPIError(shiprocketName, "login", resp.StatusCode(), "no token in response")
	}

	s.mu.Lock()
	s.token = out.Token
	s.expiresAt = s.now().Add(shiprocketTokenTTL)
	s.mu.Unlock()

	s.logger.Debug("shiprocket token refreshed")
	return out.Token, nil
}

func (s *ShiprocketClient) invalidate(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == token {
		s.token = ""
	}
}

// do sends an authenticated request. A 401 drops the cached token and the
// request is retried once with a fresh one.
func (s *ShiprocketClient) do(
	ctx context.Context,
	operation, method, path string,
	body, result any,
) error {
	for attempt := 0; ; attempt++ {
		token, err := s.Login(ctx)
		if err != nil {
			return err
		}

		req := s.http.R().SetContext(ctx).SetAuthToken(token).SetResult(result)
		if body != nil {
			req.SetBody(body)
		}
		resp, err := req.Execute(method, path)
		if err != nil {
			return apperrors.Wrapf(err, "failed to call shiprocket %s", operation)
		}

		if resp.StatusCode() == http.StatusUnauthorized && attempt == 0 {
			s.invalidate(token)
			continue
		}
		if resp.IsError() {
			return newAPIError(shiprocketName, operation, resp.StatusCode(), resp.String())
		}
		return nil
	}
}

// CreateAdhocOrder creates a shipping order.
func (s *ShiprocketClient) CreateAdhocOrder(ctx context.Context, order AdhocOrder) (*AdhocOrderResult, error) {
	var out AdhocOrderResult
	if err := s.do(ctx, "create order", http.MethodPost, "orders/create/adhoc", order, &out); err != nil {
		return nil, err
	}
	if out.ShipmentID == "" {
		return nil, newAPIError(shiprocketName, "create order", http.StatusOK, "no shipment_id in response")
	}
	return &out, nil
}

// AssignAWB asks Shiprocket to pick a courier and allocate a tracking number.
func (s *ShiprocketClient) AssignAWB(ctx context.Context, shipmentID string) (*AWBAssignment, error) {
	var out struct {
		AssignStatus int `json:"awb_assign_status"`
		Response     struct {
			Data AWBAssignment `json:"data"`
		} `json:"response"`
		Message string `json:"message"`
	}
	body := map[string]string{"shipment_id": shipmentID}
	if err := s.do(ctx, "assign awb", http.MethodPost, "courier/assign/awb", body, &out); err != nil {
		return nil, err
	}
	if out.Response.Data.AWBCode == "" {
		return nil, newAPIError(shiprocketName, "assign awb", http.StatusOK, "no awb_code in response: "+out.Message)
	}
	return &out.Response.Data, nil
}

// GeneratePickup requests a courier pickup for the shipments.
func (s *ShiprocketClient) GeneratePickup(ctx context.Context, shipmentIDs []string) (*PickupRequest, error) {
	var out struct {
		PickupStatus int           `json:"pickup_status"`
		Response     PickupRequest `json:"response"`
	}
	body := map[string][]string{"shipment_id": shipmentIDs}
	if err := s.do(ctx, "generate pickup", http.MethodPost, "courier/generate/pickup", body, &out); err != nil {
		return nil, err
	}
	return &out.Response, nil
}

// Track looks up the current status and scan history of a shipment by AWB.
func (s *ShiprocketClient) Track(ctx context.Context, awb string) (*Tracking, error) {
	var out shiprocketTrackResponse
	path := "courier/track/awb/" + url.PathEscape(awb)
	if err := s.do(ctx, "track", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	data := out.TrackingData
	if data.Error != "" {
		return nil, newAPIError(shiprocketName, "track", http.StatusOK, data.Error)
	}

	tracking := &Tracking{
		AWB:            awb,
		ShipmentStatus: data.ShipmentStatus,
		ETD:            data.ETD,
		Activities:     data.Activities,
	}
	if len(data.ShipmentTrack) > 0 {
		track := data.ShipmentTrack[0]
		tracking.CourierName = track.CourierName
		tracking.CurrentStatus = track.CurrentStatus
		tracking.OrderID = track.OrderID.String()
	}
	return tracking, nil
}

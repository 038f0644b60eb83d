// Package partner provides clients for the Shiprocket shipping API and the
// Cloudprinter print API.
package partner

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/diffrun/opsdesk/internal/errors"
)

// ErrPartner marks every failure reported by a partner API.
var ErrPartner = apperrors.New("partner api error")

// APIError is a non-success response from a partner. Body is clipped to keep
// log lines and per-item results readable.
type APIError struct {
	Partner    string
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d: %s", e.Partner, e.Operation, e.StatusCode, e.Body)
}

// Unwrap lets callers match any partner failure with errors.Is(err, ErrPartner).
func (e *APIError) Unwrap() error {
	return ErrPartner
}

const maxBodyInError = 500

func newAPIError(partner, operation string, status int, body string) *APIError {
	body = strings.TrimSpace(body)
	if len(body) > maxBodyInError {
		body = body[:maxBodyInError]
	}
	return &APIError{Partner: partner, Operation: operation, StatusCode: status, Body: body}
}

// ID is a partner identifier that arrives either as a JSON number or a string.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// String returns the identifier text.
func (id ID) String() string {
	return string(id)
}

package httputil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/diffrun/opsdesk/internal/httputil"
)

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		url            string
		expectedOffset int
		expectedLimit  int
		errorMsg       string
	}{
		{name: "defaults", url: "/", expectedOffset: 0, expectedLimit: 50},
		{name: "offset and limit", url: "/?offset=10&limit=20", expectedOffset: 10, expectedLimit: 20},
		{name: "first page", url: "/?page=1&limit=25", expectedOffset: 0, expectedLimit: 25},
		{name: "third page default limit", url: "/?page=3", expectedOffset: 100, expectedLimit: 50},
		{name: "max limit", url: "/?limit=1000", expectedOffset: 0, expectedLimit: 1000},
		{
			name:     "limit above max",
			url:      "/?limit=1001",
			errorMsg: "invalid limit parameter: must be between 1 and 1000",
		},
		{
			name:     "limit zero",
			url:      "/?limit=0",
			errorMsg: "invalid limit parameter: must be between 1 and 1000",
		},
		{
			name:     "negative offset",
			url:      "/?offset=-1",
			errorMsg: "invalid offset parameter: must be a non-negative integer",
		},
		{
			name:     "page zero",
			url:      "/?page=0",
			errorMsg: "invalid page parameter: must be a positive integer",
		},
		{
			name:     "page not a number",
			url:      "/?page=two",
			errorMsg: "invalid page parameter: must be a positive integer",
		},
		{
			name:     "page with offset",
			url:      "/?page=2&offset=10",
			errorMsg: "page and offset cannot be combined",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, tt.url, nil)

			offset, limit, err := httputil.ParsePagination(c)

			if tt.errorMsg != "" {
				assert.EqualError(t, err, tt.errorMsg)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedOffset, offset)
			assert.Equal(t, tt.expectedLimit, limit)
		})
	}
}

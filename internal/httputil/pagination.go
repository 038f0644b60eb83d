package httputil

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Listing bounds for admin endpoints.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 1000
)

var (
	errInvalidOffset = errors.New("invalid offset parameter: must be a non-negative integer")
	errInvalidPage   = errors.New("invalid page parameter: must be a positive integer")
	errInvalidLimit  = errors.New("invalid limit parameter: must be between 1 and 1000")
	errPageAndOffset = errors.New("page and offset cannot be combined")
)

// ParsePagination reads limit together with either a 1-based page or a raw
// offset, and returns the row offset to query from.
func ParsePagination(c *gin.Context) (offset, limit int, err error) {
	limit = DefaultPageLimit
	if raw, ok := c.GetQuery("limit"); ok {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > MaxPageLimit {
			return 0, 0, errInvalidLimit
		}
	}

	rawPage, hasPage := c.GetQuery("page")
	rawOffset, hasOffset := c.GetQuery("offset")
	switch {
	case hasPage && hasOffset:
		return 0, 0, errPageAndOffset
	case hasPage:
		page, err := strconv.Atoi(rawPage)
		if err != nil || page < 1 {
			return 0, 0, errInvalidPage
		}
		return (page - 1) * limit, limit, nil
	case hasOffset:
		offset, err = strconv.Atoi(rawOffset)
		if err != nil || offset < 0 {
			return 0, 0, errInvalidOffset
		}
		return offset, limit, nil
	}
	return 0, limit, nil
}

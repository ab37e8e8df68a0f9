package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"clubcorra/internal/service"
)

const dateLayout = "2006-01-02"

// pathID reads a positive numeric path parameter
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		writeError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}

// queryID reads an optional numeric query parameter; absent means 0
func queryID(c *gin.Context, name string) (uint, error) {
	v := c.Query(name)
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, &service.FieldError{Field: name, Message: "must be a positive integer"}
	}
	return uint(id), nil
}

// queryDate reads an optional YYYY-MM-DD query parameter as UTC midnight
func queryDate(c *gin.Context, name string) (*time.Time, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, &service.FieldError{Field: name, Message: "must be a date (YYYY-MM-DD)"}
	}
	return &t, nil
}

func parseDate(field, v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, &service.FieldError{Field: field, Message: "must be a date (YYYY-MM-DD)"}
	}
	return t, nil
}

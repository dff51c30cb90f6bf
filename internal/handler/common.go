package handler // handler defines http handlers

import (
	"errors"   // errors unwraps service errors
	"fmt"      // fmt formats delete confirmations
	"math"     // math checks that JSON numbers are whole
	"net/http" // http defines status codes
	"net/url"  // url decodes escaped path segments
	"strconv"  // strconv converts path params to integers
	"time"     // time parses RFC 3339 timestamps

	"github.com/labstack/echo/v4" // echo defines request context types
	"go.uber.org/zap"             // zap logs unexpected failures

	"github.com/iliyamo/popcorn-palace/internal/service" // service defines error kinds
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// messageBody is the JSON shape of delete confirmations.
type messageBody struct {
	Message string `json:"message"`
}

// deleted responds 200 with a confirmation message.
func deleted(c echo.Context, format string, args ...any) error {
	return c.JSON(http.StatusOK, messageBody{Message: fmt.Sprintf(format, args...)})
}

// badRequest responds 400 with msg.
func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorBody{Error: msg})
}

// writeError maps a service error to its HTTP status.  Unclassified errors
// are logged and hidden behind a generic 500 message.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	var se *service.Error
	if !errors.As(err, &se) {
		log.Error("request failed",
			zap.String("route", c.Path()),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
	status := http.StatusInternalServerError
	switch se.Kind {
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindInvalidArgument:
		status = http.StatusBadRequest
	case service.KindConflict:
		status = http.StatusConflict
	}
	return c.JSON(status, errorBody{Error: se.Message})
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// titleParam reads the :title path parameter.  Echo routes on the raw path
// when the URL carries escapes such as %2F, in which case the segment is
// still encoded.
func titleParam(c echo.Context) (string, bool) {
	raw := c.Param("title")
	if c.Request().URL.RawPath != "" {
		dec, err := url.PathUnescape(raw)
		if err != nil {
			return "", false
		}
		raw = dec
	}
	return raw, raw != ""
}

// parseTime parses an RFC 3339 timestamp; nil input stays nil.
func parseTime(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// wholeNumber converts a JSON number to int, rejecting fractions.
func wholeNumber(f float64) (int, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// nopIfNil returns log, or a no-op logger when log is nil.
func nopIfNil(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

package middleware

// identity.go holds the helper that turns the verified token (if any) into a
// caller identifier for rate-limit keys and request logs.

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// callerID returns the subject of the verified JWT, or "guest" when the
// request carries none.
func callerID(c echo.Context) string {
	if v, ok := c.Get(ctxUserID).(string); ok && v != "" {
		return v
	}
	if tok, ok := c.Get("user").(*jwt.Token); ok {
		if cl, ok := tok.Claims.(jwt.MapClaims); ok {
			if v, ok := cl["sub"].(string); ok && v != "" {
				return v
			}
		}
	}
	return "guest"
}

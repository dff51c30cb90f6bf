package handler // declare the package name; contains HTTP handlers

import (
	"context"  // context bounds the dependency probe
	"net/http" // net/http provides status codes and response helpers
	"time"     // time for the probe timeout

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Pinger is anything the health check can probe, such as *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health answers load balancer probes.  With no pingers it always reports
// "ok"; otherwise every pinger must answer within two seconds.
func Health(pingers ...Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		for _, p := range pingers {
			if err := p.PingContext(ctx); err != nil {
				return c.String(http.StatusServiceUnavailable, "unavailable") // dependency down
			}
		}
		return c.String(http.StatusOK, "ok") // write "ok" with a 200 OK status
	}
}

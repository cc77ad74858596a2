package middleware

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const correlationHeader = "X-Correlation-Id"

// Correlation ensures every request carries a correlation id, minting one
// when the client did not send it, and echoes it back on the response.
func Correlation() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cid := strings.TrimSpace(c.Request().Header.Get(correlationHeader))
			if cid == "" {
				cid = uuid.NewString()
			}
			c.Set("correlation_id", cid)
			c.Response().Header().Set(correlationHeader, cid)
			return next(c)
		}
	}
}

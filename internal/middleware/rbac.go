package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/liceolabs/prospect-crm/api/internal/entity"
)

// RequireMinRole enforces that the authenticated request carries at least
// the given role in the hierarchy.
func RequireMinRole(minRole string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			value, ok := c.Get(ContextKeyUserRole).(string)
			if !ok || value == "" {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "missing role"})
			}
			if !entity.HasMinRole(value, minRole) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "insufficient permissions"})
			}
			return next(c)
		}
	}
}

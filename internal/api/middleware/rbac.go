package middleware

import (
	"fmt"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// RBAC admits callers holding at least one of the allowed roles. It reads the
// roles Auth stored on the context, so it must run after Auth. Refusals are
// returned as domain.ErrForbidden for the central error handler to render.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := slices.Clone(allowedRoles)
	required := strings.Join(allowed, " or ")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, _ := c.Get("roles").([]string)
			if slices.ContainsFunc(roles, func(r string) bool { return slices.Contains(allowed, r) }) {
				return next(c)
			}

			username, _ := c.Get("username").(string)
			return fmt.Errorf("user %q needs role %s: %w", username, required, domain.ErrForbidden)
		}
	}
}

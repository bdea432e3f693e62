package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"goldloan-origination/internal/domain/session"
)

// SessionMiddleware lifts the caller's backend token and role out of the
// headers into the request context. Every downstream backend call signs
// itself with this session.
func SessionMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := strings.TrimSpace(c.Request().Header.Get("X-Auth-Token"))
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing X-Auth-Token"})
			}

			role := session.RoleEmployee
			if raw := strings.TrimSpace(c.Request().Header.Get("X-Api-Role")); raw != "" {
				role = session.Role(raw)
				if !role.Valid() {
					return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid X-Api-Role"})
				}
			}

			ctx := session.NewContext(c.Request().Context(), session.Session{Token: token, Role: role})
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

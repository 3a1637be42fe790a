package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mrskaggs/forkful/backend/internal/identity"
)

const identityContextKey = "identity"

// AuthMiddleware resolves the bearer credential through the identity
// provider and stores the resulting identity in the request context.
func AuthMiddleware(provider identity.Provider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			ident, err := provider.Resolve(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(identityContextKey, ident)
			return next(c)
		}
	}
}

// CurrentIdentity extracts the identity stored by AuthMiddleware.
func CurrentIdentity(c echo.Context) identity.Identity {
	ident, _ := c.Get(identityContextKey).(identity.Identity)
	return ident
}

package middleware

import (
	"net/http"
	"strings"

	"fleet-service/pkg/jwtutil"
	"fleet-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// JWTAuthMiddleware validates the bearer token and stores the principal
// in the context. The token carries identity only; which company the
// principal operates is resolved server-side by the service layer.
func JWTAuthMiddleware(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing authorization header")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Warn("Invalid authorization header format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			c.Set("user_id", claims.UserID)
			c.Set("email", claims.Email)

			return next(c)
		}
	}
}

// PrincipalID retrieves the authenticated principal from the context.
// Returns "", false on routes that skipped the auth middleware.
func PrincipalID(c echo.Context) (string, bool) {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

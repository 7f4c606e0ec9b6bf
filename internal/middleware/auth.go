package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"sportscube-api/pkg/jwtutil"
	"sportscube-api/pkg/logger"
	"sportscube-api/prometheus"
)

// UserIDKey is the echo context key holding the authenticated user id.
const UserIDKey = "user_id"

// JWTAuthMiddleware creates a middleware that validates bearer tokens.
// A missing token is a 401 and an invalid or expired one a 403; the
// bodies match the contract existing clients rely on.
func JWTAuthMiddleware(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			// Extract the token from the Authorization header
			authHeader := c.Request().Header.Get("Authorization")
			parts := strings.Split(authHeader, " ")
			if authHeader == "" || len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				log.Warn("Missing bearer token")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false,
					"message": "Access denied",
				})
			}

			tokenString := parts[1]

			// Validate the token
			claims, err := jwtUtil.ValidateToken(tokenString)
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusForbidden, echo.Map{
					"success": false,
					"message": "Invalid token",
				})
			}

			// Store the verified user id in the context for handlers
			c.Set(UserIDKey, claims.UserID)
			log.Debug("Bearer token validated", zap.Uint("user_id", claims.UserID))

			return next(c)
		}
	}
}

// UserID returns the authenticated user id set by JWTAuthMiddleware.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(UserIDKey).(uint)
	return id, ok
}

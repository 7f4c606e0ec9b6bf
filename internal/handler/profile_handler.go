package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"sportscube-api/internal/middleware"
	"sportscube-api/pkg/logger"
	"sportscube-api/prometheus"
)

// GetProfile handles GET /profile. It returns the authenticated caller's
// own record, without the password hash.
func (h *Handler) GetProfile(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := middleware.UserID(c)
	if !ok {
		// Only reachable if the route is registered without the auth guard
		log.Error("Profile requested without authenticated user")
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"success": false,
			"message": "Access denied",
		})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	user, err := h.store.FindUserByID(userID)
	if err != nil {
		log.Error("Failed to look up user", zap.Uint("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"message": "Server error",
		})
	}
	if user == nil {
		log.Warn("User not found", zap.Uint("user_id", userID))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusOK, echo.Map{
			"success": false,
			"message": "User not found",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user":    user.Public(),
	})
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/wavely-app/backend/internal/services"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	toggleService *services.ToggleService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(toggleService *services.ToggleService) *FollowHandler {
	return &FollowHandler{toggleService: toggleService}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.ToggleFollow)
}

// ToggleFollow follows the target user if no edge exists and unfollows
// otherwise; the response reports which side the toggle landed on.
func (h *FollowHandler) ToggleFollow(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	state, err := h.toggleService.Toggle(c.Request().Context(), currentUserID, uint(targetID), services.KindFollow)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"state":     state,
			"following": state == services.StateAdded,
		},
	})
}

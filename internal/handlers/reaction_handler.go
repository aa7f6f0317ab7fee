package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/wavely-app/backend/internal/services"
)

// ReactionHandler handles HTTP requests for post reactions (like/laugh)
type ReactionHandler struct {
	toggleService *services.ToggleService
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(toggleService *services.ToggleService) *ReactionHandler {
	return &ReactionHandler{toggleService: toggleService}
}

// RegisterReactionRoutes registers reaction-related routes
func (h *ReactionHandler) RegisterReactionRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/reactions/:kind", h.ToggleReaction)
}

// ToggleReaction adds the reaction if the user has not reacted with that kind
// yet and removes it otherwise.
func (h *ReactionHandler) ToggleReaction(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	kind := services.Kind(c.Param("kind"))
	if kind != services.KindLike && kind != services.KindLaugh {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid reaction kind")
	}

	state, err := h.toggleService.Toggle(c.Request().Context(), currentUserID, uint(postID), kind)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"state":   state,
			"reacted": state == services.StateAdded,
		},
	})
}

package handler

import (
	"net/http"

	"arcade/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// GetGames godoc
// @Summary      List multiplayer games
// @Description  Returns the catalog of games that can be played against another user.
// @Tags         games
// @Produce      json
// @Success      200  {array}   models.GameInfo
// @Router       /games [get]
func (h *Handler) GetGames(c *gin.Context) {
	c.JSON(http.StatusOK, models.MultiplayerGames)
}

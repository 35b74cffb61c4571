package handler

import (
	"net/http"

	"arcade/backend/internal/match"
	"arcade/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// MoveInput is a cell (tic-tac-toe) or column (connect four) index.
type MoveInput struct {
	Position *int `json:"position" binding:"required" example:"3"`
}

// PaginatedMatchResponse defines the structure for a paginated list of matches.
type PaginatedMatchResponse struct {
	Data []models.Match `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// endregion

// ListMatches godoc
// @Summary      List my matches
// @Description  Returns the current user's matches, newest first.
// @Tags         matches
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(10)
// @Success      200   {object}  PaginatedMatchResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /matches [get]
func (h *Handler) ListMatches(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	page, limit := pageParams(c)

	list, err := h.matches.ListForPlayer(c.Request.Context(), user.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Paginate(list, page, limit))
}

// GetMatch godoc
// @Summary      Get a match
// @Description  Returns the current state of a match the user plays in.
// @Tags         matches
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Match ID"
// @Success      200  {object}  models.Match
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /matches/{id} [get]
func (h *Handler) GetMatch(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	m, err := h.matches.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !m.HasPlayer(user.Email) {
		h.fail(c, match.ErrMatchNotFound)
		return
	}
	c.JSON(http.StatusOK, m)
}

// SubmitMove godoc
// @Summary      Make a move
// @Description  Places the current user's piece. Only the player whose turn it is may move.
// @Tags         matches
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Client-ID header string false "Client (tab) id"
// @Param        id    path      string     true  "Match ID"
// @Param        input body      MoveInput  true  "Move"
// @Success      200   {object}  models.Match
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse "Illegal move"
// @Router       /matches/{id}/moves [post]
func (h *Handler) SubmitMove(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var input MoveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.matches.SubmitMove(c.Request.Context(), clientID(c), c.Param("id"), user.Email, match.Move{Position: *input.Position})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// StreamMatch godoc
// @Summary      Follow a match
// @Description  Server-sent events: the match state, re-sent whenever the other player changes it.
// @Tags         matches
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        id        path   string  true   "Match ID"
// @Param        client_id query  string  false  "Client (tab) id"
// @Success      200
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /matches/{id}/stream [get]
func (h *Handler) StreamMatch(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	view, err := h.matches.Open(ctx, c.Param("id"), user.Email, clientID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	defer view.Close()

	startStream(c)
	current := view.Match()
	c.SSEvent("match", current)
	c.Writer.Flush()
	if current.Finished() {
		return
	}

	for {
		m, err := view.Next(ctx)
		if err != nil {
			return
		}
		c.SSEvent("match", m)
		c.Writer.Flush()
		if m.Finished() {
			return
		}
	}
}

package handler

import (
	"net/http"

	"arcade/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// ChallengeInput defines the structure for sending a challenge.
type ChallengeInput struct {
	InviteeEmail string        `json:"inviteeEmail" binding:"required" example:"player@two.com"`
	GameID       models.GameID `json:"gameId" binding:"required" example:"connect-four-mp"`
}

// endregion

// ListIncomingChallenges godoc
// @Summary      List incoming challenges
// @Description  Returns the pending challenges addressed to the current user.
// @Tags         challenges
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.Challenge
// @Failure      401  {object}  ErrorResponse
// @Router       /challenges/incoming [get]
func (h *Handler) ListIncomingChallenges(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	list, err := h.challenges.ListIncoming(c.Request.Context(), user.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ListOutgoingChallenges godoc
// @Summary      List outgoing challenges
// @Description  Returns the pending challenges sent by the current user.
// @Tags         challenges
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.Challenge
// @Failure      401  {object}  ErrorResponse
// @Router       /challenges/outgoing [get]
func (h *Handler) ListOutgoingChallenges(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	list, err := h.challenges.ListOutgoing(c.Request.Context(), user.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreateChallenge godoc
// @Summary      Challenge another user
// @Description  Invites another registered user to a multiplayer game.
// @Tags         challenges
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Client-ID header string false "Client (tab) id"
// @Param        input body ChallengeInput true "Challenge Info"
// @Success      201  {object}  models.Challenge
// @Failure      400  {object}  ErrorResponse "Unknown invitee, self-challenge or unknown game"
// @Failure      401  {object}  ErrorResponse
// @Router       /challenges [post]
func (h *Handler) CreateChallenge(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var input ChallengeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	challenge, err := h.challenges.Create(c.Request.Context(), clientID(c), user, input.InviteeEmail, input.GameID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, challenge)
}

// AcceptChallenge godoc
// @Summary      Accept a challenge
// @Description  Accepts a pending challenge and starts the match. The challenger moves first.
// @Tags         challenges
// @Produce      json
// @Security     BearerAuth
// @Param        X-Client-ID header string false "Client (tab) id"
// @Param        id   path      string  true  "Challenge ID"
// @Success      201  {object}  models.Match
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /challenges/{id}/accept [post]
func (h *Handler) AcceptChallenge(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	m, err := h.challenges.Accept(c.Request.Context(), clientID(c), c.Param("id"), user)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// DeclineChallenge godoc
// @Summary      Decline a challenge
// @Description  Removes a pending challenge addressed to the current user.
// @Tags         challenges
// @Security     BearerAuth
// @Param        X-Client-ID header string false "Client (tab) id"
// @Param        id   path      string  true  "Challenge ID"
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /challenges/{id}/decline [post]
func (h *Handler) DeclineChallenge(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.challenges.Decline(c.Request.Context(), clientID(c), c.Param("id"), user); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StreamChallenges godoc
// @Summary      Stream incoming challenges
// @Description  Server-sent events: the incoming challenge list, re-sent whenever another client changes it.
// @Tags         challenges
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        client_id query string false "Client (tab) id"
// @Success      200
// @Failure      401  {object}  ErrorResponse
// @Router       /challenges/stream [get]
func (h *Handler) StreamChallenges(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	lobby, err := h.challenges.Watch(ctx, user.Email, clientID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	defer lobby.Close()

	startStream(c)
	c.SSEvent("challenges", lobby.Challenges())
	c.Writer.Flush()

	for {
		list, err := lobby.Next(ctx)
		if err != nil {
			return
		}
		c.SSEvent("challenges", list)
		c.Writer.Flush()
	}
}

func startStream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
}

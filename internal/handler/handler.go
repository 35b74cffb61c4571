package handler

import (
	"errors"
	"net/http"
	"time"

	"arcade/backend/internal/accounts"
	"arcade/backend/internal/auth"
	"arcade/backend/internal/challenge"
	"arcade/backend/internal/match"
	"arcade/backend/internal/models"
	"arcade/backend/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClientIDHeader names the browser tab a request comes from. Writes made
// under one client id never notify streams opened under the same id.
const ClientIDHeader = "X-Client-ID"

const degradedWarning = `199 - "storage unavailable, changes are kept in memory"`

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

type Deps struct {
	Accounts   *accounts.Service
	Challenges *challenge.Service
	Matches    *match.Service
	Store      *store.Store
	JWTSecret  string
	TokenTTL   time.Duration
	Logger     *zap.Logger
}

// Handler serves the /api/v1 routes.
type Handler struct {
	accounts   *accounts.Service
	challenges *challenge.Service
	matches    *match.Service
	store      *store.Store
	secret     string
	tokenTTL   time.Duration
	logger     *zap.Logger
}

func New(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		accounts:   d.Accounts,
		challenges: d.Challenges,
		matches:    d.Matches,
		store:      d.Store,
		secret:     d.JWTSecret,
		tokenTTL:   d.TokenTTL,
		logger:     logger,
	}
}

// RegisterRoutes mounts every endpoint on api.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.Use(h.DegradedWarning())

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", h.Register)
		authRoutes.POST("/login", h.Login)
	}

	api.GET("/games", h.GetGames)

	userRoutes := api.Group("/users")
	userRoutes.Use(auth.AuthMiddleware(h.secret))
	{
		userRoutes.GET("/me", h.GetMe)
	}

	challengeRoutes := api.Group("/challenges")
	challengeRoutes.Use(auth.AuthMiddleware(h.secret))
	{
		challengeRoutes.GET("/incoming", h.ListIncomingChallenges)
		challengeRoutes.GET("/outgoing", h.ListOutgoingChallenges)
		challengeRoutes.GET("/stream", h.StreamChallenges)
		challengeRoutes.POST("", h.CreateChallenge)
		challengeRoutes.POST("/:id/accept", h.AcceptChallenge)
		challengeRoutes.POST("/:id/decline", h.DeclineChallenge)
	}

	matchRoutes := api.Group("/matches")
	matchRoutes.Use(auth.AuthMiddleware(h.secret))
	{
		matchRoutes.GET("", h.ListMatches)
		matchRoutes.GET("/:id", h.GetMatch)
		matchRoutes.GET("/:id/stream", h.StreamMatch)
		matchRoutes.POST("/:id/moves", h.SubmitMove)
	}
}

// DegradedWarning flags responses served while the store runs on its
// in-memory fallback.
func (h *Handler) DegradedWarning() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.store != nil && h.store.Degraded() {
			c.Header("Warning", degradedWarning)
		}
		c.Next()
	}
}

// currentUser resolves the authenticated account. It writes the error
// response itself when it returns false.
func (h *Handler) currentUser(c *gin.Context) (models.User, bool) {
	user, ok, err := h.accounts.ResolveUser(c.Request.Context(), auth.UserEmail(c))
	if err != nil {
		h.fail(c, err)
		return models.User{}, false
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authenticated user not found"})
		return models.User{}, false
	}
	return user, true
}

func clientID(c *gin.Context) string {
	if id := c.GetHeader(ClientIDHeader); id != "" {
		return id
	}
	// EventSource cannot set headers.
	return c.Query("client_id")
}

// fail maps a service error to a status code and a JSON error body.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, challenge.ErrInvalidInvitee),
		errors.Is(err, challenge.ErrUnknownGame),
		errors.Is(err, accounts.ErrInvalidAvatar):
		status = http.StatusBadRequest
	case errors.Is(err, accounts.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, challenge.ErrChallengeNotFound),
		errors.Is(err, match.ErrMatchNotFound):
		status = http.StatusNotFound
	case errors.Is(err, match.ErrIllegalMove),
		errors.Is(err, accounts.ErrEmailTaken),
		errors.Is(err, store.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

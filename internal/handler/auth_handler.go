package handler

import (
	"net/http"

	"votecast/config"
	"votecast/internal/middleware"
	"votecast/internal/redis"
	"votecast/internal/services"
	"votecast/internal/transport/httpdto"
	votecast_errors "votecast/pkg/errors"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles registration, login and session endpoints.
type AuthHandler struct {
	auth      *services.AuthService
	polls     *services.PollService
	limiter   *redis.RateLimiter
	cookieAge int
}

func NewAuthHandler(auth *services.AuthService, polls *services.PollService, limiter *redis.RateLimiter, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		polls:     polls,
		limiter:   limiter,
		cookieAge: cfg.SessionTTLHours * 3600,
	}
}

// Register creates a user account and opens a session.
func (h *AuthHandler) Register(c *gin.Context) {
	if !h.allowAttempt(c) {
		return
	}

	var req httpdto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	res, err := h.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	h.setSessionCookie(c, res.Token)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.AuthResponse{
		Token: res.Token,
		User:  httpdto.UserDTO{ID: res.UserID.String(), Username: res.Username},
	}))
}

// Login authenticates a user and opens a session.
func (h *AuthHandler) Login(c *gin.Context) {
	if !h.allowAttempt(c) {
		return
	}

	var req httpdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	h.setSessionCookie(c, res.Token)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.AuthResponse{
		Token: res.Token,
		User:  httpdto.UserDTO{ID: res.UserID.String(), Username: res.Username},
	}))
}

// Logout destroys the current session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if cookie, err := c.Cookie(middleware.SessionCookie); err == nil && cookie != "" {
		if err := h.auth.Logout(c.Request.Context(), cookie); err != nil {
			writeError(c, err)
			return
		}
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "logged out"}))
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := services.UserFromContext(c.Request.Context())
	if !ok {
		writeError(c, votecast_errors.ErrUnauthorized)
		return
	}

	u, err := h.auth.GetUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.UserDTO{
		ID:       u.ID.String(),
		Username: u.Username,
	}))
}

// Profile returns the username and how many polls the user voted on.
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, ok := services.UserFromContext(c.Request.Context())
	if !ok {
		writeError(c, votecast_errors.ErrUnauthorized)
		return
	}

	u, err := h.auth.GetUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	count, err := h.polls.VotedCount(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ProfileResponse{
		Username:        u.Username,
		VotedPollsCount: count,
	}))
}

// WSTicket issues a short-lived ticket for the live-update channel.
func (h *AuthHandler) WSTicket(c *gin.Context) {
	userID, ok := services.UserFromContext(c.Request.Context())
	if !ok {
		writeError(c, votecast_errors.ErrUnauthorized)
		return
	}

	ticket, err := h.auth.IssueWSTicket(userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.WSTicketResponse{Ticket: ticket}))
}

func (h *AuthHandler) allowAttempt(c *gin.Context) bool {
	if h.limiter == nil {
		return true
	}
	if !h.limiter.AllowAuth(c.Request.Context(), c.ClientIP()) {
		writeError(c, votecast_errors.ErrRateLimited)
		return false
	}
	return true
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(middleware.SessionCookie, token, h.cookieAge, "/", "", false, true)
}

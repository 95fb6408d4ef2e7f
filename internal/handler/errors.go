// Package handler provides HTTP handlers for API endpoints.
package handler

import (
	"errors"
	"net/http"

	"votecast/internal/transport/httpdto"
	votecast_errors "votecast/pkg/errors"

	"github.com/gin-gonic/gin"
)

// writeError maps service errors onto HTTP responses. Every rejection carries
// a specific code so the frontend can show a real message instead of a generic
// failure.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, votecast_errors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "VALIDATION_FAILED"))
	case errors.Is(err, votecast_errors.ErrAlreadyVoted):
		c.JSON(http.StatusConflict, httpdto.NewErrorResponse("already voted on this poll", "ALREADY_VOTED"))
	case errors.Is(err, votecast_errors.ErrAlreadyExists):
		c.JSON(http.StatusConflict, httpdto.NewErrorResponse("already exists", "ALREADY_EXISTS"))
	case errors.Is(err, votecast_errors.ErrNotFound):
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse(err.Error(), "NOT_FOUND"))
	case errors.Is(err, votecast_errors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
	case errors.Is(err, votecast_errors.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse("too many attempts", "RATE_LIMITED"))
	case errors.Is(err, votecast_errors.ErrPersistence):
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("could not save changes", "PERSISTENCE_FAILED"))
	default:
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("internal error", "INTERNAL_ERROR"))
	}
}

package handler

import (
	"net/http"

	"votecast/internal/domain"
	"votecast/internal/events"
	"votecast/internal/services"
	"votecast/internal/transport/httpdto"
	votecast_errors "votecast/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PollHandler handles poll creation, listing and HTTP voting. Successful
// mutations are published through the dispatcher so every open channel sees
// the change.
type PollHandler struct {
	polls     *services.PollService
	publisher *events.Dispatcher
}

func NewPollHandler(polls *services.PollService, publisher *events.Dispatcher) *PollHandler {
	return &PollHandler{polls: polls, publisher: publisher}
}

// Create validates and persists a new poll, then broadcasts it.
func (h *PollHandler) Create(c *gin.Context) {
	userID, ok := services.UserFromContext(c.Request.Context())
	if !ok {
		writeError(c, votecast_errors.ErrUnauthorized)
		return
	}

	var req httpdto.CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	poll, err := h.polls.Create(c.Request.Context(), services.CreatePollInput{
		Question:  req.Question,
		Options:   req.Options,
		CreatedBy: userID,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	h.publisher.Publish(events.PollCreated{Poll: poll})
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(toPollDTO(poll)))
}

// Vote applies one vote over HTTP; the ws "new-vote" handler reaches the same
// processor.
func (h *PollHandler) Vote(c *gin.Context) {
	userID, ok := services.UserFromContext(c.Request.Context())
	if !ok {
		writeError(c, votecast_errors.ErrUnauthorized)
		return
	}

	pollID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid poll id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	evt, err := h.polls.ApplyVote(c.Request.Context(), services.VoteInput{
		PollID:         pollID,
		SelectedOption: req.SelectedOption,
		UserID:         userID,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	h.publisher.Publish(evt)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(toOptionDTOs(evt.Options)))
}

// List returns all polls, newest first.
func (h *PollHandler) List(c *gin.Context) {
	polls, err := h.polls.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]httpdto.PollDTO, 0, len(polls))
	for _, p := range polls {
		out = append(out, toPollDTO(p))
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(out))
}

// Get returns one poll with its voter list.
func (h *PollHandler) Get(c *gin.Context) {
	pollID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid poll id", "INVALID_REQUEST"))
		return
	}

	poll, err := h.polls.Get(c.Request.Context(), pollID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(toPollDTO(poll)))
}

// Count returns the total number of polls; used by the landing page.
func (h *PollHandler) Count(c *gin.Context) {
	count, err := h.polls.Count(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.PollCountResponse{Count: count}))
}

func toPollDTO(p domain.Poll) httpdto.PollDTO {
	dto := httpdto.PollDTO{
		ID:        p.ID.String(),
		Question:  p.Question,
		Options:   toOptionDTOs(p.Options),
		CreatedBy: p.CreatedBy.String(),
	}
	for _, v := range p.Voters {
		dto.VoterIDs = append(dto.VoterIDs, v.String())
	}
	return dto
}

func toOptionDTOs(options []domain.Option) []httpdto.OptionDTO {
	out := make([]httpdto.OptionDTO, 0, len(options))
	for _, o := range options {
		out = append(out, httpdto.OptionDTO{Answer: o.Answer, Votes: o.Votes})
	}
	return out
}

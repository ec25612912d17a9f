package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-hub-api/internal/dto"
	"github.com/noah-isme/campus-hub-api/internal/models"
	"github.com/noah-isme/campus-hub-api/internal/service"
	appErrors "github.com/noah-isme/campus-hub-api/pkg/errors"
	"github.com/noah-isme/campus-hub-api/pkg/response"
)

type chatService interface {
	List(ctx context.Context, session models.Session) ([]models.Doubt, error)
	Ask(ctx context.Context, session models.Session, question string) (service.Outcome[models.Doubt], error)
	Answer(ctx context.Context, session models.Session, doubtID, text string) (service.Outcome[models.Doubt], error)
}

// ChatHandler exposes the tutor doubt thread.
type ChatHandler struct {
	service chatService
}

// NewChatHandler constructs the handler.
func NewChatHandler(service chatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// List godoc
// @Summary Doubts visible to the caller
// @Tags Chat
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /doubts [get]
func (h *ChatHandler) List(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	doubts, err := h.service.List(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doubts, nil)
}

// Ask godoc
// @Summary Ask the tutors a question
// @Tags Chat
// @Accept json
// @Produce json
// @Param payload body dto.AskDoubtRequest true "Question"
// @Success 200 {object} response.Envelope
// @Router /doubts [post]
func (h *ChatHandler) Ask(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.AskDoubtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid question payload"))
		return
	}
	outcome, err := h.service.Ask(c.Request.Context(), session, req.Question)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOutcome(c, outcome)
}

// Answer godoc
// @Summary Answer a doubt (teachers and presidents)
// @Tags Chat
// @Accept json
// @Produce json
// @Param id path string true "Doubt ID"
// @Param payload body dto.AnswerDoubtRequest true "Answer"
// @Success 200 {object} response.Envelope
// @Router /doubts/{id}/answers [post]
func (h *ChatHandler) Answer(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.AnswerDoubtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid answer payload"))
		return
	}
	outcome, err := h.service.Answer(c.Request.Context(), session, c.Param("id"), req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOutcome(c, outcome)
}

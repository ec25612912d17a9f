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

type lectureService interface {
	List(ctx context.Context) ([]models.Lecture, error)
	Add(ctx context.Context, session models.Session, req dto.LectureRequest) (service.Outcome[models.Lecture], error)
}

// LectureHandler exposes the lecture schedule.
type LectureHandler struct {
	service lectureService
}

// NewLectureHandler constructs the handler.
func NewLectureHandler(service lectureService) *LectureHandler {
	return &LectureHandler{service: service}
}

// List godoc
// @Summary Scheduled lectures
// @Tags Lectures
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /lectures [get]
func (h *LectureHandler) List(c *gin.Context) {
	lectures, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lectures, nil)
}

// Add godoc
// @Summary Schedule a lecture. Missing subject or time is a no-op.
// @Tags Lectures
// @Accept json
// @Produce json
// @Param payload body dto.LectureRequest true "Lecture"
// @Success 200 {object} response.Envelope
// @Router /lectures [post]
func (h *LectureHandler) Add(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.LectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid lecture payload"))
		return
	}
	outcome, err := h.service.Add(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOutcome(c, outcome)
}

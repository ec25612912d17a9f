package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-hub-api/internal/dto"
	"github.com/noah-isme/campus-hub-api/internal/models"
	appErrors "github.com/noah-isme/campus-hub-api/pkg/errors"
	"github.com/noah-isme/campus-hub-api/pkg/response"
)

type attendanceService interface {
	Data(ctx context.Context) (*dto.AttendanceResponse, error)
	Percent(ctx context.Context, student string) (int, error)
	Record(ctx context.Context, session models.Session, req dto.RecordAttendanceRequest) (*dto.AttendanceResponse, error)
	OpenTopic(ctx context.Context, session models.Session, req dto.OpenTopicRequest) (*dto.AttendanceResponse, error)
}

// AttendanceHandler exposes attendance topics and marks.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// Data godoc
// @Summary Attendance topics and the current topic
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) Data(c *gin.Context) {
	data, err := h.service.Data(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data, nil)
}

// Percent godoc
// @Summary Attendance percentage for a student
// @Tags Attendance
// @Produce json
// @Param student query string false "Student email, defaults to the caller"
// @Success 200 {object} response.Envelope
// @Router /attendance/percent [get]
func (h *AttendanceHandler) Percent(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	student := strings.TrimSpace(c.Query("student"))
	if student == "" {
		student = session.Email
	}
	if student != session.Email && !session.Privileged() {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "students may only read their own attendance"))
		return
	}
	percent, err := h.service.Percent(c.Request.Context(), student)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.AttendancePercentResponse{Student: student, Percent: percent}, nil)
}

// Record godoc
// @Summary Mark attendance on the current topic
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.RecordAttendanceRequest true "Mark"
// @Success 200 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}
	data, err := h.service.Record(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data, nil)
}

// OpenTopic godoc
// @Summary Open a new attendance topic and make it current
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.OpenTopicRequest true "Topic"
// @Success 201 {object} response.Envelope
// @Router /attendance/topics [post]
func (h *AttendanceHandler) OpenTopic(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.OpenTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid topic payload"))
		return
	}
	data, err := h.service.OpenTopic(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, data)
}

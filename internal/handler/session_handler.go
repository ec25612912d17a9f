package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-hub-api/internal/dto"
	"github.com/noah-isme/campus-hub-api/internal/models"
	appErrors "github.com/noah-isme/campus-hub-api/pkg/errors"
	"github.com/noah-isme/campus-hub-api/pkg/response"
)

type sessionStore interface {
	Store(ctx context.Context, req dto.StoreSessionRequest) (*models.Session, error)
	Clear(ctx context.Context) error
}

// SessionHandler reports the acting session and manages the stored development session.
type SessionHandler struct {
	service sessionStore
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(service sessionStore) *SessionHandler {
	return &SessionHandler{service: service}
}

// Current godoc
// @Summary The session acting on this request
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /session [get]
func (h *SessionHandler) Current(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Store godoc
// @Summary Store the development session (non-production only)
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body dto.StoreSessionRequest true "Session"
// @Success 200 {object} response.Envelope
// @Router /session [put]
func (h *SessionHandler) Store(c *gin.Context) {
	var req dto.StoreSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}
	session, err := h.service.Store(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Clear godoc
// @Summary Forget the stored development session
// @Tags Session
// @Success 204
// @Router /session [delete]
func (h *SessionHandler) Clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

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

type boardService interface {
	Feed(ctx context.Context, query models.FeedQuery, page, pageSize int) ([]models.Post, *models.Pagination, error)
	CreatePost(ctx context.Context, session models.Session, req dto.CreatePostRequest) (*dto.CreatePostResponse, error)
	DeletePost(ctx context.Context, session models.Session, ref models.PostRef) (service.Outcome[models.Post], error)
	ToggleHighAlert(ctx context.Context, session models.Session, ref models.PostRef) (service.Outcome[models.Post], error)
	Like(ctx context.Context, ref models.PostRef) (service.Outcome[models.Post], error)
	AddComment(ctx context.Context, session models.Session, ref models.PostRef, text string) (service.Outcome[models.Post], error)
	ReportPost(ctx context.Context, ref models.PostRef) (service.Outcome[models.Post], error)
	Alerts(ctx context.Context) ([]models.Alert, error)
}

// BoardHandler exposes the feed and post mutations.
type BoardHandler struct {
	service boardService
}

// NewBoardHandler constructs the handler.
func NewBoardHandler(service boardService) *BoardHandler {
	return &BoardHandler{service: service}
}

// Feed godoc
// @Summary Aggregated feed for a view
// @Tags Board
// @Produce json
// @Param view query string false "home, announcements, discussion, lostfound, ..."
// @Param filter query string false "all, discussion, lostfound"
// @Param q query string false "Case-insensitive search over title, description and author"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /feed [get]
func (h *BoardHandler) Feed(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.FeedRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid feed query"))
		return
	}
	query, err := feedQuery(session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	posts, pagination, err := h.service.Feed(c.Request.Context(), query, req.Page, req.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, posts, pagination)
}

// feedQuery parses view and filter. An empty view falls back to the role's landing tab.
func feedQuery(session models.Session, req dto.FeedRequest) (models.FeedQuery, error) {
	view := models.DefaultView(session.Role)
	if req.View != "" {
		parsed, err := models.ParseActiveView(req.View)
		if err != nil {
			return models.FeedQuery{}, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		view = parsed
	}
	filter, err := models.ParseFeedFilter(req.Filter)
	if err != nil {
		return models.FeedQuery{}, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	return models.FeedQuery{View: view, Filter: filter, Search: req.Search}, nil
}

// CreatePost godoc
// @Summary Publish a post
// @Tags Board
// @Accept json
// @Produce json
// @Param payload body dto.CreatePostRequest true "Post"
// @Success 201 {object} response.Envelope
// @Router /posts [post]
func (h *BoardHandler) CreatePost(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid post payload"))
		return
	}
	created, err := h.service.CreatePost(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// DeletePost godoc
// @Summary Delete an announcement (teachers and presidents)
// @Tags Board
// @Produce json
// @Param type path string true "Post type"
// @Param id path string true "Post ID"
// @Success 200 {object} response.Envelope
// @Router /posts/{type}/{id} [delete]
func (h *BoardHandler) DeletePost(c *gin.Context) {
	h.mutateAsSession(c, h.service.DeletePost)
}

// ToggleHighAlert godoc
// @Summary Raise or lift a high alert on a lost-and-found post (teachers and presidents)
// @Tags Board
// @Produce json
// @Param type path string true "Post type"
// @Param id path string true "Post ID"
// @Success 200 {object} response.Envelope
// @Router /posts/{type}/{id}/alert [post]
func (h *BoardHandler) ToggleHighAlert(c *gin.Context) {
	h.mutateAsSession(c, h.service.ToggleHighAlert)
}

// Like godoc
// @Summary Like a post
// @Tags Board
// @Produce json
// @Param type path string true "Post type"
// @Param id path string true "Post ID"
// @Success 200 {object} response.Envelope
// @Router /posts/{type}/{id}/likes [post]
func (h *BoardHandler) Like(c *gin.Context) {
	h.mutate(c, h.service.Like)
}

// ReportPost godoc
// @Summary Flag a post for moderation
// @Tags Board
// @Produce json
// @Param type path string true "Post type"
// @Param id path string true "Post ID"
// @Success 200 {object} response.Envelope
// @Router /posts/{type}/{id}/report [post]
func (h *BoardHandler) ReportPost(c *gin.Context) {
	h.mutate(c, h.service.ReportPost)
}

// AddComment godoc
// @Summary Comment on a post
// @Tags Board
// @Accept json
// @Produce json
// @Param type path string true "Post type"
// @Param id path string true "Post ID"
// @Param payload body dto.CommentRequest true "Comment"
// @Success 200 {object} response.Envelope
// @Router /posts/{type}/{id}/comments [post]
func (h *BoardHandler) AddComment(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	ref, ok := postRefFromPath(c)
	if !ok {
		return
	}
	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid comment payload"))
		return
	}
	outcome, err := h.service.AddComment(c.Request.Context(), session, ref, req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOutcome(c, outcome)
}

// Alerts godoc
// @Summary Active high alerts
// @Tags Board
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /alerts [get]
func (h *BoardHandler) Alerts(c *gin.Context) {
	alerts, err := h.service.Alerts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alerts, nil)
}

type postMutation func(ctx context.Context, ref models.PostRef) (service.Outcome[models.Post], error)

type sessionPostMutation func(ctx context.Context, session models.Session, ref models.PostRef) (service.Outcome[models.Post], error)

func (h *BoardHandler) mutate(c *gin.Context, fn postMutation) {
	ref, ok := postRefFromPath(c)
	if !ok {
		return
	}
	outcome, err := fn(c.Request.Context(), ref)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondOutcome(c, outcome)
}

func (h *BoardHandler) mutateAsSession(c *gin.Context, fn sessionPostMutation) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	h.mutate(c, func(ctx context.Context, ref models.PostRef) (service.Outcome[models.Post], error) {
		return fn(ctx, session, ref)
	})
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-hub-api/internal/dto"
	"github.com/noah-isme/campus-hub-api/internal/middleware"
	"github.com/noah-isme/campus-hub-api/internal/models"
	"github.com/noah-isme/campus-hub-api/internal/service"
	appErrors "github.com/noah-isme/campus-hub-api/pkg/errors"
)

var (
	studentSession = models.Session{Email: "ana@campus.edu", Role: models.RoleStudent}
	teacherSession = models.Session{Email: "prof@campus.edu", Role: models.RoleTeacher}
)

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func asSession(c *gin.Context, session models.Session) {
	c.Set(middleware.ContextSessionKey, session)
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
	Page  *models.Pagination     `json:"pagination"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

type boardServiceMock struct {
	feedQuery   models.FeedQuery
	feedPage    int
	feedPosts   []models.Post
	createReq   dto.CreatePostRequest
	createResp  *dto.CreatePostResponse
	createErr   error
	lastRef     models.PostRef
	lastText    string
	lastSession models.Session
	outcome     service.Outcome[models.Post]
	err         error
	alerts      []models.Alert
}

func (m *boardServiceMock) Feed(ctx context.Context, query models.FeedQuery, page, pageSize int) ([]models.Post, *models.Pagination, error) {
	m.feedQuery = query
	m.feedPage = page
	return m.feedPosts, &models.Pagination{Page: 1, PageSize: 20, TotalCount: len(m.feedPosts)}, nil
}

func (m *boardServiceMock) CreatePost(ctx context.Context, session models.Session, req dto.CreatePostRequest) (*dto.CreatePostResponse, error) {
	m.lastSession = session
	m.createReq = req
	return m.createResp, m.createErr
}

func (m *boardServiceMock) DeletePost(ctx context.Context, session models.Session, ref models.PostRef) (service.Outcome[models.Post], error) {
	m.lastSession = session
	m.lastRef = ref
	return m.outcome, m.err
}

func (m *boardServiceMock) ToggleHighAlert(ctx context.Context, session models.Session, ref models.PostRef) (service.Outcome[models.Post], error) {
	m.lastSession = session
	m.lastRef = ref
	return m.outcome, m.err
}

func (m *boardServiceMock) Like(ctx context.Context, ref models.PostRef) (service.Outcome[models.Post], error) {
	m.lastRef = ref
	return m.outcome, m.err
}

func (m *boardServiceMock) AddComment(ctx context.Context, session models.Session, ref models.PostRef, text string) (service.Outcome[models.Post], error) {
	m.lastSession = session
	m.lastRef = ref
	m.lastText = text
	return m.outcome, m.err
}

func (m *boardServiceMock) ReportPost(ctx context.Context, ref models.PostRef) (service.Outcome[models.Post], error) {
	m.lastRef = ref
	return m.outcome, m.err
}

func (m *boardServiceMock) Alerts(ctx context.Context) ([]models.Alert, error) {
	return m.alerts, m.err
}

func TestBoardHandlerFeedDefaultsViewByRole(t *testing.T) {
	mockSvc := &boardServiceMock{feedPosts: []models.Post{{ID: "announcement_1", Type: models.PostTypeAnnouncement}}}
	handler := NewBoardHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/feed?q=exam&page=2", nil)
	asSession(c, teacherSession)
	handler.Feed(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.FeedQuery{View: models.ViewAnnouncements, Filter: models.FilterAll, Search: "exam"}, mockSvc.feedQuery)
	assert.Equal(t, 2, mockSvc.feedPage)
	env := decode(t, w)
	require.NotNil(t, env.Page)
	assert.Equal(t, 1, env.Page.TotalCount)
}

func TestBoardHandlerFeedRejectsUnknownView(t *testing.T) {
	handler := NewBoardHandler(&boardServiceMock{})

	c, w := newGinContext(http.MethodGet, "/feed?view=gallery", nil)
	asSession(c, studentSession)
	handler.Feed(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decode(t, w).Error.Code)
}

func TestBoardHandlerFeedRequiresSession(t *testing.T) {
	handler := NewBoardHandler(&boardServiceMock{})
	c, w := newGinContext(http.MethodGet, "/feed", nil)
	handler.Feed(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBoardHandlerCreatePost(t *testing.T) {
	mockSvc := &boardServiceMock{createResp: &dto.CreatePostResponse{Post: models.Post{ID: "discussion_1"}}}
	handler := NewBoardHandler(mockSvc)

	payload, _ := json.Marshal(dto.CreatePostRequest{Type: "discussion", Title: "Study group", Desc: "Who is in?"})
	c, w := newGinContext(http.MethodPost, "/posts", payload)
	asSession(c, studentSession)
	handler.CreatePost(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Study group", mockSvc.createReq.Title)
	assert.Equal(t, studentSession, mockSvc.lastSession)
}

func TestBoardHandlerCreatePostInvalidBody(t *testing.T) {
	handler := NewBoardHandler(&boardServiceMock{})
	c, w := newGinContext(http.MethodPost, "/posts", []byte(`{"type":`))
	asSession(c, studentSession)
	handler.CreatePost(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBoardHandlerLikeApplied(t *testing.T) {
	post := models.Post{ID: "lostfound_1", Likes: 1}
	mockSvc := &boardServiceMock{outcome: service.Outcome[models.Post]{Applied: true, Value: &post}}
	handler := NewBoardHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/posts/lostfound/lostfound_1/likes", nil)
	c.Params = gin.Params{{Key: "type", Value: "lostfound"}, {Key: "id", Value: "lostfound_1"}}
	handler.Like(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.PostRef{Type: models.PostTypeLostFound, ID: "lostfound_1"}, mockSvc.lastRef)
	env := decode(t, w)
	assert.Equal(t, true, env.Meta["applied"])
	assert.Contains(t, string(env.Data), `"likes":1`)
}

func TestBoardHandlerNoopAnswersOK(t *testing.T) {
	mockSvc := &boardServiceMock{}
	handler := NewBoardHandler(mockSvc)

	c, w := newGinContext(http.MethodDelete, "/posts/announcement/announcement_9", nil)
	c.Params = gin.Params{{Key: "type", Value: "announcement"}, {Key: "id", Value: "announcement_9"}}
	asSession(c, studentSession)
	handler.DeletePost(c)

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, false, env.Meta["applied"])
	assert.Empty(t, env.Data)
	assert.Equal(t, studentSession, mockSvc.lastSession)
}

func TestBoardHandlerUnknownPostType(t *testing.T) {
	handler := NewBoardHandler(&boardServiceMock{})
	c, w := newGinContext(http.MethodPost, "/posts/memes/x/report", nil)
	c.Params = gin.Params{{Key: "type", Value: "memes"}, {Key: "id", Value: "x"}}
	handler.ReportPost(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBoardHandlerAddComment(t *testing.T) {
	mockSvc := &boardServiceMock{outcome: service.Outcome[models.Post]{Applied: true, Value: &models.Post{ID: "discussion_1"}}}
	handler := NewBoardHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/posts/discussion/discussion_1/comments", []byte(`{"text":"count me in"}`))
	c.Params = gin.Params{{Key: "type", Value: "discussion"}, {Key: "id", Value: "discussion_1"}}
	asSession(c, studentSession)
	handler.AddComment(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "count me in", mockSvc.lastText)
}

func TestBoardHandlerSurfacesStorageErrors(t *testing.T) {
	mockSvc := &boardServiceMock{err: appErrors.ErrStorage}
	handler := NewBoardHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/posts/announcement/announcement_1/alert", nil)
	c.Params = gin.Params{{Key: "type", Value: "announcement"}, {Key: "id", Value: "announcement_1"}}
	asSession(c, teacherSession)
	handler.ToggleHighAlert(c)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "STORAGE_ERROR", decode(t, w).Error.Code)
}

func TestBoardHandlerAlerts(t *testing.T) {
	mockSvc := &boardServiceMock{alerts: []models.Alert{{ID: "alert_1", Text: "High Alert: Exams"}}}
	handler := NewBoardHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/alerts", nil)
	handler.Alerts(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "High Alert: Exams")
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-hub-api/internal/handler"
	"github.com/noah-isme/campus-hub-api/internal/models"
	"github.com/noah-isme/campus-hub-api/internal/repository"
	"github.com/noah-isme/campus-hub-api/internal/service"
	"github.com/noah-isme/campus-hub-api/pkg/config"
)

func testConfig(t *testing.T, env string) *config.Config {
	t.Helper()
	return &config.Config{
		Env:       env,
		APIPrefix: "/api/v1",
		Storage:   config.StorageConfig{Driver: config.StorageMemory, KeyPrefix: "campus:"},
		JWT:       config.JWTConfig{Secret: "test-secret"},
		Alerts:    config.AlertsConfig{MatchMode: config.AlertMatchTitle},
		Reports: config.ReportsConfig{
			Enabled:           true,
			StorageDir:        t.TempDir(),
			SignedURLSecret:   "reports-secret",
			SignedURLTTL:      time.Hour,
			WorkerConcurrency: 1,
			WorkerRetries:     1,
		},
		RateLimit: config.RateLimitConfig{PerMinute: 600, Burst: 100},
	}
}

func newTestServer(t *testing.T, env string) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := testConfig(t, env)
	metricsSvc := service.NewMetricsService()
	handlers, sessionSvc, err := wire(ctx, cfg, repository.NewMemoryStore(), nil, metricsSvc, map[string]handler.ReadinessCheck{}, zap.NewNop())
	require.NoError(t, err)
	return newRouter(cfg, zap.NewNop(), metricsSvc, sessionSvc, handlers)
}

func bearer(t *testing.T, email string, role models.Role) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, models.SessionClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return "Bearer " + signed
}

type apiResponse struct {
	Data  json.RawMessage        `json:"data"`
	Meta  map[string]interface{} `json:"meta"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func call(t *testing.T, srv http.Handler, method, path, auth string, body interface{}) (int, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return w.Code, resp
}

func TestRouterBoardFlow(t *testing.T) {
	srv := newTestServer(t, config.EnvDevelopment)
	teacher := bearer(t, "prof@campus.edu", models.RoleTeacher)
	student := bearer(t, "ana@campus.edu", models.RoleStudent)

	status, resp := call(t, srv, http.MethodPost, "/api/v1/posts", teacher, map[string]interface{}{
		"type": "announcement", "title": "Midterms", "desc": "Room 101 at nine",
	})
	require.Equal(t, http.StatusCreated, status)
	var created struct {
		Post models.Post `json:"post"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	postPath := "/api/v1/posts/announcement/" + created.Post.ID

	status, resp = call(t, srv, http.MethodGet, "/api/v1/feed?view=announcements&q=midterm", student, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(resp.Data), created.Post.ID)

	status, resp = call(t, srv, http.MethodPost, postPath+"/likes", student, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, resp.Meta["applied"])

	status, resp = call(t, srv, http.MethodDelete, postPath, student, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, resp.Meta["applied"])

	status, resp = call(t, srv, http.MethodPost, postPath+"/alert", teacher, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, resp.Meta["applied"])

	status, resp = call(t, srv, http.MethodPost, "/api/v1/posts", student, map[string]interface{}{
		"type": "lostfound", "title": "Blue umbrella", "desc": "Left in the library",
	})
	require.Equal(t, http.StatusCreated, status)
	var lost struct {
		Post models.Post `json:"post"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &lost))

	status, resp = call(t, srv, http.MethodPost, "/api/v1/posts/lostfound/"+lost.Post.ID+"/alert", teacher, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, resp.Meta["applied"])

	status, resp = call(t, srv, http.MethodGet, "/api/v1/alerts", student, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(resp.Data), "High Alert: Blue umbrella")
	assert.NotContains(t, string(resp.Data), "Midterms")

	status, resp = call(t, srv, http.MethodDelete, postPath, teacher, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, resp.Meta["applied"])
}

func TestRouterAttendanceRoles(t *testing.T) {
	srv := newTestServer(t, config.EnvDevelopment)
	teacher := bearer(t, "prof@campus.edu", models.RoleTeacher)
	student := bearer(t, "ana@campus.edu", models.RoleStudent)

	status, _ := call(t, srv, http.MethodPost, "/api/v1/attendance/topics", student, map[string]string{"title": "Eigenvalues"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, srv, http.MethodPost, "/api/v1/attendance/topics", teacher, map[string]string{"title": "Eigenvalues"})
	require.Equal(t, http.StatusCreated, status)

	status, _ = call(t, srv, http.MethodPost, "/api/v1/attendance", student, map[string]string{"status": "present"})
	require.Equal(t, http.StatusOK, status)

	status, resp := call(t, srv, http.MethodGet, "/api/v1/attendance/percent", student, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"student":"ana@campus.edu","percent":100}`, string(resp.Data))

	status, _ = call(t, srv, http.MethodPost, "/api/v1/attendance/reports", student, map[string]string{"format": "csv"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, srv, http.MethodPost, "/api/v1/attendance/reports", teacher, map[string]string{"format": "csv"})
	assert.Equal(t, http.StatusAccepted, status)
}

func TestRouterStoredSessionOutsideProduction(t *testing.T) {
	srv := newTestServer(t, config.EnvDevelopment)

	status, resp := call(t, srv, http.MethodGet, "/api/v1/session", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "SESSION_NOT_STORED", resp.Error.Code)

	status, _ = call(t, srv, http.MethodPut, "/api/v1/session", "", map[string]string{"email": "pres@campus.edu", "role": "president"})
	require.Equal(t, http.StatusOK, status)

	status, resp = call(t, srv, http.MethodGet, "/api/v1/session", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"email":"pres@campus.edu","role":"president"}`, string(resp.Data))

	status, _ = call(t, srv, http.MethodDelete, "/api/v1/session", "", nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestRouterProductionRequiresToken(t *testing.T) {
	srv := newTestServer(t, config.EnvProduction)

	status, _ := call(t, srv, http.MethodPut, "/api/v1/session", "", map[string]string{"email": "pres@campus.edu", "role": "president"})
	assert.Equal(t, http.StatusNotFound, status)

	status, resp := call(t, srv, http.MethodGet, "/api/v1/feed", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)

	status, _ = call(t, srv, http.MethodGet, "/api/v1/feed", "Bearer not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = call(t, srv, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestRouterReadyReportsQueue(t *testing.T) {
	srv := newTestServer(t, config.EnvDevelopment)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, "ok", body.Checks["reports_queue"])
}

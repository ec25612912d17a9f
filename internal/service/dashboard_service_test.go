package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-hub-api/internal/dto"
	"github.com/noah-isme/campus-hub-api/internal/models"
	"github.com/noah-isme/campus-hub-api/internal/repository"
	appErrors "github.com/noah-isme/campus-hub-api/pkg/errors"
)

type memoryCacheRepo struct {
	mu      sync.Mutex
	entries map[string]interface{}
	deleted []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: map[string]interface{}{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if target, ok := dest.(*dto.DashboardResponse); ok {
		*target = *value.(*dto.DashboardResponse)
	}
	return nil
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, pattern)
	m.entries = map[string]interface{}{}
	return nil
}

func TestDashboardSummaryComposesAndCaches(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewBoardRepository(repository.NewMemoryStore(), "", nil)
	cacheRepo := newMemoryCacheRepo()
	metrics := NewMetricsService()
	cache := NewCacheService(cacheRepo, metrics, time.Minute, nil, true)
	lock := NewBoardLock()
	dashboard := NewDashboardService(repo, lock, cache, DashboardServiceConfig{}, nil)
	board := NewBoardService(repo, lock, cache, metrics, nil, BoardServiceConfig{Clock: fixedClock(baseTime)}, nil)

	_, err := board.CreatePost(ctx, teacherSession, dto.CreatePostRequest{Type: "announcement", Title: "Exam", Desc: "Midterm moved"})
	require.NoError(t, err)
	require.NoError(t, repo.SaveAttendance(ctx, models.AttendanceData{
		"topic_1": {Title: "Intro", Students: map[string]models.AttendanceStatus{studentSession.Email: models.AttendancePresent}},
	}))
	require.NoError(t, repo.SaveLectures(ctx, []models.Lecture{{ID: "lec_1", Subject: "Physics", Time: "10:00"}}))

	summary, cached, err := dashboard.Summary(ctx, studentSession, models.FeedQuery{})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, models.ViewHome, summary.View)
	assert.Equal(t, models.FilterAll, summary.Filter)
	require.Len(t, summary.Feed, 1)
	assert.Equal(t, 100, summary.AttendancePercent)
	assert.Equal(t, "topic_1", summary.CurrentTopic)
	assert.Len(t, summary.Lectures, 1)
	assert.NotNil(t, summary.Alerts)

	_, cached, err = dashboard.Summary(ctx, studentSession, models.FeedQuery{})
	require.NoError(t, err)
	assert.True(t, cached)

	_, err = board.Like(ctx, models.PostRef{Type: models.PostTypeAnnouncement, ID: summary.Feed[0].ID})
	require.NoError(t, err)
	assert.Contains(t, cacheRepo.deleted, dashboardCachePattern)

	refreshed, cached, err := dashboard.Summary(ctx, studentSession, models.FeedQuery{})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 1, refreshed.Feed[0].Likes)
}

// racingBoardRepo starts a post write while the dashboard is between reading the
// board and caching the summary.
type racingBoardRepo struct {
	*repository.BoardRepository
	once    sync.Once
	write   func()
	written chan struct{}
}

func (r *racingBoardRepo) Board(ctx context.Context) (models.Board, error) {
	board, err := r.BoardRepository.Board(ctx)
	r.once.Do(func() {
		started := make(chan struct{})
		go func() {
			close(started)
			r.write()
			close(r.written)
		}()
		<-started
		time.Sleep(20 * time.Millisecond)
	})
	return board, err
}

func TestDashboardDoesNotCacheSummaryOverlappingAWrite(t *testing.T) {
	ctx := context.Background()
	base := repository.NewBoardRepository(repository.NewMemoryStore(), "", nil)
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	lock := NewBoardLock()
	board := NewBoardService(base, lock, cache, nil, nil, BoardServiceConfig{Clock: fixedClock(baseTime)}, nil)

	repo := &racingBoardRepo{BoardRepository: base, written: make(chan struct{})}
	repo.write = func() {
		_, err := board.CreatePost(ctx, teacherSession, dto.CreatePostRequest{Type: "announcement", Title: "Exam", Desc: "Midterm moved"})
		assert.NoError(t, err)
	}
	dashboard := NewDashboardService(repo, lock, cache, DashboardServiceConfig{}, nil)

	first, _, err := dashboard.Summary(ctx, studentSession, models.FeedQuery{})
	require.NoError(t, err)
	assert.Empty(t, first.Feed)
	<-repo.written

	second, cached, err := dashboard.Summary(ctx, studentSession, models.FeedQuery{})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Len(t, second.Feed, 1)
}

func TestDashboardTeacherLandsOnAnnouncements(t *testing.T) {
	repo := repository.NewBoardRepository(repository.NewMemoryStore(), "", nil)
	dashboard := NewDashboardService(repo, nil, nil, DashboardServiceConfig{}, nil)
	summary, cached, err := dashboard.Summary(context.Background(), teacherSession, models.FeedQuery{})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, models.ViewAnnouncements, summary.View)
	assert.Empty(t, summary.Feed)
	assert.Equal(t, 0, summary.AttendancePercent)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, 0, nil, false)
	assert.False(t, cache.Enabled())

	hit, err := cache.Get(context.Background(), "k", &dto.DashboardResponse{})
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, cache.Set(context.Background(), "k", &dto.DashboardResponse{}, 0))
	assert.Empty(t, repo.entries)

	var nilCache *CacheService
	assert.NoError(t, nilCache.Invalidate(context.Background(), "dashboard:*"))
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-hub-api/internal/dto"
	"github.com/noah-isme/campus-hub-api/internal/models"
)

type dashboardRepository interface {
	Board(ctx context.Context) (models.Board, error)
	Attendance(ctx context.Context) (models.AttendanceData, error)
	CurrentTopic(ctx context.Context) (string, error)
	Alerts(ctx context.Context) ([]models.Alert, error)
	Lectures(ctx context.Context) ([]models.Lecture, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardService composes everything the board screen renders for a session.
type DashboardService struct {
	repo   dashboardRepository
	lock   *BoardLock
	cache  dashboardCache
	logger *zap.Logger
	cfg    DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService. cache may be nil.
// lock must be the one shared with the mutating services.
func NewDashboardService(repo dashboardRepository, lock *BoardLock, cache dashboardCache, cfg DashboardServiceConfig, logger *zap.Logger) *DashboardService {
	if lock == nil {
		lock = NewBoardLock()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, lock: lock, cache: cache, logger: logger, cfg: cfg}
}

// Summary returns the dashboard for session and reports whether it came from cache.
// An empty view falls back to the role's landing tab.
func (s *DashboardService) Summary(ctx context.Context, session models.Session, query models.FeedQuery) (*dto.DashboardResponse, bool, error) {
	if query.View == "" {
		query.View = models.DefaultView(session.Role)
	}
	if query.Filter == "" {
		query.Filter = models.FilterAll
	}

	key := dashboardCacheKey(session, query)
	if s.cache != nil {
		var cached dto.DashboardResponse
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
		} else if hit {
			return &cached, true, nil
		}
	}

	s.lock.RLock()
	defer s.lock.RUnlock()
	summary, err := s.compose(ctx, session, query)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, summary, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return summary, false, nil
}

func (s *DashboardService) compose(ctx context.Context, session models.Session, query models.FeedQuery) (*dto.DashboardResponse, error) {
	board, err := s.repo.Board(ctx)
	if err != nil {
		return nil, storageError(err, "failed to load board")
	}
	attendance, err := s.repo.Attendance(ctx)
	if err != nil {
		return nil, storageError(err, "failed to load attendance")
	}
	current, err := s.repo.CurrentTopic(ctx)
	if err != nil {
		return nil, storageError(err, "failed to load current topic")
	}
	if _, ok := attendance[current]; !ok {
		current = firstTopicID(attendance)
	}
	alerts, err := s.repo.Alerts(ctx)
	if err != nil {
		return nil, storageError(err, "failed to load alerts")
	}
	lectures, err := s.repo.Lectures(ctx)
	if err != nil {
		return nil, storageError(err, "failed to load lectures")
	}

	return &dto.DashboardResponse{
		View:              query.View,
		Filter:            query.Filter,
		Feed:              BuildFeed(query, board),
		AttendancePercent: AttendancePercent(attendance, session.Email),
		CurrentTopic:      current,
		Alerts:            alerts,
		Lectures:          lectures,
	}, nil
}

func dashboardCacheKey(session models.Session, query models.FeedQuery) string {
	return fmt.Sprintf("dashboard:%s:%s:%s:%s:%s", strings.ToLower(session.Email), session.Role, query.View, query.Filter, query.Search)
}

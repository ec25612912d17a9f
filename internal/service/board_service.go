package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-hub-api/internal/dto"
	"github.com/noah-isme/campus-hub-api/internal/models"
	"github.com/noah-isme/campus-hub-api/pkg/config"
	appErrors "github.com/noah-isme/campus-hub-api/pkg/errors"
)

type boardRepository interface {
	Board(ctx context.Context) (models.Board, error)
	Announcements(ctx context.Context) ([]models.Post, error)
	SaveAnnouncements(ctx context.Context, posts []models.Post) error
	Discussions(ctx context.Context) (models.Discussions, error)
	SaveDiscussions(ctx context.Context, discussions models.Discussions) error
	LostFound(ctx context.Context) ([]models.Post, error)
	SaveLostFound(ctx context.Context, posts []models.Post) error
	Alerts(ctx context.Context) ([]models.Alert, error)
	SaveAlerts(ctx context.Context, alerts []models.Alert) error
}

// BoardServiceConfig tunes post behaviour.
type BoardServiceConfig struct {
	AlertMatchMode string
	Clock          func() time.Time
}

// BoardService applies post mutations and builds feeds.
type BoardService struct {
	repo      boardRepository
	lock      *BoardLock
	validator *validator.Validate
	hooks     mutationHooks
	matchMode string
	now       func() time.Time
	logger    *zap.Logger
}

// NewBoardService constructs the service.
func NewBoardService(repo boardRepository, lock *BoardLock, cache cacheInvalidator, metrics mutationRecorder, validate *validator.Validate, cfg BoardServiceConfig, logger *zap.Logger) *BoardService {
	if lock == nil {
		lock = NewBoardLock()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.AlertMatchMode != config.AlertMatchPost {
		cfg.AlertMatchMode = config.AlertMatchTitle
	}
	return &BoardService{
		repo:      repo,
		lock:      lock,
		validator: validate,
		hooks:     mutationHooks{cache: cache, metrics: metrics, logger: logger},
		matchMode: cfg.AlertMatchMode,
		now:       defaultClock(cfg.Clock),
		logger:    logger,
	}
}

// Feed returns one page of the feed for query.
func (s *BoardService) Feed(ctx context.Context, query models.FeedQuery, page, pageSize int) ([]models.Post, *models.Pagination, error) {
	board, err := s.repo.Board(ctx)
	if err != nil {
		return nil, nil, storageError(err, "failed to load board")
	}
	items, pagination := paginatePosts(BuildFeed(query, board), page, pageSize)
	return items, &pagination, nil
}

// CreatePost appends a new post to its owning collection and returns that collection.
func (s *BoardService) CreatePost(ctx context.Context, session models.Session, req dto.CreatePostRequest) (*dto.CreatePostResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid payload")
	}
	postType, err := models.ParsePostType(req.Type)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.now()
	var (
		post       models.Post
		collection []models.Post
	)
	switch postType {
	case models.PostTypeAnnouncement:
		posts, err := s.repo.Announcements(ctx)
		if err != nil {
			return nil, storageError(err, "failed to load announcements")
		}
		post = newPost(postType, uniqueID(string(postType), now, postIDTaken(posts)), req.Title, req.Desc, session.Email, req.Anon, now)
		collection = appendPost(posts, post)
		if err := s.repo.SaveAnnouncements(ctx, collection); err != nil {
			return nil, storageError(err, "failed to save announcements")
		}
	case models.PostTypeDiscussion:
		discussions, err := s.repo.Discussions(ctx)
		if err != nil {
			return nil, storageError(err, "failed to load discussions")
		}
		post = newPost(postType, uniqueID(string(postType), now, discussionIDTaken(discussions)), req.Title, req.Desc, session.Email, req.Anon, now)
		updated := cloneDiscussions(discussions)
		updated[models.DefaultDiscussionCategory] = appendPost(discussions[models.DefaultDiscussionCategory], post)
		if err := s.repo.SaveDiscussions(ctx, updated); err != nil {
			return nil, storageError(err, "failed to save discussions")
		}
		collection = updated[models.DefaultDiscussionCategory]
	case models.PostTypeLostFound:
		posts, err := s.repo.LostFound(ctx)
		if err != nil {
			return nil, storageError(err, "failed to load lost and found")
		}
		post = newPost(postType, uniqueID(string(postType), now, postIDTaken(posts)), req.Title, req.Desc, session.Email, req.Anon, now)
		collection = appendPost(posts, post)
		if err := s.repo.SaveLostFound(ctx, collection); err != nil {
			return nil, storageError(err, "failed to save lost and found")
		}
	}

	s.hooks.done(ctx, "create_post", true)
	s.logger.Info("post created", zap.String("post_id", post.ID), zap.String("type", string(postType)))
	return &dto.CreatePostResponse{Post: post, Collection: collection}, nil
}

// DeletePost removes an announcement. Anything else, or an unprivileged caller, is a no-op.
func (s *BoardService) DeletePost(ctx context.Context, session models.Session, ref models.PostRef) (Outcome[models.Post], error) {
	if ref.Type != models.PostTypeAnnouncement || !session.Privileged() {
		s.hooks.done(ctx, "delete_post", false)
		return noop[models.Post](), nil
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	posts, err := s.repo.Announcements(ctx)
	if err != nil {
		return noop[models.Post](), storageError(err, "failed to load announcements")
	}
	idx := indexOfPost(posts, ref.ID)
	updated, removed := removePost(posts, ref.ID)
	if !removed {
		s.hooks.done(ctx, "delete_post", false)
		return noop[models.Post](), nil
	}
	if err := s.repo.SaveAnnouncements(ctx, updated); err != nil {
		return noop[models.Post](), storageError(err, "failed to save announcements")
	}
	deleted := posts[idx]
	s.hooks.done(ctx, "delete_post", true)
	return applied(&deleted), nil
}

// ToggleHighAlert flips the high alert flag of a lost-and-found post and keeps the alerts in step.
func (s *BoardService) ToggleHighAlert(ctx context.Context, session models.Session, ref models.PostRef) (Outcome[models.Post], error) {
	if ref.Type != models.PostTypeLostFound || !session.Privileged() {
		s.hooks.done(ctx, "toggle_high_alert", false)
		return noop[models.Post](), nil
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	posts, err := s.repo.LostFound(ctx)
	if err != nil {
		return noop[models.Post](), storageError(err, "failed to load lost and found")
	}
	updated, post := toggleHighAlert(posts, ref.ID)
	if post == nil {
		s.hooks.done(ctx, "toggle_high_alert", false)
		return noop[models.Post](), nil
	}
	alerts, err := s.repo.Alerts(ctx)
	if err != nil {
		return noop[models.Post](), storageError(err, "failed to load alerts")
	}
	if post.HighAlert {
		alerts = raiseAlert(alerts, *post, s.now())
	} else {
		alerts = clearAlerts(alerts, *post, s.matchMode)
	}

	if err := s.repo.SaveLostFound(ctx, updated); err != nil {
		return noop[models.Post](), storageError(err, "failed to save lost and found")
	}
	if err := s.repo.SaveAlerts(ctx, alerts); err != nil {
		return noop[models.Post](), storageError(err, "failed to save alerts")
	}
	s.hooks.done(ctx, "toggle_high_alert", true)
	s.logger.Info("high alert toggled", zap.String("post_id", post.ID), zap.Bool("high_alert", post.HighAlert))
	return applied(post), nil
}

// Like adds one like to an announcement. Every call counts.
func (s *BoardService) Like(ctx context.Context, ref models.PostRef) (Outcome[models.Post], error) {
	if ref.Type != models.PostTypeAnnouncement {
		s.hooks.done(ctx, "like", false)
		return noop[models.Post](), nil
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	posts, err := s.repo.Announcements(ctx)
	if err != nil {
		return noop[models.Post](), storageError(err, "failed to load announcements")
	}
	updated, post := likePost(posts, ref.ID)
	if post == nil {
		s.hooks.done(ctx, "like", false)
		return noop[models.Post](), nil
	}
	if err := s.repo.SaveAnnouncements(ctx, updated); err != nil {
		return noop[models.Post](), storageError(err, "failed to save announcements")
	}
	s.hooks.done(ctx, "like", true)
	return applied(post), nil
}

// AddComment appends a comment to the post in whichever collection owns it.
func (s *BoardService) AddComment(ctx context.Context, session models.Session, ref models.PostRef, text string) (Outcome[models.Post], error) {
	if strings.TrimSpace(text) == "" {
		s.hooks.done(ctx, "add_comment", false)
		return noop[models.Post](), nil
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	post, err := s.updatePost(ctx, ref, func(posts []models.Post) ([]models.Post, *models.Post) {
		idx := indexOfPost(posts, ref.ID)
		if idx < 0 {
			return posts, nil
		}
		comment := models.Comment{
			ID:     nextCommentID(posts[idx].Comments, s.now()),
			Author: session.Email,
			Text:   text,
			Time:   s.now(),
		}
		return commentOnPost(posts, ref.ID, comment)
	})
	if err != nil {
		return noop[models.Post](), err
	}
	if post == nil {
		s.hooks.done(ctx, "add_comment", false)
		return noop[models.Post](), nil
	}
	s.hooks.done(ctx, "add_comment", true)
	return applied(post), nil
}

// ReportPost flags a post for moderation. Reporting twice keeps the flag set.
func (s *BoardService) ReportPost(ctx context.Context, ref models.PostRef) (Outcome[models.Post], error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	post, err := s.updatePost(ctx, ref, func(posts []models.Post) ([]models.Post, *models.Post) {
		return reportPost(posts, ref.ID)
	})
	if err != nil {
		return noop[models.Post](), err
	}
	if post == nil {
		s.hooks.done(ctx, "report_post", false)
		return noop[models.Post](), nil
	}
	s.hooks.done(ctx, "report_post", true)
	s.logger.Info("post reported", zap.String("post_id", post.ID))
	return applied(post), nil
}

// Alerts lists campus alerts in creation order.
func (s *BoardService) Alerts(ctx context.Context) ([]models.Alert, error) {
	alerts, err := s.repo.Alerts(ctx)
	if err != nil {
		return nil, storageError(err, "failed to load alerts")
	}
	return alerts, nil
}

// updatePost runs apply against the collection owning ref and persists only that collection.
// Callers hold the board lock.
func (s *BoardService) updatePost(ctx context.Context, ref models.PostRef, apply func([]models.Post) ([]models.Post, *models.Post)) (*models.Post, error) {
	switch ref.Type {
	case models.PostTypeAnnouncement:
		posts, err := s.repo.Announcements(ctx)
		if err != nil {
			return nil, storageError(err, "failed to load announcements")
		}
		updated, post := apply(posts)
		if post == nil {
			return nil, nil
		}
		if err := s.repo.SaveAnnouncements(ctx, updated); err != nil {
			return nil, storageError(err, "failed to save announcements")
		}
		return post, nil
	case models.PostTypeDiscussion:
		discussions, err := s.repo.Discussions(ctx)
		if err != nil {
			return nil, storageError(err, "failed to load discussions")
		}
		category, _ := discussionCategoryOf(discussions, ref.ID)
		posts, post := apply(discussions[category])
		if post == nil {
			return nil, nil
		}
		updated := cloneDiscussions(discussions)
		updated[category] = posts
		if err := s.repo.SaveDiscussions(ctx, updated); err != nil {
			return nil, storageError(err, "failed to save discussions")
		}
		return post, nil
	case models.PostTypeLostFound:
		posts, err := s.repo.LostFound(ctx)
		if err != nil {
			return nil, storageError(err, "failed to load lost and found")
		}
		updated, post := apply(posts)
		if post == nil {
			return nil, nil
		}
		if err := s.repo.SaveLostFound(ctx, updated); err != nil {
			return nil, storageError(err, "failed to save lost and found")
		}
		return post, nil
	default:
		return nil, nil
	}
}

package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-hub-api/internal/models"
	appErrors "github.com/noah-isme/campus-hub-api/pkg/errors"
)

type doubtRepository interface {
	Doubts(ctx context.Context) ([]models.Doubt, error)
	SaveDoubts(ctx context.Context, doubts []models.Doubt) error
}

// ChatService runs the tutor channel where students post doubts and staff answer them.
type ChatService struct {
	repo   doubtRepository
	lock   *BoardLock
	hooks  mutationHooks
	now    func() time.Time
	logger *zap.Logger
}

// NewChatService constructs the service.
func NewChatService(repo doubtRepository, lock *BoardLock, cache cacheInvalidator, metrics mutationRecorder, clock func() time.Time, logger *zap.Logger) *ChatService {
	if lock == nil {
		lock = NewBoardLock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		repo:   repo,
		lock:   lock,
		hooks:  mutationHooks{cache: cache, metrics: metrics, logger: logger},
		now:    defaultClock(clock),
		logger: logger,
	}
}

// List returns doubts newest first. Students only see their own.
func (s *ChatService) List(ctx context.Context, session models.Session) ([]models.Doubt, error) {
	doubts, err := s.repo.Doubts(ctx)
	if err != nil {
		return nil, storageError(err, "failed to load doubts")
	}
	visible := make([]models.Doubt, 0, len(doubts))
	for _, doubt := range doubts {
		if session.Privileged() || doubt.Student == session.Email {
			visible = append(visible, doubt)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].Time.After(visible[j].Time)
	})
	return visible, nil
}

// Ask posts a question. Blank questions are ignored.
func (s *ChatService) Ask(ctx context.Context, session models.Session, question string) (Outcome[models.Doubt], error) {
	if strings.TrimSpace(question) == "" {
		s.hooks.done(ctx, "ask_doubt", false)
		return noop[models.Doubt](), nil
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	doubts, err := s.repo.Doubts(ctx)
	if err != nil {
		return noop[models.Doubt](), storageError(err, "failed to load doubts")
	}
	now := s.now()
	doubt := models.Doubt{
		ID:       uniqueID("doubt", now, func(id string) bool { return indexOfDoubt(doubts, id) >= 0 }),
		Student:  session.Email,
		Question: question,
		Time:     now,
		Answers:  []models.Comment{},
	}
	updated := append(append(make([]models.Doubt, 0, len(doubts)+1), doubts...), doubt)
	if err := s.repo.SaveDoubts(ctx, updated); err != nil {
		return noop[models.Doubt](), storageError(err, "failed to save doubts")
	}
	s.hooks.done(ctx, "ask_doubt", true)
	return applied(&doubt), nil
}

// Answer replies to a doubt. Only privileged callers may answer; blank text or an unknown id is a no-op.
func (s *ChatService) Answer(ctx context.Context, session models.Session, doubtID, text string) (Outcome[models.Doubt], error) {
	if !session.Privileged() {
		return noop[models.Doubt](), appErrors.Clone(appErrors.ErrForbidden, "only teachers and presidents may answer doubts")
	}
	if strings.TrimSpace(text) == "" {
		s.hooks.done(ctx, "answer_doubt", false)
		return noop[models.Doubt](), nil
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	doubts, err := s.repo.Doubts(ctx)
	if err != nil {
		return noop[models.Doubt](), storageError(err, "failed to load doubts")
	}
	idx := indexOfDoubt(doubts, doubtID)
	if idx < 0 {
		s.hooks.done(ctx, "answer_doubt", false)
		return noop[models.Doubt](), nil
	}
	updated := make([]models.Doubt, len(doubts))
	copy(updated, doubts)
	doubt := updated[idx]
	now := s.now()
	doubt.Answers = append(append([]models.Comment{}, doubt.Answers...), models.Comment{
		ID:     nextCommentID(doubt.Answers, now),
		Author: session.Email,
		Text:   text,
		Time:   now,
	})
	updated[idx] = doubt
	if err := s.repo.SaveDoubts(ctx, updated); err != nil {
		return noop[models.Doubt](), storageError(err, "failed to save doubts")
	}
	s.hooks.done(ctx, "answer_doubt", true)
	return applied(&doubt), nil
}

func indexOfDoubt(doubts []models.Doubt, id string) int {
	for i := range doubts {
		if doubts[i].ID == id {
			return i
		}
	}
	return -1
}

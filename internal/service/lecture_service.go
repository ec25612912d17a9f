package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-hub-api/internal/dto"
	"github.com/noah-isme/campus-hub-api/internal/models"
	appErrors "github.com/noah-isme/campus-hub-api/pkg/errors"
)

// teacherDisplayName is shown as the lecturer when a teacher schedules their own lecture.
const teacherDisplayName = "You"

type lectureRepository interface {
	Lectures(ctx context.Context) ([]models.Lecture, error)
	SaveLectures(ctx context.Context, lectures []models.Lecture) error
}

// LectureService manages the lecture schedule.
type LectureService struct {
	repo      lectureRepository
	lock      *BoardLock
	validator *validator.Validate
	hooks     mutationHooks
	now       func() time.Time
	logger    *zap.Logger
}

// NewLectureService constructs the service.
func NewLectureService(repo lectureRepository, lock *BoardLock, cache cacheInvalidator, metrics mutationRecorder, validate *validator.Validate, clock func() time.Time, logger *zap.Logger) *LectureService {
	if lock == nil {
		lock = NewBoardLock()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LectureService{
		repo:      repo,
		lock:      lock,
		validator: validate,
		hooks:     mutationHooks{cache: cache, metrics: metrics, logger: logger},
		now:       defaultClock(clock),
		logger:    logger,
	}
}

// List returns the schedule in insertion order.
func (s *LectureService) List(ctx context.Context) ([]models.Lecture, error) {
	lectures, err := s.repo.Lectures(ctx)
	if err != nil {
		return nil, storageError(err, "failed to load lectures")
	}
	return lectures, nil
}

// Add schedules a lecture. A missing subject or time makes the call a no-op.
func (s *LectureService) Add(ctx context.Context, session models.Session, req dto.LectureRequest) (Outcome[models.Lecture], error) {
	if err := s.validator.Struct(req); err != nil {
		return noop[models.Lecture](), appErrors.Validation(err, "invalid payload")
	}
	if req.Subject == "" || req.Time == "" {
		s.hooks.done(ctx, "add_lecture", false)
		return noop[models.Lecture](), nil
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	lectures, err := s.repo.Lectures(ctx)
	if err != nil {
		return noop[models.Lecture](), storageError(err, "failed to load lectures")
	}
	lecture := models.Lecture{
		ID: uniqueID("lec", s.now(), func(id string) bool {
			for _, l := range lectures {
				if l.ID == id {
					return true
				}
			}
			return false
		}),
		Subject:     req.Subject,
		Topic:       req.Topic,
		Time:        req.Time,
		Room:        req.Room,
		TeacherName: lecturerName(session),
	}
	updated := make([]models.Lecture, 0, len(lectures)+1)
	updated = append(updated, lectures...)
	updated = append(updated, lecture)
	if err := s.repo.SaveLectures(ctx, updated); err != nil {
		return noop[models.Lecture](), storageError(err, "failed to save lectures")
	}
	s.hooks.done(ctx, "add_lecture", true)
	return applied(&lecture), nil
}

func lecturerName(session models.Session) string {
	if session.Role == models.RoleTeacher {
		return teacherDisplayName
	}
	return session.Email
}

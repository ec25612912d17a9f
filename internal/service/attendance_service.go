package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-hub-api/internal/dto"
	"github.com/noah-isme/campus-hub-api/internal/models"
	appErrors "github.com/noah-isme/campus-hub-api/pkg/errors"
)

const (
	placeholderTopicTitle = "Intro: Linear Algebra"
	topicDateLayout       = "2006-01-02"
)

type attendanceRepository interface {
	Attendance(ctx context.Context) (models.AttendanceData, error)
	SaveAttendance(ctx context.Context, data models.AttendanceData) error
	CurrentTopic(ctx context.Context) (string, error)
	SetCurrentTopic(ctx context.Context, topicID string) error
}

// AttendanceService records attendance marks against the current topic.
type AttendanceService struct {
	repo      attendanceRepository
	lock      *BoardLock
	validator *validator.Validate
	hooks     mutationHooks
	now       func() time.Time
	logger    *zap.Logger
}

// NewAttendanceService constructs the service.
func NewAttendanceService(repo attendanceRepository, lock *BoardLock, cache cacheInvalidator, metrics mutationRecorder, validate *validator.Validate, clock func() time.Time, logger *zap.Logger) *AttendanceService {
	if lock == nil {
		lock = NewBoardLock()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		repo:      repo,
		lock:      lock,
		validator: validate,
		hooks:     mutationHooks{cache: cache, metrics: metrics, logger: logger},
		now:       defaultClock(clock),
		logger:    logger,
	}
}

// Data returns every topic with the id of the current one.
func (s *AttendanceService) Data(ctx context.Context) (*dto.AttendanceResponse, error) {
	data, err := s.repo.Attendance(ctx)
	if err != nil {
		return nil, storageError(err, "failed to load attendance")
	}
	current, err := s.repo.CurrentTopic(ctx)
	if err != nil {
		return nil, storageError(err, "failed to load current topic")
	}
	if _, ok := data[current]; !ok {
		current = firstTopicID(data)
	}
	return &dto.AttendanceResponse{CurrentTopic: current, Topics: data}, nil
}

// Percent computes the attendance percentage for student.
func (s *AttendanceService) Percent(ctx context.Context, student string) (int, error) {
	data, err := s.repo.Attendance(ctx)
	if err != nil {
		return 0, storageError(err, "failed to load attendance")
	}
	return AttendancePercent(data, student), nil
}

// Record sets the caller's status on the current topic. Privileged callers may mark another student.
func (s *AttendanceService) Record(ctx context.Context, session models.Session, req dto.RecordAttendanceRequest) (*dto.AttendanceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid payload")
	}
	student := session.Email
	if req.StudentEmail != "" && req.StudentEmail != session.Email {
		if !session.Privileged() {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only teachers and presidents may mark other students")
		}
		student = req.StudentEmail
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	data, err := s.repo.Attendance(ctx)
	if err != nil {
		return nil, storageError(err, "failed to load attendance")
	}
	current, err := s.repo.CurrentTopic(ctx)
	if err != nil {
		return nil, storageError(err, "failed to load current topic")
	}

	updated, topicID, created := recordAttendance(data, current, student, req.Status, s.now())
	if err := s.repo.SaveAttendance(ctx, updated); err != nil {
		return nil, storageError(err, "failed to save attendance")
	}
	if topicID != current {
		if err := s.repo.SetCurrentTopic(ctx, topicID); err != nil {
			return nil, storageError(err, "failed to save current topic")
		}
	}
	if created {
		s.logger.Info("placeholder attendance topic created", zap.String("topic_id", topicID))
	}
	s.hooks.done(ctx, "record_attendance", true)
	return &dto.AttendanceResponse{CurrentTopic: topicID, Topics: updated}, nil
}

// OpenTopic starts a new topic and makes it current. Only privileged callers may open topics.
func (s *AttendanceService) OpenTopic(ctx context.Context, session models.Session, req dto.OpenTopicRequest) (*dto.AttendanceResponse, error) {
	if !session.Privileged() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only teachers and presidents may open topics")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid payload")
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	data, err := s.repo.Attendance(ctx)
	if err != nil {
		return nil, storageError(err, "failed to load attendance")
	}
	now := s.now()
	date := req.Date
	if date == "" {
		date = now.Format(topicDateLayout)
	}
	updated, topicID := openTopic(data, req.Title, date, now)
	if err := s.repo.SaveAttendance(ctx, updated); err != nil {
		return nil, storageError(err, "failed to save attendance")
	}
	if err := s.repo.SetCurrentTopic(ctx, topicID); err != nil {
		return nil, storageError(err, "failed to save current topic")
	}
	s.hooks.done(ctx, "open_topic", true)
	s.logger.Info("attendance topic opened", zap.String("topic_id", topicID), zap.String("opened_by", session.Email))
	return &dto.AttendanceResponse{CurrentTopic: topicID, Topics: updated}, nil
}

// recordAttendance resolves the topic to mark and returns the updated copy of data.
// Resolution: the current topic when it exists, else the smallest topic id, else a new placeholder topic.
func recordAttendance(data models.AttendanceData, current, student string, status models.AttendanceStatus, now time.Time) (models.AttendanceData, string, bool) {
	updated := data.Clone()
	topicID := current
	created := false
	if _, ok := updated[topicID]; !ok {
		topicID = firstTopicID(updated)
	}
	if topicID == "" {
		updated, topicID = openTopic(updated, placeholderTopicTitle, now.Format(topicDateLayout), now)
		created = true
	}
	record := updated[topicID]
	if record.Students == nil {
		record.Students = map[string]models.AttendanceStatus{}
	}
	record.Students[student] = status
	updated[topicID] = record
	return updated, topicID, created
}

func openTopic(data models.AttendanceData, title, date string, now time.Time) (models.AttendanceData, string) {
	updated := data.Clone()
	topicID := uniqueID("topic", now, func(id string) bool {
		_, ok := updated[id]
		return ok
	})
	updated[topicID] = models.AttendanceRecord{
		Title:    title,
		Date:     date,
		Students: map[string]models.AttendanceStatus{},
	}
	return updated, topicID
}

func firstTopicID(data models.AttendanceData) string {
	if len(data) == 0 {
		return ""
	}
	ids := make([]string, 0, len(data))
	for id := range data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids[0]
}

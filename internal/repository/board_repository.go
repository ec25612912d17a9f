package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/campus-hub-api/internal/models"
)

// Collection names as stored, before the key prefix is applied.
const (
	CollectionAnnouncements     = "announcements"
	CollectionDiscussions       = "discussions"
	CollectionLostFound         = "lostFound"
	CollectionAttendance        = "attendance"
	CollectionAttendanceCurrent = "attendanceCurrent"
	CollectionAlerts            = "alerts"
	CollectionLectures          = "lectures"
	CollectionDoubts            = "doubts"
	CollectionSession           = "session"
	CollectionReports           = "reports"
)

type storeObserver interface {
	ObserveStoreOp(op, collection string, duration time.Duration)
}

// BoardRepository exposes typed get/save access to every board collection.
// Missing collections read as empty values.
type BoardRepository struct {
	store    CollectionStore
	prefix   string
	observer storeObserver
}

// NewBoardRepository wraps a collection store. observer may be nil.
func NewBoardRepository(store CollectionStore, prefix string, observer storeObserver) *BoardRepository {
	return &BoardRepository{store: store, prefix: prefix, observer: observer}
}

func (r *BoardRepository) key(collection string) string {
	return r.prefix + collection
}

func (r *BoardRepository) load(ctx context.Context, collection string, dest interface{}) error {
	start := time.Now()
	err := r.store.Load(ctx, r.key(collection), dest)
	r.observe("load", collection, start)
	if err != nil && !errors.Is(err, ErrCollectionMissing) {
		return fmt.Errorf("load %s: %w", collection, err)
	}
	return nil
}

func (r *BoardRepository) save(ctx context.Context, collection string, value interface{}) error {
	start := time.Now()
	err := r.store.Save(ctx, r.key(collection), value)
	r.observe("save", collection, start)
	if err != nil {
		return fmt.Errorf("save %s: %w", collection, err)
	}
	return nil
}

func (r *BoardRepository) observe(op, collection string, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveStoreOp(op, collection, time.Since(start))
	}
}

// Announcements returns the announcements collection.
func (r *BoardRepository) Announcements(ctx context.Context) ([]models.Post, error) {
	posts := []models.Post{}
	if err := r.load(ctx, CollectionAnnouncements, &posts); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

// SaveAnnouncements replaces the announcements collection.
func (r *BoardRepository) SaveAnnouncements(ctx context.Context, posts []models.Post) error {
	return r.save(ctx, CollectionAnnouncements, posts)
}

// Discussions returns discussion posts grouped by category.
func (r *BoardRepository) Discussions(ctx context.Context) (models.Discussions, error) {
	discussions := models.Discussions{}
	if err := r.load(ctx, CollectionDiscussions, &discussions); err != nil {
		return nil, err
	}
	if discussions == nil {
		discussions = models.Discussions{}
	}
	return discussions, nil
}

// SaveDiscussions replaces every discussion category.
func (r *BoardRepository) SaveDiscussions(ctx context.Context, discussions models.Discussions) error {
	return r.save(ctx, CollectionDiscussions, discussions)
}

// LostFound returns the lost-and-found collection.
func (r *BoardRepository) LostFound(ctx context.Context) ([]models.Post, error) {
	posts := []models.Post{}
	if err := r.load(ctx, CollectionLostFound, &posts); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

// SaveLostFound replaces the lost-and-found collection.
func (r *BoardRepository) SaveLostFound(ctx context.Context, posts []models.Post) error {
	return r.save(ctx, CollectionLostFound, posts)
}

// Board loads the three post collections at once.
func (r *BoardRepository) Board(ctx context.Context) (models.Board, error) {
	announcements, err := r.Announcements(ctx)
	if err != nil {
		return models.Board{}, err
	}
	discussions, err := r.Discussions(ctx)
	if err != nil {
		return models.Board{}, err
	}
	lostFound, err := r.LostFound(ctx)
	if err != nil {
		return models.Board{}, err
	}
	return models.Board{Announcements: announcements, Discussions: discussions, LostFound: lostFound}, nil
}

// Attendance returns attendance records keyed by topic id.
func (r *BoardRepository) Attendance(ctx context.Context) (models.AttendanceData, error) {
	data := models.AttendanceData{}
	if err := r.load(ctx, CollectionAttendance, &data); err != nil {
		return nil, err
	}
	if data == nil {
		data = models.AttendanceData{}
	}
	return data, nil
}

// SaveAttendance replaces the attendance records.
func (r *BoardRepository) SaveAttendance(ctx context.Context, data models.AttendanceData) error {
	return r.save(ctx, CollectionAttendance, data)
}

// CurrentTopic returns the id of the topic attendance is recorded against, or "".
func (r *BoardRepository) CurrentTopic(ctx context.Context) (string, error) {
	var topicID string
	if err := r.load(ctx, CollectionAttendanceCurrent, &topicID); err != nil {
		return "", err
	}
	return topicID, nil
}

// SetCurrentTopic stores the active topic reference.
func (r *BoardRepository) SetCurrentTopic(ctx context.Context, topicID string) error {
	return r.save(ctx, CollectionAttendanceCurrent, topicID)
}

// Alerts returns campus alerts in insertion order.
func (r *BoardRepository) Alerts(ctx context.Context) ([]models.Alert, error) {
	alerts := []models.Alert{}
	if err := r.load(ctx, CollectionAlerts, &alerts); err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	return alerts, nil
}

// SaveAlerts replaces the alerts collection.
func (r *BoardRepository) SaveAlerts(ctx context.Context, alerts []models.Alert) error {
	return r.save(ctx, CollectionAlerts, alerts)
}

// Lectures returns the lecture schedule.
func (r *BoardRepository) Lectures(ctx context.Context) ([]models.Lecture, error) {
	lectures := []models.Lecture{}
	if err := r.load(ctx, CollectionLectures, &lectures); err != nil {
		return nil, err
	}
	if lectures == nil {
		lectures = []models.Lecture{}
	}
	return lectures, nil
}

// SaveLectures replaces the lecture schedule.
func (r *BoardRepository) SaveLectures(ctx context.Context, lectures []models.Lecture) error {
	return r.save(ctx, CollectionLectures, lectures)
}

// Doubts returns the tutor channel questions.
func (r *BoardRepository) Doubts(ctx context.Context) ([]models.Doubt, error) {
	doubts := []models.Doubt{}
	if err := r.load(ctx, CollectionDoubts, &doubts); err != nil {
		return nil, err
	}
	if doubts == nil {
		doubts = []models.Doubt{}
	}
	return doubts, nil
}

// SaveDoubts replaces the tutor channel questions.
func (r *BoardRepository) SaveDoubts(ctx context.Context, doubts []models.Doubt) error {
	return r.save(ctx, CollectionDoubts, doubts)
}

// Session returns the stored session or nil when absent.
func (r *BoardRepository) Session(ctx context.Context) (*models.Session, error) {
	var session *models.Session
	if err := r.load(ctx, CollectionSession, &session); err != nil {
		return nil, err
	}
	return session, nil
}

// SaveSession stores the session.
func (r *BoardRepository) SaveSession(ctx context.Context, session models.Session) error {
	return r.save(ctx, CollectionSession, session)
}

// ClearSession removes the stored session.
func (r *BoardRepository) ClearSession(ctx context.Context) error {
	start := time.Now()
	err := r.store.Delete(ctx, r.key(CollectionSession))
	r.observe("delete", CollectionSession, start)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

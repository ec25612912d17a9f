package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-hub-api/internal/models"
	appErrors "github.com/noah-isme/campus-hub-api/pkg/errors"
)

type recordingObserver struct {
	ops []string
}

func (o *recordingObserver) ObserveStoreOp(op, collection string, _ time.Duration) {
	o.ops = append(o.ops, op+":"+collection)
}

func TestBoardRepositoryMissingCollectionsReadEmpty(t *testing.T) {
	repo := NewBoardRepository(NewMemoryStore(), "campus:", nil)
	ctx := context.Background()

	announcements, err := repo.Announcements(ctx)
	require.NoError(t, err)
	assert.NotNil(t, announcements)
	assert.Empty(t, announcements)

	discussions, err := repo.Discussions(ctx)
	require.NoError(t, err)
	assert.NotNil(t, discussions)

	attendance, err := repo.Attendance(ctx)
	require.NoError(t, err)
	assert.NotNil(t, attendance)

	topic, err := repo.CurrentTopic(ctx)
	require.NoError(t, err)
	assert.Empty(t, topic)

	session, err := repo.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestBoardRepositoryRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	observer := &recordingObserver{}
	repo := NewBoardRepository(store, "campus:", observer)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveDiscussions(ctx, models.Discussions{
		"general": {{ID: "discussion_1", Type: models.PostTypeDiscussion, Desc: "hi", Time: now, Category: "general"}},
	}))
	require.NoError(t, repo.SaveAttendance(ctx, models.AttendanceData{
		"topic_1": {Title: "Intro", Date: "2024-03-01", Students: map[string]models.AttendanceStatus{"a@campus.edu": models.AttendancePresent}},
	}))
	require.NoError(t, repo.SetCurrentTopic(ctx, "topic_1"))

	board, err := repo.Board(ctx)
	require.NoError(t, err)
	require.Len(t, board.Discussions["general"], 1)
	assert.True(t, board.Discussions["general"][0].Time.Equal(now))

	data, err := repo.Attendance(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.AttendancePresent, data["topic_1"].Students["a@campus.edu"])

	topic, err := repo.CurrentTopic(ctx)
	require.NoError(t, err)
	assert.Equal(t, "topic_1", topic)

	var raw string
	require.NoError(t, store.Load(ctx, "campus:attendanceCurrent", &raw), "keys carry the prefix")
	assert.Equal(t, "topic_1", raw)
	assert.Contains(t, observer.ops, "save:discussions")
	assert.Contains(t, observer.ops, "load:attendance")
}

func TestBoardRepositorySessionLifecycle(t *testing.T) {
	repo := NewBoardRepository(NewMemoryStore(), "", nil)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, models.Session{Email: "t@campus.edu", Role: models.RoleTeacher}))
	session, err := repo.Session(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, models.RoleTeacher, session.Role)

	require.NoError(t, repo.ClearSession(ctx))
	session, err = repo.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	posts := []models.Post{{ID: "announcement_1", Likes: 1}}
	require.NoError(t, store.Save(ctx, "k", posts))
	posts[0].Likes = 99

	var loaded []models.Post
	require.NoError(t, store.Load(ctx, "k", &loaded))
	assert.Equal(t, 1, loaded[0].Likes)

	require.NoError(t, store.Delete(ctx, "k"))
	assert.ErrorIs(t, store.Load(ctx, "k", &loaded), ErrCollectionMissing)
}

func TestCacheRepositoryWithoutClientMisses(t *testing.T) {
	repo := NewCacheRepository(nil, "cache:", nil)
	ctx := context.Background()

	var out map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "dashboard:student", &out), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "dashboard:student", map[string]int{"posts": 1}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "dashboard:*"))
	assert.NoError(t, repo.Close())
}

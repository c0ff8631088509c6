package schedule

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/studyplanner/planner/internal/errors"
	"github.com/studyplanner/planner/internal/models"
	"github.com/studyplanner/planner/internal/planner"
	"github.com/studyplanner/planner/internal/util"
	feed "github.com/studyplanner/planner/internal/websocket"
)

func id(v int64) *int64 { return &v }

var (
	notesTag    = models.Tag{ID: 1, Name: "Notes", Color: "#10B981"}
	deadlineTag = models.Tag{ID: 2, Name: "Deadline", Color: "#EF4444"}
)

func fixtureBooks() []models.Book {
	return []models.Book{
		{ID: 1, Title: "Tagged", PageFrom: 1, PageTo: 100, TotalPages: 100, Duration: 7, TagID: id(1)},
		{ID: 2, Title: "Plain", PageFrom: 1, PageTo: 30, TotalPages: 30, Duration: 3},
	}
}

func fixtureBlocks() []models.ScheduledBlock {
	return []models.ScheduledBlock{
		{ID: 12, BookID: 2, DateGregorian: "2024-03-11", PageStart: 11, PageEnd: 20},
		{ID: 10, BookID: 1, DateGregorian: "2024-03-10", PageStart: 1, PageEnd: 15, TagID: id(1)},
		{ID: 11, BookID: 1, DateGregorian: "2024-03-11", PageStart: 16, PageEnd: 30, TagID: id(2)},
		{ID: 13, BookID: 2, DateGregorian: "2024-03-10", PageStart: 1, PageEnd: 10},
		{ID: 14, BookID: 1, DateGregorian: "2024-03-12", PageStart: 31, PageEnd: 45, TagID: id(99)},
	}
}

func newMockBackend(blocks []models.ScheduledBlock) *MockBackend {
	m := new(MockBackend)
	m.On("ListBooks", mock.Anything).Return(fixtureBooks(), nil)
	m.On("ListTags", mock.Anything).Return([]models.Tag{notesTag, deadlineTag}, nil)
	m.On("ListSchedule", mock.Anything).Return(blocks, nil)
	return m
}

func refreshed(t *testing.T, m *MockBackend) *Store {
	t.Helper()
	s := New(m)
	require.NoError(t, s.Refresh(context.Background()))
	return s
}

func TestRefresh_HydratesTagsAndColors(t *testing.T) {
	s := refreshed(t, newMockBackend(fixtureBlocks()))

	blocks := s.Blocks()
	require.Len(t, blocks, 5)
	assert.Equal(t, "2024-03-10", blocks[0].DateGregorian)
	assert.Equal(t, "2024-03-12", blocks[4].DateGregorian)

	byID := map[int64]models.ScheduledBlock{}
	for _, b := range blocks {
		byID[b.ID] = b
	}

	require.NotNil(t, byID[10].Tag)
	assert.Equal(t, "Notes", byID[10].Tag.Name)
	assert.Equal(t, "#10B981", byID[10].Color)

	// Block tag beats book tag.
	assert.Equal(t, "#EF4444", byID[11].Color)

	// Unknown block tag falls back to the book's tag.
	assert.Nil(t, byID[14].Tag)
	assert.Equal(t, "#10B981", byID[14].Color)

	// No tag anywhere: palette color of the book.
	assert.Equal(t, PaletteColor(2), byID[12].Color)
	assert.Equal(t, byID[12].Color, byID[13].Color)
	assert.Equal(t, "Plain", byID[13].BookTitle)

	assert.False(t, s.LastSynced().IsZero())

	books := s.Books()
	require.Len(t, books, 2)
	assert.Equal(t, "Plain", books[0].Title)
	require.NotNil(t, books[1].Tag)
	assert.Equal(t, "Notes", books[1].Tag.Name)
}

func TestRefresh_FailureKeepsState(t *testing.T) {
	m := newMockBackend(fixtureBlocks())
	s := refreshed(t, m)

	failing := new(MockBackend)
	failing.On("ListBooks", mock.Anything).Return(fixtureBooks(), nil)
	failing.On("ListTags", mock.Anything).Return([]models.Tag(nil), errors.BackendUnavailable("GET /api/tags/", nil))
	s.backend = failing

	err := s.Refresh(context.Background())
	assert.True(t, errors.Is(err, errors.ErrBackendUnavailable))
	assert.Len(t, s.Blocks(), 5)
	assert.Len(t, s.Tags(), 2)
	failing.AssertNotCalled(t, "ListSchedule", mock.Anything)
}

func TestCommitSchedule_CommitThenRefresh(t *testing.T) {
	book := models.Book{ID: 3, Title: "New", PageFrom: 1, PageTo: 100, TotalPages: 100, Duration: 7}
	start := util.Date(2024, time.March, 10)
	generated, err := planner.GenerateSessions(book, start)
	require.NoError(t, err)
	for i := range generated {
		generated[i].ID = int64(100 + i)
	}

	m := new(MockBackend)
	m.On("ListBooks", mock.Anything).Return(fixtureBooks(), nil)
	m.On("ListTags", mock.Anything).Return([]models.Tag{notesTag}, nil)
	m.On("ScheduleBook", mock.Anything, int64(3), "2024-03-10").Return(nil).Once()
	m.On("ListSchedule", mock.Anything).Return(generated, nil)

	var logs bytes.Buffer
	s := New(m)
	s.log = slog.New(slog.NewTextHandler(&logs, nil))

	require.NoError(t, s.CommitSchedule(context.Background(), book, start))
	assert.Len(t, s.Blocks(), 7)
	assert.Equal(t, "2024-03-10", s.Blocks()[0].DateGregorian)
	assert.NotContains(t, logs.String(), "differ")
	m.AssertExpectations(t)
}

func TestCommitSchedule_LogsDrift(t *testing.T) {
	book := models.Book{ID: 3, PageFrom: 1, PageTo: 100, Duration: 7}
	drifted := []models.ScheduledBlock{{ID: 1, BookID: 3, DateGregorian: "2024-03-10", PageStart: 1, PageEnd: 100}}

	m := newMockBackend(drifted)
	m.On("ScheduleBook", mock.Anything, int64(3), "2024-03-10").Return(nil)

	var logs bytes.Buffer
	s := New(m)
	s.log = slog.New(slog.NewTextHandler(&logs, nil))

	require.NoError(t, s.CommitSchedule(context.Background(), book, util.Date(2024, time.March, 10)))
	assert.Contains(t, logs.String(), "server ranges differ from local generation")
	assert.Len(t, s.Blocks(), 1)
}

func TestCommitSchedule_FailureLeavesStateUntouched(t *testing.T) {
	m := newMockBackend(fixtureBlocks())
	s := refreshed(t, m)
	before := s.Blocks()

	m.On("ScheduleBook", mock.Anything, int64(2), "2024-04-01").Return(errors.BackendUnavailable("POST /schedule/book/", nil))

	err := s.CommitSchedule(context.Background(), fixtureBooks()[1], util.Date(2024, time.April, 1))
	assert.True(t, errors.Is(err, errors.ErrBackendUnavailable))
	assert.Equal(t, before, s.Blocks())
	m.AssertNumberOfCalls(t, "ListSchedule", 1)

	err = s.CommitSchedule(context.Background(), fixtureBooks()[1], time.Time{})
	assert.True(t, errors.Is(err, errors.ErrInvalidDate))
}

func TestCommitMove(t *testing.T) {
	m := newMockBackend(fixtureBlocks())
	s := refreshed(t, m)

	m.On("MoveBlock", mock.Anything, int64(11), "2024-03-20").Return(nil).Once()
	require.NoError(t, s.CommitMove(context.Background(), 11, util.Date(2024, time.March, 20)))
	m.AssertNumberOfCalls(t, "ListSchedule", 2)

	// Same date: nothing is sent.
	require.NoError(t, s.CommitMove(context.Background(), 10, util.Date(2024, time.March, 10)))
	m.AssertNumberOfCalls(t, "MoveBlock", 1)

	m.On("MoveBlock", mock.Anything, int64(12), "2024-03-21").Return(errors.BackendUnavailable("PATCH", nil))
	err := s.CommitMove(context.Background(), 12, util.Date(2024, time.March, 21))
	assert.True(t, errors.Is(err, errors.ErrBackendUnavailable))
	m.AssertNumberOfCalls(t, "ListSchedule", 2)
}

func TestCommit_InFlightGuard(t *testing.T) {
	m := newMockBackend(fixtureBlocks())
	s := refreshed(t, m)

	entered := make(chan struct{})
	release := make(chan struct{})
	m.On("MoveBlock", mock.Anything, int64(10), "2024-03-15").Run(func(mock.Arguments) {
		close(entered)
		<-release
	}).Return(nil)
	m.On("MoveBlock", mock.Anything, int64(12), "2024-03-15").Return(nil)

	done := make(chan error, 1)
	go func() { done <- s.CommitMove(context.Background(), 10, util.Date(2024, time.March, 15)) }()
	<-entered

	assert.True(t, s.Busy())
	err := s.CommitMove(context.Background(), 10, util.Date(2024, time.March, 16))
	assert.True(t, errors.Is(err, errors.ErrConflict))
	err = s.CommitRetag(context.Background(), 10, nil)
	assert.True(t, errors.Is(err, errors.ErrConflict))

	// Other blocks are not locked.
	assert.NoError(t, s.CommitMove(context.Background(), 12, util.Date(2024, time.March, 15)))

	close(release)
	require.NoError(t, <-done)
	assert.False(t, s.Busy())
}

func TestCommitRetag(t *testing.T) {
	m := newMockBackend(fixtureBlocks())
	s := refreshed(t, m)

	m.On("RetagBlock", mock.Anything, int64(13), id(2)).Return(nil)
	require.NoError(t, s.CommitRetag(context.Background(), 13, id(2)))
	m.AssertCalled(t, "RetagBlock", mock.Anything, int64(13), id(2))
	m.AssertNumberOfCalls(t, "ListSchedule", 2)
}

func TestClearAll(t *testing.T) {
	m := newMockBackend(fixtureBlocks())
	s := refreshed(t, m)

	m.On("ClearSchedule", mock.Anything).Return(errors.BackendUnavailable("DELETE", nil)).Once()
	assert.Error(t, s.ClearAll(context.Background()))
	assert.Len(t, s.Blocks(), 5)

	m.On("ClearSchedule", mock.Anything).Return(nil).Once()
	require.NoError(t, s.ClearAll(context.Background()))
	assert.Empty(t, s.Blocks())
	assert.Len(t, s.Books(), 2)
}

func TestClearAll_WaitsForRunningRefresh(t *testing.T) {
	m := new(MockBackend)
	m.On("ListBooks", mock.Anything).Return(fixtureBooks(), nil)
	m.On("ListTags", mock.Anything).Return([]models.Tag{notesTag, deadlineTag}, nil)
	entered := make(chan struct{})
	release := make(chan struct{})
	m.On("ListSchedule", mock.Anything).Run(func(mock.Arguments) {
		close(entered)
		<-release
	}).Return(fixtureBlocks(), nil).Once()
	m.On("ClearSchedule", mock.Anything).Return(nil)
	s := New(m)

	refreshDone := make(chan error, 1)
	go func() { refreshDone <- s.Refresh(context.Background()) }()
	<-entered

	clearDone := make(chan error, 1)
	go func() { clearDone <- s.ClearAll(context.Background()) }()

	select {
	case <-clearDone:
		t.Fatal("clear finished while a refresh was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-refreshDone)
	require.NoError(t, <-clearDone)
	assert.Empty(t, s.Blocks())
	assert.Len(t, s.Books(), 2)
}

func TestVisible_TagFilter(t *testing.T) {
	s := refreshed(t, newMockBackend(fixtureBlocks()))

	assert.Len(t, s.Visible(nil), 5)

	ids := func(blocks []models.ScheduledBlock) []int64 {
		var out []int64
		for _, b := range blocks {
			out = append(out, b.ID)
		}
		return out
	}
	assert.ElementsMatch(t, []int64{10, 14}, ids(s.Visible(TagFilter{"notes"})))
	assert.ElementsMatch(t, []int64{10, 11, 14}, ids(s.Visible(TagFilter{"Notes", "Deadline"})))
	assert.Empty(t, s.Visible(TagFilter{"Group"}))

	assert.ElementsMatch(t, []int64{10, 13}, ids(s.BlocksOn("2024-03-10", nil)))
	assert.ElementsMatch(t, []int64{10}, ids(s.BlocksOn("2024-03-10", TagFilter{"Notes"})))
}

func TestLookups(t *testing.T) {
	s := refreshed(t, newMockBackend(fixtureBlocks()))

	b, ok := s.Book(2)
	assert.True(t, ok)
	assert.Equal(t, "Plain", b.Title)
	_, ok = s.Book(9)
	assert.False(t, ok)

	blk, ok := s.Block(11)
	assert.True(t, ok)
	assert.Equal(t, 16, blk.PageStart)

	tag, ok := s.TagByName("deadline")
	assert.True(t, ok)
	assert.Equal(t, int64(2), tag.ID)

	known := s.KnownDays()
	assert.Len(t, known, 5)
}

func TestSnapshotsAreCopies(t *testing.T) {
	s := refreshed(t, newMockBackend(fixtureBlocks()))
	blocks := s.Blocks()
	blocks[0].DateGregorian = "1999-01-01"
	assert.NotEqual(t, "1999-01-01", s.Blocks()[0].DateGregorian)
}

func TestPaletteColor(t *testing.T) {
	assert.Equal(t, Palette[0], PaletteColor(0))
	assert.Equal(t, Palette[1], PaletteColor(int64(len(Palette)+1)))
	assert.Equal(t, Palette[3], PaletteColor(-3))
}

func TestSubscribe_RefreshesOnChange(t *testing.T) {
	m := newMockBackend(fixtureBlocks())
	s := New(m)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		conn.WriteJSON(map[string]string{"type": "other"})
		conn.WriteJSON(feed.Event{Type: feed.EventScheduleChanged, Action: "moved", BlockID: 11})
		// Hold the connection until the client goes away.
		conn.ReadMessage()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan feed.Event, 1)
	done := make(chan error, 1)
	header := http.Header{"Authorization": []string{"Bearer tok"}}
	go func() {
		done <- s.Subscribe(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), header, func(ev feed.Event) { events <- ev })
	}()

	select {
	case ev := <-events:
		assert.Equal(t, "moved", ev.Action)
	case <-time.After(5 * time.Second):
		t.Fatal("no change event received")
	}
	assert.Len(t, s.Blocks(), 5)
	m.AssertNumberOfCalls(t, "ListSchedule", 1)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Subscribe did not return after cancel")
	}
}

func TestSubscribe_DialFailure(t *testing.T) {
	s := New(new(MockBackend))
	err := s.Subscribe(context.Background(), "ws://127.0.0.1:1/ws/schedule", nil, nil)
	assert.True(t, errors.Is(err, errors.ErrBackendUnavailable))
}

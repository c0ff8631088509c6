// Package schedule holds the client's view of the user's books, tags and
// scheduled blocks as last synchronized with the server. The Store is the
// only writer of that state; views read snapshots of it.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/studyplanner/planner/internal/calendar"
	"github.com/studyplanner/planner/internal/errors"
	"github.com/studyplanner/planner/internal/models"
	"github.com/studyplanner/planner/internal/planner"
	"github.com/studyplanner/planner/internal/util"
)

// Backend is the part of the server API the Store depends on.
type Backend interface {
	ListBooks(ctx context.Context) ([]models.Book, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	ListSchedule(ctx context.Context) ([]models.ScheduledBlock, error)
	ScheduleBook(ctx context.Context, bookID int64, start string) error
	MoveBlock(ctx context.Context, blockID int64, date string) error
	RetagBlock(ctx context.Context, blockID int64, tagID *int64) error
	ClearSchedule(ctx context.Context) error
}

// Palette colors blocks whose book and block carry no tag, keyed by book id.
var Palette = []string{
	"#3B82F6",
	"#10B981",
	"#F59E0B",
	"#8B5CF6",
	"#EC4899",
	"#14B8A6",
	"#F97316",
	"#6366F1",
}

// PaletteColor returns the fallback color of a book.
func PaletteColor(bookID int64) string {
	i := bookID % int64(len(Palette))
	if i < 0 {
		i = -i
	}
	return Palette[i]
}

// Store is the synchronized client state.
type Store struct {
	backend Backend
	log     *slog.Logger

	mu     sync.RWMutex
	books  []models.Book
	tags   []models.Tag
	blocks []models.ScheduledBlock
	synced time.Time

	// refreshMu orders refreshes so that a commit's refresh is never
	// overtaken by an older one.
	refreshMu sync.Mutex

	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

// New creates an empty Store on top of backend.
func New(backend Backend) *Store {
	return &Store{
		backend:  backend,
		log:      slog.Default().With("component", "schedule"),
		inflight: make(map[string]struct{}),
	}
}

// Refresh re-fetches books, tags and blocks and replaces the collections
// wholesale. Nothing changes unless all three fetches succeed.
func (s *Store) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	books, err := s.backend.ListBooks(ctx)
	if err != nil {
		return err
	}
	tags, err := s.backend.ListTags(ctx)
	if err != nil {
		return err
	}
	blocks, err := s.backend.ListSchedule(ctx)
	if err != nil {
		return err
	}

	hydrate(blocks, books, tags)
	planner.SortByDate(blocks)
	util.SortByNaturalKey(books, func(b models.Book) string { return b.Title })

	s.mu.Lock()
	s.books, s.tags, s.blocks = books, tags, blocks
	s.synced = time.Now()
	s.mu.Unlock()

	s.log.Debug("schedule refreshed", "books", len(books), "tags", len(tags), "blocks", len(blocks))
	return nil
}

// hydrate resolves each block's tag from its id and sets its display color:
// the block's tag, then the book's tag, then the palette color of the book.
func hydrate(blocks []models.ScheduledBlock, books []models.Book, tags []models.Tag) {
	tagByID := make(map[int64]*models.Tag, len(tags))
	for i := range tags {
		tagByID[tags[i].ID] = &tags[i]
	}
	bookByID := make(map[int64]*models.Book, len(books))
	for i := range books {
		b := &books[i]
		if b.Tag == nil && b.TagID != nil {
			b.Tag = tagByID[*b.TagID]
		}
		bookByID[b.ID] = b
	}

	for i := range blocks {
		b := &blocks[i]
		b.Tag = nil
		if b.TagID != nil {
			if t, ok := tagByID[*b.TagID]; ok {
				tag := *t
				b.Tag = &tag
			}
		}

		switch book := bookByID[b.BookID]; {
		case b.Tag != nil:
			b.Color = b.Tag.Color
		case book != nil && book.Tag != nil:
			b.Color = book.Tag.Color
		default:
			b.Color = PaletteColor(b.BookID)
		}
		if b.BookTitle == "" {
			if book := bookByID[b.BookID]; book != nil {
				b.BookTitle = book.Title
			}
		}
	}
}

// CommitSchedule asks the server to (re)generate book's blocks from start
// and refreshes. The refreshed ranges are compared with a local generation;
// a mismatch is logged and the server's blocks are kept.
func (s *Store) CommitSchedule(ctx context.Context, book models.Book, start time.Time) error {
	if start.IsZero() {
		return errors.InvalidDate("start date is required")
	}
	release, err := s.acquire(fmt.Sprintf("book:%d", book.ID))
	if err != nil {
		return err
	}
	defer release()

	date := util.FormatISODate(start)
	if err := s.backend.ScheduleBook(ctx, book.ID, date); err != nil {
		s.log.Warn("schedule commit failed", "book", book.ID, "start", date, "error", err)
		return err
	}
	if err := s.Refresh(ctx); err != nil {
		return err
	}

	if err := planner.VerifyAgainst(book, start, s.Blocks()); err != nil {
		s.log.Warn("server ranges differ from local generation", "book", book.ID, "start", date, "error", err)
	}
	return nil
}

// CommitMove moves a block to date and refreshes. Moving a known block to
// its current date does nothing.
func (s *Store) CommitMove(ctx context.Context, blockID int64, date time.Time) error {
	if date.IsZero() {
		return errors.InvalidDate("target date is required")
	}
	target := util.FormatISODate(date)
	if b, ok := s.Block(blockID); ok && b.DateGregorian == target {
		return nil
	}

	release, err := s.acquire(fmt.Sprintf("block:%d", blockID))
	if err != nil {
		return err
	}
	defer release()

	if err := s.backend.MoveBlock(ctx, blockID, target); err != nil {
		s.log.Warn("move commit failed", "block", blockID, "date", target, "error", err)
		return err
	}
	return s.Refresh(ctx)
}

// CommitRetag sets or, with a nil tagID, clears a block's own tag and
// refreshes.
func (s *Store) CommitRetag(ctx context.Context, blockID int64, tagID *int64) error {
	release, err := s.acquire(fmt.Sprintf("block:%d", blockID))
	if err != nil {
		return err
	}
	defer release()

	if err := s.backend.RetagBlock(ctx, blockID, tagID); err != nil {
		s.log.Warn("retag commit failed", "block", blockID, "error", err)
		return err
	}
	return s.Refresh(ctx)
}

// ClearAll removes every block on the server and empties the local blocks.
// Books and tags are kept.
func (s *Store) ClearAll(ctx context.Context) error {
	// Serialized with Refresh so an older fetch cannot restore the blocks.
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	if err := s.backend.ClearSchedule(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.blocks = nil
	s.mu.Unlock()
	return nil
}

// acquire marks key as having a commit in flight.
func (s *Store) acquire(key string) (func(), error) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return nil, errors.Conflict("commit in flight for " + key)
	}
	s.inflight[key] = struct{}{}
	return func() {
		s.inflightMu.Lock()
		delete(s.inflight, key)
		s.inflightMu.Unlock()
	}, nil
}

// Busy reports whether any commit is in flight.
func (s *Store) Busy() bool {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	return len(s.inflight) > 0
}

// Books returns a copy of the books.
func (s *Store) Books() []models.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.books)
}

// Tags returns a copy of the tags.
func (s *Store) Tags() []models.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tags)
}

// Blocks returns a copy of all blocks in date order.
func (s *Store) Blocks() []models.ScheduledBlock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.blocks)
}

// LastSynced returns when the last successful refresh completed.
func (s *Store) LastSynced() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.synced
}

// Book looks up a book by id.
func (s *Store) Book(id int64) (models.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.books {
		if b.ID == id {
			return b, true
		}
	}
	return models.Book{}, false
}

// Block looks up a block by id.
func (s *Store) Block(id int64) (models.ScheduledBlock, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.blocks {
		if b.ID == id {
			return b, true
		}
	}
	return models.ScheduledBlock{}, false
}

// TagByName finds a tag case-insensitively.
func (s *Store) TagByName(name string) (models.Tag, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tags {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return models.Tag{}, false
}

// Visible returns the blocks that pass filter, in date order.
func (s *Store) Visible(filter TagFilter) []models.ScheduledBlock {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ScheduledBlock, 0, len(s.blocks))
	for _, b := range s.blocks {
		if filter.Matches(s.tagNameOf(b)) {
			out = append(out, b)
		}
	}
	return out
}

// BlocksOn returns the visible blocks of one date (YYYY-MM-DD).
func (s *Store) BlocksOn(date string, filter TagFilter) []models.ScheduledBlock {
	var out []models.ScheduledBlock
	for _, b := range s.Visible(filter) {
		if b.DateGregorian == date {
			out = append(out, b)
		}
	}
	return out
}

// KnownDays returns the stored dates of all blocks for the month grid.
func (s *Store) KnownDays() []calendar.KnownDay {
	return calendar.KnownDaysFromBlocks(s.Blocks())
}

// tagNameOf resolves the effective tag name of a block: its own tag, then
// its book's. Callers hold s.mu.
func (s *Store) tagNameOf(b models.ScheduledBlock) string {
	if b.Tag != nil {
		return b.Tag.Name
	}
	for _, book := range s.books {
		if book.ID == b.BookID && book.Tag != nil {
			return book.Tag.Name
		}
	}
	return ""
}

// TagFilter selects blocks by tag name. A block passes when the filter is
// empty or its tag name is one of the selected names.
type TagFilter []string

// Matches reports whether a block with tag name passes the filter.
func (f TagFilter) Matches(name string) bool {
	if len(f) == 0 {
		return true
	}
	if name == "" {
		return false
	}
	for _, sel := range f {
		if strings.EqualFold(sel, name) {
			return true
		}
	}
	return false
}

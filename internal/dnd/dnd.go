// Package dnd turns drag-and-drop gestures into schedule commits. It knows
// nothing about any UI toolkit: a front end reports where a drag started and
// where it ended, and the Controller decides which commit, if any, to make.
package dnd

import (
	"context"
	"sync"
	"time"

	"github.com/studyplanner/planner/internal/errors"
	"github.com/studyplanner/planner/internal/models"
	"github.com/studyplanner/planner/internal/util"
)

// Committer performs the commits a gesture can produce. *schedule.Store
// implements it.
type Committer interface {
	CommitSchedule(ctx context.Context, book models.Book, start time.Time) error
	CommitMove(ctx context.Context, blockID int64, date time.Time) error
}

// Handler is the capability a front end drives.
type Handler interface {
	OnDragStart(p Payload) error
	OnDrop(ctx context.Context, t Target) (Outcome, error)
}

var (
	// ErrBusy is returned while a previous drop is still being committed.
	ErrBusy = errors.Conflict("calendar is locked while a commit is in flight")
	// ErrNoGesture is returned by OnDrop without a preceding OnDragStart.
	ErrNoGesture = errors.Validation("no drag in progress")
)

// Payload is what is being dragged: a book from the sidebar or a block from
// a calendar cell. Exactly one of Book and Block is set.
type Payload struct {
	Book   *models.Book
	Block  *models.ScheduledBlock
	Origin string // date of the cell the drag started from, "" for the sidebar
}

// BookPayload drags a book from the sidebar.
func BookPayload(b models.Book) Payload {
	return Payload{Book: &b}
}

// BlockPayload drags a block from its calendar cell.
func BlockPayload(b models.ScheduledBlock) Payload {
	return Payload{Block: &b, Origin: b.DateGregorian}
}

func (p Payload) valid() bool {
	return (p.Book == nil) != (p.Block == nil)
}

// Target is where a drag ended. An empty Date means no calendar cell.
type Target struct {
	Date string
}

// Outcome is what a completed gesture did.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeScheduled
	OutcomeMoved
)

func (o Outcome) String() string {
	switch o {
	case OutcomeScheduled:
		return "scheduled"
	case OutcomeMoved:
		return "moved"
	default:
		return "none"
	}
}

// Controller tracks one gesture at a time.
type Controller struct {
	committer Committer

	mu     sync.Mutex
	active *Payload
	busy   bool
}

var _ Handler = (*Controller)(nil)

// NewController creates a Controller committing through c.
func NewController(c Committer) *Controller {
	return &Controller{committer: c}
}

// OnDragStart begins a gesture, replacing any gesture that was never dropped.
func (c *Controller) OnDragStart(p Payload) error {
	if !p.valid() {
		return errors.Validation("drag payload must carry exactly one of book or block")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	c.active = &p
	return nil
}

// OnDrop ends the gesture on t and makes at most one commit: a book is
// scheduled from the target date, a block is moved to it. A drop without a
// usable date or onto the cell the drag started from does nothing. The
// gesture is over after OnDrop whatever the result.
func (c *Controller) OnDrop(ctx context.Context, t Target) (Outcome, error) {
	c.mu.Lock()
	p := c.active
	c.active = nil
	if p == nil {
		c.mu.Unlock()
		return OutcomeNone, ErrNoGesture
	}
	if c.busy {
		c.mu.Unlock()
		return OutcomeNone, ErrBusy
	}

	date, err := util.ParseISODate(t.Date)
	if err != nil || t.Date == p.Origin {
		c.mu.Unlock()
		return OutcomeNone, nil
	}
	c.busy = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	if p.Block != nil {
		if err := c.committer.CommitMove(ctx, p.Block.ID, date); err != nil {
			return OutcomeNone, err
		}
		return OutcomeMoved, nil
	}
	if err := c.committer.CommitSchedule(ctx, *p.Book, date); err != nil {
		return OutcomeNone, err
	}
	return OutcomeScheduled, nil
}

// Drop runs a whole gesture at once.
func (c *Controller) Drop(ctx context.Context, p Payload, t Target) (Outcome, error) {
	if err := c.OnDragStart(p); err != nil {
		return OutcomeNone, err
	}
	return c.OnDrop(ctx, t)
}

// Cancel abandons the current gesture without touching the server.
func (c *Controller) Cancel() {
	c.mu.Lock()
	c.active = nil
	c.mu.Unlock()
}

// Dragging returns the payload of the gesture in progress.
func (c *Controller) Dragging() (Payload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return Payload{}, false
	}
	return *c.active, true
}

// Locked reports whether a drop is being committed.
func (c *Controller) Locked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

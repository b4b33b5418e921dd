package calendar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/klabast/wb-services/advent-kalender/internal/logger"
	"github.com/klabast/wb-services/advent-kalender/internal/store"
)

// Store persists one serialized opened-window entry per profile
type Store interface {
	Load(ctx context.Context, profile string) ([]byte, error)
	Save(ctx context.Context, profile string, data []byte) error
	Delete(ctx context.Context, profile string) error
}

// OpenFunc is notified after every successful open
type OpenFunc func(profile string, day int, first bool)

// Options configure a Controller
type Options struct {
	Profile string
	Gate    Gate
	// Entries is the loaded content list. It is copied and sorted.
	Entries []DayEntry
	// LoadEntries, when set, fetches the content list after the opened set
	// has been read from the store, and replaces Entries.
	LoadEntries func(ctx context.Context) []DayEntry
	Store   Store
	Notices *NoticeSlot
	OnOpen  OpenFunc
	Log     *logger.Logger
}

// Controller tracks the windows of one profile. Operations are serialized, so
// each one runs to completion, store write included, before the next begins.
type Controller struct {
	mu      sync.Mutex
	profile string
	gate    Gate
	entries []DayEntry
	opened  OpenedSet
	store   Store
	notices *NoticeSlot
	onOpen  OpenFunc
	log     *logger.Logger
}

// NewController loads the profile's opened windows and binds the content list.
// A missing or malformed stored entry starts the profile with an empty set.
func NewController(ctx context.Context, opts Options) (*Controller, error) {
	if opts.Store == nil {
		return nil, errors.New("calendar: store is required")
	}

	log := opts.Log
	if log == nil {
		log = logger.NewNop()
	}
	notices := opts.Notices
	if notices == nil {
		notices = NewNoticeSlot(DefaultNoticeDismiss)
	}

	c := &Controller{
		profile: opts.Profile,
		gate:    opts.Gate,
		store:   opts.Store,
		notices: notices,
		onOpen:  opts.OnOpen,
		log:     log.WithComponent("calendar").WithProfile(opts.Profile),
	}

	c.opened = c.loadOpened(ctx)

	entries := opts.Entries
	if opts.LoadEntries != nil {
		entries = opts.LoadEntries(ctx)
	}
	c.entries = make([]DayEntry, len(entries))
	copy(c.entries, entries)
	SortEntries(c.entries)

	return c, nil
}

func (c *Controller) loadOpened(ctx context.Context) OpenedSet {
	data, err := c.store.Load(ctx, c.profile)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.log.Errorw("Error loading opened windows", "error", err)
		}
		return NewOpenedSet()
	}

	opened, err := ParseOpened(data)
	if err != nil {
		c.log.Errorw("Error loading opened windows", "error", err)
		return NewOpenedSet()
	}
	return opened
}

// Profile returns the profile this controller belongs to
func (c *Controller) Profile() string {
	return c.profile
}

// Gate returns the gating rule in effect
func (c *Controller) Gate() Gate {
	return c.gate
}

// Notices returns the profile's notice slot
func (c *Controller) Notices() *NoticeSlot {
	return c.notices
}

// Entries returns a copy of the bound content list
func (c *Controller) Entries() []DayEntry {
	out := make([]DayEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Opened returns a copy of the opened-window set
func (c *Controller) Opened() OpenedSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return NewOpenedSet(c.opened.Days()...)
}

// Status computes the render state of a single day
func (c *Controller) Status(day int, now time.Time) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return StatusOf(c.gate, c.opened, day, now)
}

// Windows computes the render state of all 24 windows
func (c *Controller) Windows(now time.Time) []Window {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ComputeWindows(c.gate, c.entries, c.opened, now)
}

// Open reveals a window. Gating is checked again here even though callers only
// offer clickable windows. Locked windows and days without content return a
// *GateError or *NoContentError, raise a notice and change nothing. Otherwise
// the day is added to the set and the full set is persisted before returning.
func (c *Controller) Open(ctx context.Context, day int, now time.Time) (Overlay, error) {
	if !ValidDay(day) {
		return Overlay{}, fmt.Errorf("%w: %d", ErrInvalidDay, day)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.gate.Unlockable(day, now) && !c.opened.Has(day) {
		err := &GateError{Day: day}
		c.notices.Show(err.Error())
		return Overlay{}, err
	}

	entry, ok := FindEntry(c.entries, day)
	if !ok {
		err := &NoContentError{Day: day}
		c.notices.Show(err.Error())
		return Overlay{}, err
	}

	first := c.opened.Add(day)
	if err := c.persistLocked(ctx); err != nil {
		if first {
			delete(c.opened, day)
		}
		return Overlay{}, err
	}

	if c.onOpen != nil {
		c.onOpen(c.profile, day, first)
	}
	c.log.LogWindowOpened(c.profile, day, first)

	return NewOverlay(entry), nil
}

// Overlay returns the content of an already opened window
func (c *Controller) Overlay(day int) (Overlay, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.opened.Has(day) {
		return Overlay{}, false
	}
	entry, ok := FindEntry(c.entries, day)
	if !ok {
		return Overlay{}, false
	}
	return NewOverlay(entry), true
}

// Reset forgets every opened window of the profile
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(ctx, c.profile); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("reset opened windows: %w", err)
	}
	c.opened = NewOpenedSet()
	return nil
}

// persistLocked writes the whole set (caller must hold lock)
func (c *Controller) persistLocked(ctx context.Context) error {
	data, err := MarshalOpened(c.opened)
	if err != nil {
		return fmt.Errorf("encode opened windows: %w", err)
	}
	if err := c.store.Save(ctx, c.profile, data); err != nil {
		return fmt.Errorf("save opened windows: %w", err)
	}
	return nil
}

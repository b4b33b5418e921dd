package calendar

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/klabast/wb-services/advent-kalender/internal/store"
)

const testProfile = "5f1c7e0e-8a43-4d5a-9a49-2f2b7c3f1d10"

// memStore is an in-memory Store that can be told to fail
type memStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	saves   int
	failGet error
	failSet error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Load(ctx context.Context, profile string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return nil, m.failGet
	}
	d, ok := m.data[profile]
	if !ok {
		return nil, store.ErrNotFound
	}
	return d, nil
}

func (m *memStore) Save(ctx context.Context, profile string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return m.failSet
	}
	m.saves++
	m.data[profile] = append([]byte(nil), data...)
	return nil
}

func (m *memStore) Delete(ctx context.Context, profile string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[profile]; !ok {
		return store.ErrNotFound
	}
	delete(m.data, profile)
	return nil
}

func (m *memStore) stored(profile string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.data[profile])
}

var (
	testGate = Gate{Year: 2025, Month: Month, Location: time.UTC}
	dec10    = time.Date(2025, time.December, 10, 12, 0, 0, 0, time.UTC)
)

func testEntries() []DayEntry {
	var entries []DayEntry
	for _, day := range []int{10, 1, 3, 20, 24} {
		entries = append(entries, DayEntry{Day: day, Body: DualBody("", "content")})
	}
	return entries
}

func newTestController(t *testing.T, s Store, entries []DayEntry) *Controller {
	t.Helper()
	c, err := NewController(context.Background(), Options{
		Profile: testProfile,
		Gate:    testGate,
		Entries: entries,
		Store:   s,
		Notices: NewNoticeSlot(time.Minute),
	})
	if err != nil {
		t.Fatalf("NewController() failed: %v", err)
	}
	return c
}

func TestNewControllerRequiresStore(t *testing.T) {
	if _, err := NewController(context.Background(), Options{Gate: testGate}); err == nil {
		t.Error("NewController() without store should fail")
	}
}

func TestNewControllerSortsEntries(t *testing.T) {
	c := newTestController(t, newMemStore(), testEntries())

	entries := c.Entries()
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Day > entries[i].Day {
			t.Fatalf("entries not sorted: %d before %d", entries[i-1].Day, entries[i].Day)
		}
	}
}

func TestNewControllerMalformedStorage(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*memStore)
	}{
		{"Not JSON", func(m *memStore) { m.data[testProfile] = []byte("not json") }},
		{"Store failure", func(m *memStore) { m.failGet = errors.New("disk on fire") }},
		{"Absent", func(m *memStore) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newMemStore()
			tt.setup(s)

			c := newTestController(t, s, testEntries())
			if got := len(c.Opened()); got != 0 {
				t.Errorf("opened = %d windows, want 0", got)
			}
			if got := len(c.Windows(dec10)); got != WindowCount {
				t.Errorf("Windows() = %d, want %d", got, WindowCount)
			}
		})
	}
}

func TestOpenLockedWindow(t *testing.T) {
	s := newMemStore()
	c := newTestController(t, s, testEntries())

	for day := 11; day <= WindowCount; day++ {
		if got := c.Status(day, dec10); got != Locked {
			t.Fatalf("Status(%d) = %v, want locked", day, got)
		}

		_, err := c.Open(context.Background(), day, dec10)
		var gateErr *GateError
		if !errors.As(err, &gateErr) || gateErr.Day != day {
			t.Fatalf("Open(%d) error = %v, want GateError", day, err)
		}

		msg, visible := c.Notices().Current()
		if !visible || !strings.Contains(msg, "Day "+strconv.Itoa(day)+" ") {
			t.Errorf("notice = %q (visible %v), want mention of day %d", msg, visible, day)
		}
	}

	if len(c.Opened()) != 0 {
		t.Errorf("opened windows changed: %v", c.Opened().Days())
	}
	if s.saves != 0 {
		t.Errorf("store written %d times, want 0", s.saves)
	}
}

func TestOpenUnlockedWindow(t *testing.T) {
	s := newMemStore()
	c := newTestController(t, s, testEntries())

	if got := c.Status(3, dec10); got != Unlocked {
		t.Fatalf("Status(3) = %v, want unlocked", got)
	}

	overlay, err := c.Open(context.Background(), 3, dec10)
	if err != nil {
		t.Fatalf("Open(3) failed: %v", err)
	}
	if overlay.Day != 3 || overlay.Message != "content" {
		t.Errorf("overlay = %+v", overlay)
	}
	if got := c.Status(3, dec10); got != Opened {
		t.Errorf("Status(3) after open = %v, want opened", got)
	}
	if got := s.stored(testProfile); got != "[3]" {
		t.Errorf("stored = %s, want [3]", got)
	}

	// Opening again only redisplays
	if _, err := c.Open(context.Background(), 3, dec10); err != nil {
		t.Fatalf("second Open(3) failed: %v", err)
	}
	if got := s.stored(testProfile); got != "[3]" {
		t.Errorf("stored after reopen = %s, want [3]", got)
	}
	if !c.Opened().Equal(NewOpenedSet(3)) {
		t.Errorf("opened = %v, want [3]", c.Opened().Days())
	}
}

func TestOpenWithoutContent(t *testing.T) {
	s := newMemStore()
	c := newTestController(t, s, testEntries())

	before := c.Status(5, dec10)
	_, err := c.Open(context.Background(), 5, dec10)

	var missing *NoContentError
	if !errors.As(err, &missing) {
		t.Fatalf("Open(5) error = %v, want NoContentError", err)
	}
	if msg, _ := c.Notices().Current(); msg != "No content found for day 5." {
		t.Errorf("notice = %q", msg)
	}
	if c.Opened().Has(5) {
		t.Error("day 5 must not be marked opened")
	}
	if after := c.Status(5, dec10); after != before {
		t.Errorf("Status(5) = %v, want unchanged %v", after, before)
	}
}

func TestOpenedWindowStaysOpenBeforeDate(t *testing.T) {
	s := newMemStore()
	s.data[testProfile] = []byte("[24]")
	c := newTestController(t, s, testEntries())

	if got := c.Status(24, dec10); got != Opened {
		t.Fatalf("Status(24) = %v, want opened", got)
	}
	overlay, err := c.Open(context.Background(), 24, dec10)
	if err != nil {
		t.Fatalf("reopen of day 24 failed: %v", err)
	}
	if overlay.Day != 24 {
		t.Errorf("overlay.Day = %d, want 24", overlay.Day)
	}
}

func TestOpenPersistsFullSet(t *testing.T) {
	s := newMemStore()
	s.data[testProfile] = []byte("[7,1]")
	c := newTestController(t, s, testEntries())

	if _, err := c.Open(context.Background(), 10, dec10); err != nil {
		t.Fatalf("Open(10) failed: %v", err)
	}
	if got := s.stored(testProfile); got != "[1,7,10]" {
		t.Errorf("stored = %s, want [1,7,10]", got)
	}
}

func TestOpenSaveFailureRollsBack(t *testing.T) {
	s := newMemStore()
	s.failSet = errors.New("read-only")
	c := newTestController(t, s, testEntries())

	if _, err := c.Open(context.Background(), 1, dec10); err == nil {
		t.Fatal("Open() should report the save failure")
	} else if IsNotice(err) {
		t.Errorf("save failure should not be a notice: %v", err)
	}
	if c.Opened().Has(1) {
		t.Error("day 1 must not stay opened when it could not be saved")
	}
}

func TestOpenInvalidDay(t *testing.T) {
	c := newTestController(t, newMemStore(), testEntries())
	for _, day := range []int{0, 25, -3} {
		if _, err := c.Open(context.Background(), day, dec10); !errors.Is(err, ErrInvalidDay) {
			t.Errorf("Open(%d) error = %v, want ErrInvalidDay", day, err)
		}
	}
}

func TestOpenCallback(t *testing.T) {
	var calls []bool
	c, err := NewController(context.Background(), Options{
		Profile: testProfile,
		Gate:    testGate,
		Entries: testEntries(),
		Store:   newMemStore(),
		OnOpen:  func(profile string, day int, first bool) { calls = append(calls, first) },
	})
	if err != nil {
		t.Fatalf("NewController() failed: %v", err)
	}

	c.Open(context.Background(), 1, dec10)
	c.Open(context.Background(), 1, dec10)
	c.Open(context.Background(), 5, dec10)

	if len(calls) != 2 || !calls[0] || calls[1] {
		t.Errorf("callbacks = %v, want [true false]", calls)
	}
}

func TestOverlayOnlyForOpened(t *testing.T) {
	c := newTestController(t, newMemStore(), testEntries())

	if _, ok := c.Overlay(1); ok {
		t.Error("Overlay(1) before opening should be unavailable")
	}
	if _, err := c.Open(context.Background(), 1, dec10); err != nil {
		t.Fatalf("Open(1) failed: %v", err)
	}
	if o, ok := c.Overlay(1); !ok || o.Day != 1 {
		t.Errorf("Overlay(1) = %+v, %v", o, ok)
	}
}

func TestReset(t *testing.T) {
	s := newMemStore()
	c := newTestController(t, s, testEntries())

	if _, err := c.Open(context.Background(), 1, dec10); err != nil {
		t.Fatalf("Open(1) failed: %v", err)
	}
	if err := c.Reset(context.Background()); err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}
	if len(c.Opened()) != 0 {
		t.Errorf("opened after reset = %v", c.Opened().Days())
	}
	if _, err := s.Load(context.Background(), testProfile); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("stored entry should be gone, got %v", err)
	}
	// Resetting an empty profile is fine
	if err := c.Reset(context.Background()); err != nil {
		t.Errorf("second Reset() failed: %v", err)
	}
}

func TestIsNotice(t *testing.T) {
	if !IsNotice(&GateError{Day: 1}) || !IsNotice(&NoContentError{Day: 1}) {
		t.Error("gate and no-content errors are notices")
	}
	if IsNotice(errors.New("boom")) || IsNotice(ErrInvalidDay) {
		t.Error("other errors are not notices")
	}
}


func TestNewControllerLoadsOpenedBeforeContent(t *testing.T) {
	s := newMemStore()
	s.data[testProfile] = []byte("[3]")

	var order []string
	loading := &orderStore{memStore: s, order: &order}
	c, err := NewController(context.Background(), Options{
		Profile: testProfile,
		Gate:    testGate,
		Store:   loading,
		LoadEntries: func(ctx context.Context) []DayEntry {
			order = append(order, "content")
			return testEntries()
		},
	})
	if err != nil {
		t.Fatalf("NewController() failed: %v", err)
	}

	if strings.Join(order, ",") != "store,content" {
		t.Errorf("init order = %v, want store then content", order)
	}
	if got := c.Entries(); len(got) != 5 || got[0].Day != 1 || got[4].Day != 24 {
		t.Errorf("entries not bound and sorted: %+v", got)
	}
	if !c.Opened().Has(3) {
		t.Error("opened set not loaded")
	}
}

// orderStore records when the opened set is read
type orderStore struct {
	*memStore
	order *[]string
}

func (o *orderStore) Load(ctx context.Context, profile string) ([]byte, error) {
	*o.order = append(*o.order, "store")
	return o.memStore.Load(ctx, profile)
}

package calendar

import (
	"sync"
	"time"
)

// DefaultNoticeDismiss is how long a notice stays visible
const DefaultNoticeDismiss = 3000 * time.Millisecond

// NoticeSlot is a single auto-dismissing notice. Showing a new notice replaces
// the current one and restarts the timer; notices are never queued.
type NoticeSlot struct {
	mu      sync.Mutex
	after   time.Duration
	message string
	visible bool
	gen     uint64
	timer   *time.Timer
}

// NewNoticeSlot creates a slot dismissing after d (DefaultNoticeDismiss if d <= 0)
func NewNoticeSlot(d time.Duration) *NoticeSlot {
	if d <= 0 {
		d = DefaultNoticeDismiss
	}
	return &NoticeSlot{after: d}
}

// Show displays message, replacing whatever is visible
func (s *NoticeSlot) Show(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.message = message
	s.visible = true
	s.timer = time.AfterFunc(s.after, func() { s.expire(gen) })
}

// Current returns the visible notice, if any
func (s *NoticeSlot) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message, s.visible
}

// Dismiss hides the notice immediately
func (s *NoticeSlot) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.message = ""
	s.visible = false
}

// Interval is the auto-dismiss delay
func (s *NoticeSlot) Interval() time.Duration {
	return s.after
}

// expire ignores timers that fired after a newer Show
func (s *NoticeSlot) expire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.message = ""
	s.visible = false
	s.timer = nil
}

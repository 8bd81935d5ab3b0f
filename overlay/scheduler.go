package overlay

import (
	"time"

	"github.com/hazyhaar/reelkeeper/domwatch/mutation"
)

// DefaultFrame is one animation frame at 60Hz.
const DefaultFrame = 16 * time.Millisecond

// Scheduler coalesces relevant mutation batches into one rescan per frame.
// It is owned by a single goroutine.
type Scheduler struct {
	frame time.Duration
	timer *time.Timer
	c     <-chan time.Time
}

func NewScheduler(frame time.Duration) *Scheduler {
	if frame <= 0 {
		frame = DefaultFrame
	}
	return &Scheduler{frame: frame}
}

// Observe arms the frame timer if b is relevant and the timer is not
// already armed. It reports whether this call armed it.
func (s *Scheduler) Observe(b *mutation.Batch) bool {
	if b == nil || !b.Relevant() {
		return false
	}
	return s.Arm()
}

// Arm starts the frame timer unless it is already running.
func (s *Scheduler) Arm() bool {
	if s.c != nil {
		return false
	}
	s.timer = time.NewTimer(s.frame)
	s.c = s.timer.C
	return true
}

// C fires once per armed frame. It is nil while disarmed.
func (s *Scheduler) C() <-chan time.Time { return s.c }

// Fired must be called after receiving from C.
func (s *Scheduler) Fired() {
	s.timer = nil
	s.c = nil
}

// Armed reports whether a rescan is pending.
func (s *Scheduler) Armed() bool { return s.c != nil }

// Stop cancels a pending rescan.
func (s *Scheduler) Stop() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = nil
	s.c = nil
}

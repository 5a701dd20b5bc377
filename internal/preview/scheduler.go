package preview

import (
	"sync"
	"time"
)

// Scheduler drives a sampling loop: Start begins invoking onFrame and keeps
// going until Stop is called or onFrame returns false. Stop blocks until
// the loop has fully wound down, so once it returns onFrame will not be
// invoked again. A stopped scheduler can be started again.
type Scheduler interface {
	Start(onFrame func() bool)
	Stop()
}

// DefaultPaintRate is the fallback sampling frequency, in samples per
// second, for sources that expose no frame ticks.
const DefaultPaintRate = 60

// paintScheduler samples on a fixed wall-clock ticker.
type paintScheduler struct {
	interval time.Duration

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewPaintScheduler returns a ticker-driven scheduler firing rate times per
// second (DefaultPaintRate when rate is not positive).
func NewPaintScheduler(rate int) Scheduler {
	if rate <= 0 {
		rate = DefaultPaintRate
	}
	return &paintScheduler{interval: time.Second / time.Duration(rate)}
}

func (s *paintScheduler) Start(onFrame func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCh != nil {
		return // already running
	}
	stopCh := make(chan struct{})
	doneCh := make(chan struct{})
	s.stopCh, s.doneCh = stopCh, doneCh

	go func() {
		defer close(doneCh)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				// Stop may have raced the tick.
				select {
				case <-stopCh:
					return
				default:
				}
				if !onFrame() {
					return
				}
			}
		}
	}()
}

func (s *paintScheduler) Stop() {
	s.mu.Lock()
	stopCh, doneCh := s.stopCh, s.doneCh
	s.stopCh, s.doneCh = nil, nil
	s.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-doneCh
}

// tickScheduler samples when the source signals a freshly decoded frame,
// pinning sampling to the source's true cadence instead of wall time.
type tickScheduler struct {
	ticks <-chan struct{}

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewTickScheduler returns a scheduler driven by the given frame-tick
// channel.
func NewTickScheduler(ticks <-chan struct{}) Scheduler {
	return &tickScheduler{ticks: ticks}
}

func (s *tickScheduler) Start(onFrame func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCh != nil {
		return
	}
	stopCh := make(chan struct{})
	doneCh := make(chan struct{})
	s.stopCh, s.doneCh = stopCh, doneCh

	go func() {
		defer close(doneCh)
		for {
			select {
			case <-stopCh:
				return
			case _, ok := <-s.ticks:
				if !ok {
					return
				}
				select {
				case <-stopCh:
					return
				default:
				}
				if !onFrame() {
					return
				}
			}
		}
	}()
}

func (s *tickScheduler) Stop() {
	s.mu.Lock()
	stopCh, doneCh := s.stopCh, s.doneCh
	s.stopCh, s.doneCh = nil, nil
	s.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-doneCh
}

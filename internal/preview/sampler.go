// Package preview samples live playback into a reusable RGBA buffer that a
// paint surface can read between samples. Sampling trouble never
// propagates: a preview that cannot keep up degrades silently.
package preview

import (
	"image"
	"image/draw"
	"sync"
	"sync/atomic"

	"github.com/nfnt/resize"
	"github.com/rs/zerolog"
)

// PlaybackState is the sampler-visible state of a source.
type PlaybackState int

const (
	StatePaused PlaybackState = iota
	StatePlaying
	StateEnded
)

// Event is a source lifecycle notification.
type Event int

const (
	EventPlay Event = iota
	EventPause
	EventEnded
	EventMetadata
)

// Source is live playback as seen by the sampler.
type Source interface {
	// NativeSize returns the source's pixel geometry once known.
	NativeSize() (width, height int, ok bool)
	State() PlaybackState
	// CurrentFrame returns the newest decoded frame, or nil before the
	// first one arrives. The returned image stays valid until the next
	// CurrentFrame call.
	CurrentFrame() image.Image
	// Subscribe registers a lifecycle callback and returns its cancel.
	Subscribe(fn func(Event)) (cancel func())
}

// FrameNotifier is implemented by sources that can signal each freshly
// decoded frame; the sampler then follows the source's cadence instead of
// a wall-clock paint rate.
type FrameNotifier interface {
	FrameTicks() <-chan struct{}
}

// Default buffer geometry for sources whose size is not yet known.
const (
	DefaultWidth  = 640
	DefaultHeight = 360
)

// Options tunes a sampling session.
type Options struct {
	// PaintRate is the fallback sampling frequency for sources without
	// frame ticks. Zero means DefaultPaintRate.
	PaintRate int
	// OnPresent runs after each frame lands in the buffer, outside any
	// session lock.
	OnPresent func()
}

// Session owns one sampling loop over one source. The target buffer is
// allocated at attach and reused for every sample; a detached session
// never writes to it again.
type Session struct {
	logger  zerolog.Logger
	source  Source
	sched   Scheduler
	cancel  func()
	present func()

	mu       sync.Mutex
	buf      *image.RGBA
	detached bool
	active   bool

	copies atomic.Uint64
}

// Attach binds a sampling session to a source. The buffer adopts the
// source's native size when known and the 640x360 default otherwise. A
// source that is already playing starts the loop immediately.
func Attach(logger zerolog.Logger, src Source, opts Options) *Session {
	log := logger.With().Str("component", "preview").Logger()

	w, h := DefaultWidth, DefaultHeight
	if nw, nh, ok := src.NativeSize(); ok && nw > 0 && nh > 0 {
		w, h = nw, nh
	}

	var sched Scheduler
	if fn, ok := src.(FrameNotifier); ok {
		if ticks := fn.FrameTicks(); ticks != nil {
			sched = NewTickScheduler(ticks)
			log.Debug().Msg("sampling on source frame ticks")
		}
	}
	if sched == nil {
		sched = NewPaintScheduler(opts.PaintRate)
		log.Debug().Int("rate", opts.PaintRate).Msg("sampling on paint ticker")
	}

	s := &Session{
		logger:  log,
		source:  src,
		sched:   sched,
		present: opts.OnPresent,
		buf:     image.NewRGBA(image.Rect(0, 0, w, h)),
	}

	s.cancel = src.Subscribe(s.onEvent)

	if src.State() == StatePlaying {
		s.startLoop()
	}
	return s
}

// Buffer returns the sampling target, or nil once detached. The buffer
// pointer changes if the source announces a new size.
func (s *Session) Buffer() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf
}

// Copies reports how many frames have landed in the buffer.
func (s *Session) Copies() uint64 {
	return s.copies.Load()
}

// Detach permanently ends the session: unsubscribe, stop sampling, release
// the buffer. Idempotent. Once Detach returns the buffer is never written
// again.
func (s *Session) Detach() {
	s.mu.Lock()
	if s.detached {
		s.mu.Unlock()
		return
	}
	s.detached = true
	s.active = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.sched.Stop()

	s.mu.Lock()
	s.buf = nil
	s.mu.Unlock()

	s.logger.Debug().Uint64("copies", s.copies.Load()).Msg("preview detached")
}

func (s *Session) onEvent(ev Event) {
	switch ev {
	case EventPlay:
		s.startLoop()
	case EventMetadata:
		s.resize()
	case EventPause, EventEnded:
		// The loop parks itself on its next sample.
	}
}

// startLoop brings the sampling loop up if it is not already running. The
// Stop call clears out a loop that previously parked itself.
func (s *Session) startLoop() {
	s.mu.Lock()
	if s.detached || s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.mu.Unlock()

	s.sched.Stop()
	s.sched.Start(s.sample)
}

// sample copies the source's newest frame into the buffer. Returning false
// parks the loop (pause, end of playback, detach).
func (s *Session) sample() bool {
	s.mu.Lock()
	if s.detached || s.source.State() != StatePlaying {
		s.active = false
		s.mu.Unlock()
		return false
	}

	frame := s.source.CurrentFrame()
	if frame == nil {
		// Nothing decoded yet; keep the loop alive.
		s.mu.Unlock()
		return true
	}

	s.blit(frame)
	s.mu.Unlock()

	s.copies.Add(1)
	if s.present != nil {
		s.present()
	}
	return true
}

// blit writes the frame into the buffer, scaling when geometries differ.
// Caller holds s.mu.
func (s *Session) blit(frame image.Image) {
	fb := frame.Bounds()
	bb := s.buf.Bounds()

	if fb.Dx() == bb.Dx() && fb.Dy() == bb.Dy() {
		draw.Draw(s.buf, bb, frame, fb.Min, draw.Src)
		return
	}

	scaled := resize.Resize(uint(bb.Dx()), uint(bb.Dy()), frame, resize.Bilinear)
	draw.Draw(s.buf, bb, scaled, scaled.Bounds().Min, draw.Src)
}

// resize reallocates the buffer after the source announces its geometry.
func (s *Session) resize() {
	nw, nh, ok := s.source.NativeSize()
	if !ok || nw <= 0 || nh <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detached || (s.buf.Bounds().Dx() == nw && s.buf.Bounds().Dy() == nh) {
		return
	}
	s.buf = image.NewRGBA(image.Rect(0, 0, nw, nh))
	s.logger.Debug().Int("width", nw).Int("height", nh).Msg("preview buffer resized")
}

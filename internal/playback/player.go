// Package playback decodes a video file in real time and exposes it as a
// preview source: newest-frame access, lifecycle events, and per-frame
// ticks.
package playback

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jmorel/vibecut/internal/ffmpeg"
	"github.com/jmorel/vibecut/internal/preview"
)

// Player paces a decode stream at the source's native rate. It starts
// paused; Play begins consuming frames. A player that reaches end of
// stream stays ended until reopened.
type Player struct {
	logger zerolog.Logger
	cancel context.CancelFunc

	width  int
	height int
	fps    float64

	mu        sync.Mutex
	cond      *sync.Cond
	state     preview.PlaybackState
	live      *image.RGBA
	out       *image.RGBA
	haveFrame bool
	dirty     bool
	subs      map[int]func(preview.Event)
	nextID    int
	closed    bool

	ticks chan struct{}
	done  chan struct{}
}

var (
	_ preview.Source        = (*Player)(nil)
	_ preview.FrameNotifier = (*Player)(nil)
)

// Open probes the file and starts a paused playback session at the file's
// native geometry and frame rate.
func Open(ctx context.Context, logger zerolog.Logger, exec *ffmpeg.Executor, path string) (*Player, error) {
	info, err := exec.ProbeVideo(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("probe playback source: %w", err)
	}

	fps := info.FPS
	if fps <= 0 {
		fps = 30
	}

	pctx, cancel := context.WithCancel(ctx)
	dec, err := exec.OpenDecoder(pctx, path, ffmpeg.StreamOptions{
		Width:  info.Width,
		Height: info.Height,
		FPS:    int(fps + 0.5),
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open playback decoder: %w", err)
	}

	bounds := image.Rect(0, 0, info.Width, info.Height)
	p := &Player{
		logger: logger.With().Str("component", "playback").Logger(),
		cancel: cancel,
		width:  info.Width,
		height: info.Height,
		fps:    fps,
		state:  preview.StatePaused,
		live:   image.NewRGBA(bounds),
		out:    image.NewRGBA(bounds),
		subs:   make(map[int]func(preview.Event)),
		ticks:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)

	p.logger.Debug().
		Str("path", path).
		Int("width", info.Width).
		Int("height", info.Height).
		Float64("fps", fps).
		Msg("playback opened")

	go p.run(dec)
	return p, nil
}

// run is the single decode loop: park while paused, otherwise pull one
// frame per tick into the live buffer and signal it.
func (p *Player) run(dec *ffmpeg.StreamDecoder) {
	defer close(p.done)
	defer dec.Close()

	interval := time.Duration(float64(time.Second) / p.fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	scratch := image.NewRGBA(image.Rect(0, 0, p.width, p.height))

	for {
		p.mu.Lock()
		for p.state == preview.StatePaused && !p.closed {
			p.cond.Wait()
		}
		if p.closed || p.state == preview.StateEnded {
			p.mu.Unlock()
			return
		}
		p.mu.Unlock()

		<-ticker.C

		if err := dec.Next(scratch); err != nil {
			p.mu.Lock()
			wasClosed := p.closed
			if !wasClosed {
				p.state = preview.StateEnded
			}
			p.mu.Unlock()

			if !wasClosed {
				if !errors.Is(err, io.EOF) {
					p.logger.Debug().Err(err).Msg("playback decode stopped early")
				}
				p.emit(preview.EventEnded)
			}
			return
		}

		p.mu.Lock()
		copy(p.live.Pix, scratch.Pix)
		p.haveFrame = true
		p.dirty = true
		p.mu.Unlock()

		// Coalesce under load: a slow sampler sees the newest frame.
		select {
		case p.ticks <- struct{}{}:
		default:
		}
	}
}

// Play starts or resumes decoding. A no-op once playback has ended.
func (p *Player) Play() {
	p.mu.Lock()
	if p.closed || p.state != preview.StatePaused {
		p.mu.Unlock()
		return
	}
	p.state = preview.StatePlaying
	p.cond.Broadcast()
	p.mu.Unlock()

	p.emit(preview.EventPlay)
}

// Pause suspends decoding; the newest frame stays available.
func (p *Player) Pause() {
	p.mu.Lock()
	if p.closed || p.state != preview.StatePlaying {
		p.mu.Unlock()
		return
	}
	p.state = preview.StatePaused
	p.mu.Unlock()

	p.emit(preview.EventPause)
}

func (p *Player) NativeSize() (int, int, bool) {
	return p.width, p.height, true
}

func (p *Player) State() preview.PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// CurrentFrame returns the newest decoded frame, or nil before the first
// one. The returned image is rewritten only by a later CurrentFrame call,
// never concurrently.
func (p *Player) CurrentFrame() image.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.haveFrame {
		return nil
	}
	if p.dirty {
		copy(p.out.Pix, p.live.Pix)
		p.dirty = false
	}
	return p.out
}

func (p *Player) Subscribe(fn func(preview.Event)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// FrameTicks signals each freshly decoded frame.
func (p *Player) FrameTicks() <-chan struct{} {
	return p.ticks
}

// emit invokes subscribers outside the lock; a callback may call back into
// the player.
func (p *Player) emit(ev preview.Event) {
	p.mu.Lock()
	fns := make([]func(preview.Event), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Close tears playback down and reaps the decoder. Idempotent.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()

	p.cancel()
	<-p.done

	p.logger.Debug().Msg("playback closed")
	return nil
}

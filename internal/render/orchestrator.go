package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/jmorel/vibecut/internal/composition"
	"github.com/jmorel/vibecut/internal/overlay"
	"github.com/jmorel/vibecut/pkg/util"
)

// Stage is the orchestrator's lifecycle position for one job. Transitions
// only move forward; a failed job is never retried.
type Stage int

const (
	StageIdle Stage = iota
	StageBundling
	StageCompositionSelected
	StageRendering
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageBundling:
		return "bundling"
	case StageCompositionSelected:
		return "composition_selected"
	case StageRendering:
		return "rendering"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Result summarizes a finished render.
type Result struct {
	OutputPath string
	Frames     int
	Width      int
	Height     int
	Elapsed    time.Duration
}

// Orchestrator runs jobs through the staged pipeline. A failed job leaves
// no partial output behind.
type Orchestrator struct {
	logger   zerolog.Logger
	registry *composition.Registry
	bundler  *Bundler
	engine   Engine
	onStage  func(Stage)
}

type Option func(*Orchestrator)

// WithStageHook observes stage transitions as they happen.
func WithStageHook(fn func(Stage)) Option {
	return func(o *Orchestrator) { o.onStage = fn }
}

func NewOrchestrator(logger zerolog.Logger, registry *composition.Registry, bundler *Bundler, engine Engine, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:   logger.With().Str("component", "render").Logger(),
		registry: registry,
		bundler:  bundler,
		engine:   engine,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) stage(s Stage) {
	if o.onStage != nil {
		o.onStage(s)
	}
}

// Render runs one job to completion. Errors are stage-typed (BundleError,
// CompositionSelectionError, RenderError) and any partial output file is
// removed before one is returned.
func (o *Orchestrator) Render(ctx context.Context, job Job) (*Result, error) {
	log := o.logger.With().Str("job_id", job.ID).Logger()
	start := time.Now()

	o.stage(StageIdle)

	o.stage(StageBundling)
	log.Info().Str("input", job.Input.Locator()).Msg("bundling compositions")
	bundle, err := o.bundler.Bundle(o.registry)
	if err != nil {
		o.stage(StageFailed)
		return nil, &BundleError{Err: err}
	}

	comp, err := bundle.Select(job.CompositionID)
	if err != nil {
		o.stage(StageFailed)
		return nil, &CompositionSelectionError{Err: err}
	}
	o.stage(StageCompositionSelected)
	log.Info().Str("composition", comp.ID).Msg("composition selected")

	// The single duration resolution for this job: everything downstream
	// reads the resolved value, nothing re-derives it.
	resolved := composition.Finalize(comp, job.Input.Locator(), job.RequestedDurationSeconds)

	o.stage(StageRendering)
	log.Info().
		Int("frames", resolved.DurationInFrames).
		Int("width", resolved.Composition.Width).
		Int("height", resolved.Composition.Height).
		Int("fps", resolved.Composition.FPS).
		Str("output", job.OutputPath).
		Msg("rendering")

	frames, err := o.renderFrames(ctx, job.OutputPath, resolved)
	if err != nil {
		o.stage(StageFailed)
		util.CleanupFiles(job.OutputPath)
		log.Error().Err(err).Int("frames_written", frames).Msg("render failed, partial output removed")
		return nil, &RenderError{Err: err}
	}

	o.stage(StageDone)
	elapsed := time.Since(start)
	log.Info().Int("frames", frames).Dur("elapsed", elapsed).Msg("render complete")

	return &Result{
		OutputPath: job.OutputPath,
		Frames:     frames,
		Width:      resolved.Composition.Width,
		Height:     resolved.Composition.Height,
		Elapsed:    elapsed,
	}, nil
}

// renderFrames pumps exactly resolved.DurationInFrames frames from source
// to sink with the overlay painted on each. A source that ends early holds
// its last frame; a source that yields nothing at all is an error.
func (o *Orchestrator) renderFrames(ctx context.Context, outputPath string, resolved composition.Resolved) (int, error) {
	comp := resolved.Composition

	src, err := o.engine.OpenSource(ctx, resolved.Input, comp.Width, comp.Height, comp.FPS)
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	sink, err := o.engine.OpenSink(ctx, outputPath, comp.Width, comp.Height, comp.FPS, resolved.DurationInFrames)
	if err != nil {
		return 0, fmt.Errorf("open sink: %w", err)
	}

	painter := overlay.NewPainter(comp)
	bounds := image.Rect(0, 0, comp.Width, comp.Height)
	decoded := image.NewRGBA(bounds)
	out := image.NewRGBA(bounds)

	written := 0
	exhausted := false
	for i := 0; i < resolved.DurationInFrames; i++ {
		if err := ctx.Err(); err != nil {
			_ = sink.Close()
			return written, err
		}

		if !exhausted {
			switch err := src.Next(decoded); {
			case errors.Is(err, io.EOF):
				if i == 0 {
					_ = sink.Close()
					return 0, fmt.Errorf("source produced no frames")
				}
				exhausted = true
			case err != nil:
				_ = sink.Close()
				return written, fmt.Errorf("decode frame %d: %w", i, err)
			}
		}

		copy(out.Pix, decoded.Pix)
		painter.Paint(out, overlay.State(i, comp.FPS))

		if err := sink.Write(out); err != nil {
			_ = sink.Close()
			return written, fmt.Errorf("encode frame %d: %w", i, err)
		}
		written++
	}

	if err := sink.Close(); err != nil {
		return written, fmt.Errorf("finalize output: %w", err)
	}
	return written, nil
}

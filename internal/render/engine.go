package render

import (
	"context"
	"image"

	"github.com/rs/zerolog"

	"github.com/jmorel/vibecut/internal/ffmpeg"
)

// FrameReader yields decoded frames in presentation order. Next returns
// io.EOF once the source is cleanly exhausted.
type FrameReader interface {
	Next(dst *image.RGBA) error
	Close() error
}

// FrameWriter consumes composited frames. Close finalizes the output and
// reports any encode failure.
type FrameWriter interface {
	Write(frame *image.RGBA) error
	Close() error
}

// Engine opens the frame streams a render runs on. The production engine
// shells out to ffmpeg; tests substitute in-memory fakes.
type Engine interface {
	OpenSource(ctx context.Context, locator string, width, height, fps int) (FrameReader, error)
	OpenSink(ctx context.Context, path string, width, height, fps, frameCount int) (FrameWriter, error)
}

type ffmpegEngine struct {
	logger   zerolog.Logger
	exec     *ffmpeg.Executor
	settings ffmpeg.EncodeSettings
}

// NewEngine wraps an ffmpeg executor as a render Engine.
func NewEngine(logger zerolog.Logger, exec *ffmpeg.Executor, settings ffmpeg.EncodeSettings) Engine {
	return &ffmpegEngine{
		logger:   logger.With().Str("component", "engine").Logger(),
		exec:     exec,
		settings: settings,
	}
}

func (e *ffmpegEngine) OpenSource(ctx context.Context, locator string, width, height, fps int) (FrameReader, error) {
	dec, err := e.exec.OpenDecoder(ctx, locator, ffmpeg.StreamOptions{
		Width:  width,
		Height: height,
		FPS:    fps,
	})
	if err != nil {
		return nil, err
	}
	return dec, nil
}

func (e *ffmpegEngine) OpenSink(ctx context.Context, path string, width, height, fps, frameCount int) (FrameWriter, error) {
	enc, err := e.exec.OpenEncoder(ctx, path, ffmpeg.StreamOptions{
		Width:      width,
		Height:     height,
		FPS:        fps,
		FrameCount: frameCount,
		Settings:   e.settings,
	}, e.logProgress)
	if err != nil {
		return nil, err
	}
	return enc, nil
}

func (e *ffmpegEngine) logProgress(p *ffmpeg.Progress) {
	e.logger.Debug().
		Int("frame", p.Frame).
		Float64("fps", p.FPS).
		Str("speed", p.Speed).
		Msg("encode progress")
}

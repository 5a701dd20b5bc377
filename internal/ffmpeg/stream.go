package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// StreamDecoder reads sequential raw RGBA frames decoded from a source
// locator at a fixed geometry and frame rate. The source is letterboxed to
// the requested size and resampled to the requested rate.
type StreamDecoder struct {
	cmd      *exec.Cmd
	stdout   io.ReadCloser
	stderr   bytes.Buffer
	frameLen int
	waitOnce sync.Once
	waitErr  error
}

// OpenDecoder starts a decode stream for the locator. ffmpeg resolves the
// locator itself, including file: references.
func (e *Executor) OpenDecoder(ctx context.Context, locator string, opts StreamOptions) (*StreamDecoder, error) {
	if locator == "" {
		return nil, fmt.Errorf("source locator is required")
	}
	if opts.Width <= 0 || opts.Height <= 0 || opts.FPS <= 0 {
		return nil, fmt.Errorf("decode geometry must be positive, got %dx%d @ %d fps", opts.Width, opts.Height, opts.FPS)
	}

	vf := NewFilterBuilder().
		Custom(fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", opts.Width, opts.Height)).
		Custom(fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2", opts.Width, opts.Height)).
		FPS(float64(opts.FPS)).
		Build()

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", locator,
		"-vf", vf,
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-an",
		"-",
	}

	e.logger.Debug().
		Str("locator", locator).
		Strs("args", args).
		Msg("starting decode stream")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	d := &StreamDecoder{
		cmd:      cmd,
		frameLen: opts.Width * opts.Height * 4,
	}
	cmd.Stderr = &d.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	d.stdout = stdout

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	return d, nil
}

// Next fills dst with the next decoded frame. It returns io.EOF once the
// source is cleanly exhausted; a source that failed to decode surfaces the
// decoder's error instead.
func (d *StreamDecoder) Next(dst *image.RGBA) error {
	if len(dst.Pix) != d.frameLen {
		return fmt.Errorf("frame buffer is %d bytes, want %d", len(dst.Pix), d.frameLen)
	}

	if _, err := io.ReadFull(d.stdout, dst.Pix); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			if werr := d.wait(); werr != nil {
				return werr
			}
			return io.EOF
		}
		return fmt.Errorf("read decoded frame: %w", err)
	}

	return nil
}

func (d *StreamDecoder) wait() error {
	d.waitOnce.Do(func() {
		if err := d.cmd.Wait(); err != nil {
			tail := strings.TrimSpace(d.stderr.String())
			if tail != "" {
				d.waitErr = fmt.Errorf("ffmpeg decode failed: %w: %s", err, tail)
			} else {
				d.waitErr = fmt.Errorf("ffmpeg decode failed: %w", err)
			}
		}
	})
	return d.waitErr
}

// Close terminates the stream. A stream abandoned mid-decode is killed
// rather than drained; after a clean EOF this only reaps the process.
func (d *StreamDecoder) Close() error {
	_ = d.stdout.Close()
	if d.cmd.Process != nil {
		_ = d.cmd.Process.Kill()
	}
	_ = d.wait()
	return nil
}

// StreamEncoder consumes sequential raw RGBA frames and encodes them into a
// media file, finalized on Close.
type StreamEncoder struct {
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	group    *errgroup.Group
	tail     lineTail
	frameLen int
	waitOnce sync.Once
	waitErr  error
}

// OpenEncoder starts an encode stream targeting output. Frames written to
// the stream must match the geometry in opts; FrameCount, when set, caps
// the encoded stream length on the ffmpeg side as well.
func (e *Executor) OpenEncoder(ctx context.Context, output string, opts StreamOptions, progress ProgressFunc) (*StreamEncoder, error) {
	if output == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if opts.Width <= 0 || opts.Height <= 0 || opts.FPS <= 0 {
		return nil, fmt.Errorf("encode geometry must be positive, got %dx%d @ %d fps", opts.Width, opts.Height, opts.FPS)
	}

	s := opts.Settings.withDefaults()

	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-progress", "pipe:2",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-framerate", fmt.Sprintf("%d", opts.FPS),
		"-i", "-",
		"-c:v", DefaultVideoCodec,
		"-pix_fmt", DefaultPixelFormat,
		"-crf", fmt.Sprintf("%d", s.CRF),
		"-preset", s.Preset,
	}
	if e.threads > 0 {
		args = append(args, "-threads", fmt.Sprintf("%d", e.threads))
	}
	if opts.FrameCount > 0 {
		args = append(args, "-frames:v", fmt.Sprintf("%d", opts.FrameCount))
	}
	args = append(args, output)

	e.logger.Debug().
		Str("output", output).
		Strs("args", args).
		Msg("starting encode stream")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	en := &StreamEncoder{
		cmd:      cmd,
		stdin:    stdin,
		frameLen: opts.Width * opts.Height * 4,
	}

	// The progress reader must drain stderr before the process is reaped.
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		e.streamOutput(stderr, progress, en.tail.add)
		return nil
	})
	en.group = g

	return en, nil
}

// Write pushes one frame into the encoder
func (en *StreamEncoder) Write(frame *image.RGBA) error {
	if len(frame.Pix) != en.frameLen {
		return fmt.Errorf("frame is %d bytes, want %d", len(frame.Pix), en.frameLen)
	}
	if _, err := en.stdin.Write(frame.Pix); err != nil {
		return fmt.Errorf("write frame to encoder: %w", err)
	}
	return nil
}

// Close flushes the stream and finalizes the output file. The error covers
// the whole encode: an encoder that died mid-stream reports here.
func (en *StreamEncoder) Close() error {
	en.waitOnce.Do(func() {
		_ = en.stdin.Close()
		_ = en.group.Wait()
		if err := en.cmd.Wait(); err != nil {
			if tail := en.tail.String(); tail != "" {
				en.waitErr = fmt.Errorf("ffmpeg encode failed: %w: %s", err, tail)
			} else {
				en.waitErr = fmt.Errorf("ffmpeg encode failed: %w", err)
			}
		}
	})
	return en.waitErr
}

// lineTail keeps the last diagnostic lines of an encode's stderr, skipping
// the key=value progress stream.
type lineTail struct {
	mu    sync.Mutex
	lines []string
}

const tailLines = 12

var progressKeys = []string{
	"frame=", "fps=", "stream_", "bitrate=", "total_size=",
	"out_time", "dup_frames=", "drop_frames=", "speed=", "progress=",
}

func (t *lineTail) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	for _, key := range progressKeys {
		if strings.HasPrefix(line, key) {
			return
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > tailLines {
		t.lines = t.lines[len(t.lines)-tailLines:]
	}
}

func (t *lineTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.lines, "; ")
}

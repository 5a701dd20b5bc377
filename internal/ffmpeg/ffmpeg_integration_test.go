package ffmpeg_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmorel/vibecut/internal/ffmpeg"
	"github.com/rs/zerolog"
)

// local helper (cannot use unexported ones from ffmpeg package)
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH - install with: brew install ffmpeg")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH - install with: brew install ffmpeg")
	}
}

func generateSource(t *testing.T, dir string, seconds, fps int) string {
	t.Helper()

	path := filepath.Join(dir, fmt.Sprintf("src_%ds_%dfps.mp4", seconds, fps))
	cmd := exec.Command("ffmpeg",
		"-f", "lavfi", "-i", fmt.Sprintf("testsrc=duration=%d:size=320x240:rate=%d", seconds, fps),
		"-pix_fmt", "yuv420p", "-y", path)
	if err := cmd.Run(); err != nil {
		t.Skipf("Could not generate test video: %v", err)
	}
	return path
}

func integrationLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}).With().Str("test", "integration_stream").Logger()
}

func TestIntegration_StreamRoundtrip(t *testing.T) {
	skipIfNoFFmpeg(t)

	dir := t.TempDir()
	sourcePath := generateSource(t, dir, 2, 30)
	outputPath := filepath.Join(dir, "roundtrip.mp4")

	e, err := ffmpeg.New(integrationLogger(), 2)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}

	ctx := context.Background()
	opts := ffmpeg.StreamOptions{Width: 320, Height: 240, FPS: 30}

	dec, err := e.OpenDecoder(ctx, sourcePath, opts)
	if err != nil {
		t.Fatalf("OpenDecoder failed: %v", err)
	}
	defer dec.Close()

	enc, err := e.OpenEncoder(ctx, outputPath, opts, nil)
	if err != nil {
		t.Fatalf("OpenEncoder failed: %v", err)
	}

	frame := image.NewRGBA(image.Rect(0, 0, 320, 240))
	frames := 0
	start := time.Now()
	for {
		if err := dec.Next(frame); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			t.Fatalf("Next failed at frame %d: %v", frames, err)
		}
		if err := enc.Write(frame); err != nil {
			t.Fatalf("Write failed at frame %d: %v", frames, err)
		}
		frames++
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("encoder Close failed: %v", err)
	}
	elapsed := time.Since(start)

	// 2s at 30 fps; the fps filter may shave or pad a frame at the edges.
	if frames < 55 || frames > 65 {
		t.Errorf("expected ~60 frames, got %d", frames)
	}
	t.Logf("Round-tripped %d frames in %v", frames, elapsed)

	info, err := e.ProbeVideo(ctx, outputPath)
	if err != nil {
		t.Fatalf("failed to probe round-trip output: %v", err)
	}
	if info.Width != 320 || info.Height != 240 {
		t.Errorf("output geometry: got %dx%d, want 320x240", info.Width, info.Height)
	}
	if info.Duration < 1500*time.Millisecond || info.Duration > 2500*time.Millisecond {
		t.Errorf("output duration: got %v, want ~2s", info.Duration)
	}
	t.Logf("Output: %dx%d @ %.2f fps, %v", info.Width, info.Height, info.FPS, info.Duration)
}

func TestIntegration_DecoderResamples(t *testing.T) {
	skipIfNoFFmpeg(t)

	dir := t.TempDir()
	sourcePath := generateSource(t, dir, 2, 30)

	e, err := ffmpeg.New(integrationLogger(), 2)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}

	// Decode at a different geometry and rate than the source.
	ctx := context.Background()
	dec, err := e.OpenDecoder(ctx, sourcePath, ffmpeg.StreamOptions{Width: 160, Height: 120, FPS: 15})
	if err != nil {
		t.Fatalf("OpenDecoder failed: %v", err)
	}
	defer dec.Close()

	frame := image.NewRGBA(image.Rect(0, 0, 160, 120))
	frames := 0
	for {
		if err := dec.Next(frame); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			t.Fatalf("Next failed at frame %d: %v", frames, err)
		}
		frames++
	}

	if frames < 25 || frames > 35 {
		t.Errorf("expected ~30 frames at 15 fps, got %d", frames)
	}
	t.Logf("Decoded %d resampled frames", frames)
}

func TestIntegration_DecoderBadSource(t *testing.T) {
	skipIfNoFFmpeg(t)

	e, err := ffmpeg.New(integrationLogger(), 2)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}

	ctx := context.Background()
	dec, err := e.OpenDecoder(ctx, filepath.Join(t.TempDir(), "missing.mp4"), ffmpeg.StreamOptions{Width: 320, Height: 240, FPS: 30})
	if err != nil {
		// Acceptable: some environments fail at start.
		t.Logf("OpenDecoder failed up front: %v", err)
		return
	}
	defer dec.Close()

	frame := image.NewRGBA(image.Rect(0, 0, 320, 240))
	err = dec.Next(frame)
	if err == nil {
		t.Fatal("expected an error decoding a missing source")
	}
	if errors.Is(err, io.EOF) {
		t.Error("missing source reported clean EOF instead of a decode error")
	}
	t.Logf("Error (expected): %v", err)
}

func TestIntegration_StreamValidation(t *testing.T) {
	skipIfNoFFmpeg(t)

	e, err := ffmpeg.New(integrationLogger(), 2)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}

	ctx := context.Background()

	if _, err := e.OpenDecoder(ctx, "", ffmpeg.StreamOptions{Width: 320, Height: 240, FPS: 30}); err == nil {
		t.Error("expected error for empty locator")
	}
	if _, err := e.OpenDecoder(ctx, "in.mp4", ffmpeg.StreamOptions{Width: 0, Height: 240, FPS: 30}); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := e.OpenEncoder(ctx, "", ffmpeg.StreamOptions{Width: 320, Height: 240, FPS: 30}, nil); err == nil {
		t.Error("expected error for empty output path")
	}
	if _, err := e.OpenEncoder(ctx, "out.mp4", ffmpeg.StreamOptions{Width: 320, Height: 240, FPS: 0}, nil); err == nil {
		t.Error("expected error for zero fps")
	}

	// A frame that does not match the stream geometry is rejected before it
	// reaches the pipe.
	outputPath := filepath.Join(t.TempDir(), "mismatch.mp4")
	enc, err := e.OpenEncoder(ctx, outputPath, ffmpeg.StreamOptions{Width: 320, Height: 240, FPS: 30}, nil)
	if err != nil {
		t.Fatalf("OpenEncoder failed: %v", err)
	}
	wrong := image.NewRGBA(image.Rect(0, 0, 64, 64))
	if err := enc.Write(wrong); err == nil {
		t.Error("expected error writing a mismatched frame")
	}
	// Close errors here: the encoder never received a frame.
	if err := enc.Close(); err != nil {
		t.Logf("Close after zero frames: %v", err)
	}
}

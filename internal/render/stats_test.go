package render

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	WriteReport(&buf, &Result{
		OutputPath: "/videos/out.mp4",
		Frames:     60,
		Width:      64,
		Height:     36,
		Elapsed:    2 * time.Second,
	})

	out := buf.String()
	if !strings.Contains(out, "/videos/out.mp4") {
		t.Errorf("report missing output path:\n%s", out)
	}
	if !strings.Contains(out, "60 (64x36)") {
		t.Errorf("report missing frame summary:\n%s", out)
	}
	if !strings.Contains(out, "30.0 frames/s") {
		t.Errorf("report missing throughput:\n%s", out)
	}
}

func TestWriteReportZeroElapsed(t *testing.T) {
	var buf bytes.Buffer
	WriteReport(&buf, &Result{OutputPath: "out.mp4", Frames: 1, Width: 64, Height: 36})

	if strings.Contains(buf.String(), "frames/s") {
		t.Error("throughput printed with zero elapsed time")
	}
}

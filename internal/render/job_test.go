package render

import (
	"math"
	"testing"

	"github.com/jmorel/vibecut/internal/source"
)

func TestNewJob(t *testing.T) {
	asset := source.NewAsset("/videos/input.mp4")

	job, err := NewJob(asset, "/videos/out.mp4", "vibe", 12.5)
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	if job.ID == "" {
		t.Error("job id is empty")
	}
	if job.Input.Locator() != "file:/videos/input.mp4" {
		t.Errorf("input locator: got %q", job.Input.Locator())
	}
	if job.RequestedDurationSeconds != 12.5 {
		t.Errorf("requested duration: got %v, want 12.5", job.RequestedDurationSeconds)
	}

	other, err := NewJob(asset, "/videos/out.mp4", "vibe", 12.5)
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	if other.ID == job.ID {
		t.Error("job ids must be unique per job")
	}
}

func TestNewJobAbsentDuration(t *testing.T) {
	job, err := NewJob(source.NewAsset("/videos/input.mp4"), "/videos/out.mp4", "vibe", math.NaN())
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	if !math.IsNaN(job.RequestedDurationSeconds) {
		t.Errorf("absent duration must stay NaN, got %v", job.RequestedDurationSeconds)
	}
}

func TestNewJobValidation(t *testing.T) {
	asset := source.NewAsset("/videos/input.mp4")

	if _, err := NewJob(source.VideoAsset{}, "/videos/out.mp4", "vibe", 1); err == nil {
		t.Error("expected error for empty input asset")
	}
	if _, err := NewJob(asset, "", "vibe", 1); err == nil {
		t.Error("expected error for empty output path")
	}
	if _, err := NewJob(asset, "/videos/out.mp4", "", 1); err == nil {
		t.Error("expected error for empty composition id")
	}
}

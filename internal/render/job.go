// Package render drives a video through the staged overlay pipeline:
// bundle the compositions, select one, resolve its duration, then stream
// frames through the compositor into an encoder.
package render

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jmorel/vibecut/internal/source"
)

// Job is one render request. RequestedDurationSeconds may be NaN (or any
// non-positive or non-finite value) to request the composition default.
type Job struct {
	ID                       string
	Input                    source.VideoAsset
	OutputPath               string
	CompositionID            string
	RequestedDurationSeconds float64
}

func NewJob(asset source.VideoAsset, outputPath, compositionID string, requestedSeconds float64) (Job, error) {
	if asset.Locator() == "" {
		return Job{}, fmt.Errorf("input asset is required")
	}
	if outputPath == "" {
		return Job{}, fmt.Errorf("output path is required")
	}
	if compositionID == "" {
		return Job{}, fmt.Errorf("composition id is required")
	}

	return Job{
		ID:                       uuid.NewString(),
		Input:                    asset,
		OutputPath:               outputPath,
		CompositionID:            compositionID,
		RequestedDurationSeconds: requestedSeconds,
	}, nil
}

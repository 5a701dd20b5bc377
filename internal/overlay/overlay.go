// Package overlay computes and rasterizes the procedural overlay that the
// render and preview paths composite above the source video.
package overlay

import "math"

// FrameState is the overlay's visual state for a single output frame.
type FrameState struct {
	// Opacity is the scrim alpha, oscillating in [0.10, 0.20].
	Opacity float64
	// ScaleX is the accent bar's horizontal scale, oscillating in
	// [0.65, 0.75], anchored at the bar's left edge.
	ScaleX float64
}

// State computes the overlay state for a frame index. The opacity cycle is
// two thirds of a second (20 frames at 30 fps) and the scale cycle one full
// second (30 frames at 30 fps). Pure: the same index and rate always yield
// the identical state, so renders are reproducible frame by frame.
func State(frameIndex, frameRate int) FrameState {
	opacityPeriod := 2.0 * float64(frameRate) / 3.0
	scalePeriod := float64(frameRate)
	f := float64(frameIndex)

	return FrameState{
		Opacity: 0.15 + 0.05*math.Sin(2*math.Pi*f/opacityPeriod),
		ScaleX:  0.70 + 0.05*math.Sin(2*math.Pi*f/scalePeriod),
	}
}

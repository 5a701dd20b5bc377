package composition

import "math"

// DefaultDurationSeconds is the fallback render length applied when no
// usable duration was requested.
const DefaultDurationSeconds = 30

// ResolveFrameCount reconciles a requested duration in seconds with a frame
// rate. A positive finite request yields ceil(seconds*frameRate); anything
// else (NaN encodes "absent", as do zero, negatives and infinities) yields
// the 30-second default. Pure; never fails.
func ResolveFrameCount(requestedSeconds float64, frameRate int) int {
	if requestedSeconds > 0 && !math.IsInf(requestedSeconds, 1) {
		return int(math.Ceil(requestedSeconds * float64(frameRate)))
	}
	return DefaultDurationSeconds * frameRate
}

// Resolved carries the final render parameters for one job. It is produced
// exactly once, by Finalize, and is the only value the render stage reads:
// the frame count cannot diverge between composition selection and the
// encode call because neither re-derives it.
type Resolved struct {
	Composition      Composition
	Input            string
	DurationInFrames int
}

// Finalize applies the per-job parameters to a selected composition: the
// input locator and the duration override. The composition's static default
// frame count is replaced by the resolved value even when the request was
// absent (both paths go through ResolveFrameCount).
func Finalize(c Composition, input string, requestedSeconds float64) Resolved {
	return Resolved{
		Composition:      c,
		Input:            input,
		DurationInFrames: ResolveFrameCount(requestedSeconds, c.FPS),
	}
}

package assist

import (
	"strings"

	"github.com/jmorel/vibecut/internal/ffmpeg"
)

// Filter presets keyed by prompt vocabulary. Every preset is exactly three
// filters: pacing, color, and a caption.
var (
	energeticFilters = []string{
		"setpts=0.85*PTS",
		"hue=s=1.25",
		"drawtext=text='VIBE: ENERGETIC':x=24:y=h-th-24:fontsize=36:fontcolor=white",
	}

	chillFilters = []string{
		"setpts=1.05*PTS",
		"hue=s=0.8",
		"drawtext=text='VIBE: CHILL':x=24:y=h-th-24:fontsize=36:fontcolor=white",
	}

	defaultFilters = []string{
		"setpts=1.0*PTS",
		"hue=s=1.0",
		"drawtext=text='VIBE: ACTION':x=24:y=h-th-24:fontsize=36:fontcolor=white",
	}
)

// SelectByKeywords maps a free-form prompt onto a filter preset. It is the
// fallback when no assisted selector is configured or the selector fails,
// so it always succeeds.
func SelectByKeywords(prompt string) []string {
	p := strings.ToLower(prompt)

	switch {
	case strings.Contains(p, "energetic") || strings.Contains(p, "fast"):
		return clone(energeticFilters)
	case strings.Contains(p, "chill") || strings.Contains(p, "calm"):
		return clone(chillFilters)
	default:
		return clone(defaultFilters)
	}
}

// EnsureThree normalizes a filter list to exactly three entries: excess
// filters are dropped, missing slots are padded with a neutral hue pass.
func EnsureThree(filters []string) []string {
	out := clone(filters)
	if len(out) > 3 {
		out = out[:3]
	}
	for len(out) < 3 {
		out = append(out, ffmpeg.NewFilterBuilder().Hue(1).Build())
	}
	return out
}

// Presets hand out shared slices; callers edit slot 2 for watermarking.
func clone(filters []string) []string {
	return append([]string(nil), filters...)
}

package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"
)

// FilterBuilder helps construct ffmpeg filter chains
type FilterBuilder struct {
	filters []string
}

// NewFilterBuilder creates a new filter builder
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{
		filters: make([]string, 0),
	}
}

// Scale adds a scale filter
func (fb *FilterBuilder) Scale(width, height int) *FilterBuilder {
	if width <= 0 || height <= 0 {
		// Return self without adding filter - allows chaining to continue
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("scale=%d:%d", width, height))
	return fb
}

// FPS adds an fps filter
func (fb *FilterBuilder) FPS(fps float64) *FilterBuilder {
	if fps <= 0 {
		return fb
	}
	fb.filters = append(fb.filters, fmt.Sprintf("fps=%f", fps))
	return fb
}

// Hue adds a hue saturation filter
func (fb *FilterBuilder) Hue(saturation float64) *FilterBuilder {
	fb.filters = append(fb.filters, fmt.Sprintf("hue=s=%s", strconv.FormatFloat(saturation, 'f', -1, 64)))
	return fb
}

// DrawText adds a drawtext filter. x and y accept ffmpeg position
// expressions (e.g. "h-th-24").
func (fb *FilterBuilder) DrawText(text, x, y string, fontSize int, fontColor string) *FilterBuilder {
	fb.filters = append(fb.filters, fmt.Sprintf(
		"drawtext=text='%s':x=%s:y=%s:fontsize=%d:fontcolor=%s",
		text, x, y, fontSize, fontColor,
	))
	return fb
}

// Custom adds a custom filter string
func (fb *FilterBuilder) Custom(filter string) *FilterBuilder {
	fb.filters = append(fb.filters, filter)
	return fb
}

// Build returns the complete filter string joined with commas
func (fb *FilterBuilder) Build() string {
	if len(fb.filters) == 0 {
		return ""
	}
	return strings.Join(fb.filters, ",")
}

// BuildAll returns all filters as a slice
func (fb *FilterBuilder) BuildAll() []string {
	return fb.filters
}

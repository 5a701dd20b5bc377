package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/jmorel/vibecut/internal/composition"
)

var accentColor = color.RGBA{R: 255, G: 61, B: 110, A: 255}

// Painter rasterizes the overlay layers onto decoded frames. Geometry is
// fixed when the painter is built from a composition; all per-frame
// variation comes from FrameState.
type Painter struct {
	width, height int
	scrimRows     int
	bar           image.Rectangle
}

// NewPainter builds a painter from the composition's layer tree. Layers the
// composition does not declare simply paint nothing.
func NewPainter(c composition.Composition) *Painter {
	p := &Painter{width: c.Width, height: c.Height}

	for _, l := range c.Layers {
		switch l.Kind {
		case composition.LayerScrim:
			p.scrimRows = int(float64(c.Height) * l.HeightFrac)
		case composition.LayerAccentBar:
			fullWidth := int(float64(c.Width) * l.WidthFrac)
			y := c.Height - l.MarginBottom - l.BarHeight
			p.bar = image.Rect(l.MarginX, y, l.MarginX+fullWidth, y+l.BarHeight)
		}
	}

	return p
}

// Paint composites the overlay for one frame state onto dst. dst must hold
// the already-decoded video frame; the scrim darkens it in place and the
// accent bar is filled over it.
func (p *Painter) Paint(dst *image.RGBA, st FrameState) {
	p.paintScrim(dst, st.Opacity)
	p.paintBar(dst, st.ScaleX)
}

// paintScrim blends black over the bottom region, ramping from fully
// transparent at the region's top edge to the frame's opacity at the
// bottom edge.
func (p *Painter) paintScrim(dst *image.RGBA, opacity float64) {
	if p.scrimRows <= 0 {
		return
	}

	b := dst.Bounds()
	top := b.Max.Y - p.scrimRows
	if top < b.Min.Y {
		top = b.Min.Y
	}

	for y := top; y < b.Max.Y; y++ {
		ramp := float64(y-top+1) / float64(b.Max.Y-top)
		keep := 1 - opacity*ramp

		row := dst.Pix[dst.PixOffset(b.Min.X, y):dst.PixOffset(b.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			row[i] = uint8(float64(row[i]) * keep)
			row[i+1] = uint8(float64(row[i+1]) * keep)
			row[i+2] = uint8(float64(row[i+2]) * keep)
		}
	}
}

// paintBar fills the accent bar scaled horizontally by scaleX, anchored at
// its left edge.
func (p *Painter) paintBar(dst *image.RGBA, scaleX float64) {
	if p.bar.Empty() {
		return
	}

	w := int(math.Round(float64(p.bar.Dx()) * scaleX))
	if w <= 0 {
		return
	}

	scaled := image.Rect(p.bar.Min.X, p.bar.Min.Y, p.bar.Min.X+w, p.bar.Max.Y)
	draw.Draw(dst, scaled.Intersect(dst.Bounds()), &image.Uniform{C: accentColor}, image.Point{}, draw.Src)
}

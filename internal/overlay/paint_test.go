package overlay

import (
	"bytes"
	"image"
	"testing"

	"github.com/jmorel/vibecut/internal/composition"
)

func testComposition() composition.Composition {
	return composition.Composition{
		ID:                      "test",
		FPS:                     30,
		Width:                   64,
		Height:                  36,
		DefaultDurationInFrames: 900,
		Layers: []composition.Layer{
			{Kind: composition.LayerVideo},
			{Kind: composition.LayerScrim, HeightFrac: 0.25},
			{Kind: composition.LayerAccentBar, MarginX: 4, MarginBottom: 4, WidthFrac: 0.5, BarHeight: 2},
		},
	}
}

func whiteFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

func TestPaintScrimDarkensBottom(t *testing.T) {
	p := NewPainter(testComposition())
	img := whiteFrame(64, 36)

	p.Paint(img, FrameState{Opacity: 0.15, ScaleX: 0.70})

	// Above the scrim region nothing changes.
	if r, _, _, _ := img.At(10, 5).RGBA(); r>>8 != 255 {
		t.Errorf("pixel above scrim darkened: r = %d", r>>8)
	}

	// The bottom row is darkened by the full opacity: 255 * (1 - 0.15).
	if r, _, _, _ := img.At(10, 35).RGBA(); r>>8 != 216 {
		t.Errorf("bottom row r = %d, want 216", r>>8)
	}

	// The ramp makes the scrim's top row lighter than its bottom row.
	topR, _, _, _ := img.At(10, 27).RGBA()
	botR, _, _, _ := img.At(10, 35).RGBA()
	if topR <= botR {
		t.Errorf("scrim ramp inverted: top %d <= bottom %d", topR>>8, botR>>8)
	}
}

func TestPaintBarAnchoredLeft(t *testing.T) {
	p := NewPainter(testComposition())
	img := whiteFrame(64, 36)

	// scaleX 0.70 over a 32px full-scale bar paints 22px from x=4.
	p.Paint(img, FrameState{Opacity: 0.15, ScaleX: 0.70})

	barY := 36 - 4 - 2 // top row of the bar
	if got := img.RGBAAt(4, barY); got != accentColor {
		t.Errorf("bar left edge = %v, want %v", got, accentColor)
	}
	if got := img.RGBAAt(25, barY); got != accentColor {
		t.Errorf("bar interior = %v, want %v", got, accentColor)
	}
	if got := img.RGBAAt(26, barY); got == accentColor {
		t.Error("pixel past the scaled width should not carry the bar color")
	}
	if got := img.RGBAAt(3, barY); got == accentColor {
		t.Error("pixel left of the anchor should not carry the bar color")
	}
}

func TestPaintBarWidthFollowsScale(t *testing.T) {
	p := NewPainter(testComposition())

	widthAt := func(scale float64) int {
		img := whiteFrame(64, 36)
		p.Paint(img, FrameState{Opacity: 0.10, ScaleX: scale})
		barY := 36 - 4 - 2
		w := 0
		for x := 4; x < 64; x++ {
			if img.RGBAAt(x, barY) != accentColor {
				break
			}
			w++
		}
		return w
	}

	if wide, narrow := widthAt(0.75), widthAt(0.65); wide <= narrow {
		t.Errorf("bar width did not grow with scale: %d <= %d", wide, narrow)
	}
	if got := widthAt(0.70); got != 22 {
		t.Errorf("bar width at 0.70 = %d, want 22", got)
	}
}

func TestPaintDeterministic(t *testing.T) {
	p := NewPainter(testComposition())
	st := State(17, 30)

	a := whiteFrame(64, 36)
	b := whiteFrame(64, 36)
	p.Paint(a, st)
	p.Paint(b, st)

	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("identical state painted different frames")
	}
}

func TestPaintWithoutDecorLayers(t *testing.T) {
	comp := testComposition()
	comp.Layers = []composition.Layer{{Kind: composition.LayerVideo}}
	p := NewPainter(comp)

	img := whiteFrame(64, 36)
	p.Paint(img, State(0, 30))

	for i, v := range img.Pix {
		if v != 255 {
			t.Fatalf("pixel byte %d modified with no scrim or bar declared", i)
		}
	}
}

package composition

import (
	"fmt"
	"sort"
)

// LayerKind identifies a layer type within a composition.
type LayerKind string

const (
	LayerVideo     LayerKind = "video"
	LayerScrim     LayerKind = "scrim"
	LayerAccentBar LayerKind = "accent_bar"
)

// Layer is one declarative element of a composition tree. The video layer
// carries no parameters; scrim and accent bar carry their geometry.
type Layer struct {
	Kind LayerKind `yaml:"kind"`

	// Scrim: fraction of the frame height covered from the bottom edge.
	HeightFrac float64 `yaml:"height_frac,omitempty"`

	// Accent bar geometry at composition scale.
	MarginX      int     `yaml:"margin_x,omitempty"`
	MarginBottom int     `yaml:"margin_bottom,omitempty"`
	WidthFrac    float64 `yaml:"width_frac,omitempty"`
	BarHeight    int     `yaml:"bar_height,omitempty"`
}

// Composition is a named, parameterized rendering recipe: fixed frame rate,
// default geometry, default frame count, and the layer tree the bundler
// serializes. Values are copied on registration and lookup; a Composition
// never changes after process start.
type Composition struct {
	ID                      string  `yaml:"id"`
	FPS                     int     `yaml:"fps"`
	Width                   int     `yaml:"width"`
	Height                  int     `yaml:"height"`
	DefaultDurationInFrames int     `yaml:"default_duration_in_frames"`
	Layers                  []Layer `yaml:"layers"`
}

func (c Composition) validate() error {
	if c.ID == "" {
		return fmt.Errorf("composition id is required")
	}
	if c.FPS <= 0 {
		return fmt.Errorf("composition %q: fps must be positive", c.ID)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("composition %q: invalid geometry %dx%d", c.ID, c.Width, c.Height)
	}
	if c.DefaultDurationInFrames <= 0 {
		return fmt.Errorf("composition %q: default duration must be positive", c.ID)
	}
	return nil
}

// Registry holds the compositions known to the process. It is constructed
// once at startup, populated, and read-only afterward.
type Registry struct {
	comps map[string]Composition
}

// NewRegistry creates an empty composition registry
func NewRegistry() *Registry {
	return &Registry{
		comps: make(map[string]Composition),
	}
}

// Register adds a composition to the registry. Registering an id twice or
// an invalid composition is an authoring defect and fails.
func (r *Registry) Register(c Composition) error {
	if err := c.validate(); err != nil {
		return err
	}
	if _, exists := r.comps[c.ID]; exists {
		return fmt.Errorf("composition %q already registered", c.ID)
	}
	r.comps[c.ID] = c
	return nil
}

// Get retrieves a composition by id
func (r *Registry) Get(id string) (Composition, bool) {
	c, ok := r.comps[id]
	return c, ok
}

// List returns all registered compositions sorted by id
func (r *Registry) List() []Composition {
	out := make([]Composition, 0, len(r.comps))
	for _, c := range r.comps {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Default geometry of the shipped composition.
const (
	DefaultFPS    = 30
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// DefaultComposition returns the overlay composition this tool ships with:
// the source video under a bottom gradient scrim and a left-anchored
// accent bar.
func DefaultComposition() Composition {
	return Composition{
		ID:                      "vibe",
		FPS:                     DefaultFPS,
		Width:                   DefaultWidth,
		Height:                  DefaultHeight,
		DefaultDurationInFrames: DefaultDurationSeconds * DefaultFPS,
		Layers: []Layer{
			{Kind: LayerVideo},
			{Kind: LayerScrim, HeightFrac: 0.25},
			{Kind: LayerAccentBar, MarginX: 48, MarginBottom: 40, WidthFrac: 0.4, BarHeight: 6},
		},
	}
}

// DefaultRegistry builds the process registry with the shipped composition.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	if err := r.Register(DefaultComposition()); err != nil {
		// The shipped composition is static; a failure here is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return r
}

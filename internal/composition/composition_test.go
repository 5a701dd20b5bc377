package composition

import "testing"

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()

	comp := DefaultComposition()
	if err := r.Register(comp); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, ok := r.Get("vibe")
	if !ok {
		t.Fatal("registered composition not found")
	}
	if got.FPS != 30 {
		t.Errorf("fps = %d, want 30", got.FPS)
	}
	if got.DefaultDurationInFrames != 900 {
		t.Errorf("default duration = %d, want 900", got.DefaultDurationInFrames)
	}
	if len(got.Layers) != 3 {
		t.Errorf("layers = %d, want 3", len(got.Layers))
	}
}

func TestRegistryRejectsDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(DefaultComposition()); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := r.Register(DefaultComposition()); err == nil {
		t.Error("duplicate Register should fail")
	}
}

func TestRegistryRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		comp Composition
	}{
		{"missing id", Composition{FPS: 30, Width: 100, Height: 100, DefaultDurationInFrames: 10}},
		{"zero fps", Composition{ID: "x", Width: 100, Height: 100, DefaultDurationInFrames: 10}},
		{"bad geometry", Composition{ID: "x", FPS: 30, Width: 0, Height: 100, DefaultDurationInFrames: 10}},
		{"zero duration", Composition{ID: "x", FPS: 30, Width: 100, Height: 100}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := NewRegistry().Register(c.comp); err == nil {
				t.Error("Register should fail")
			}
		})
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	r := DefaultRegistry()
	if _, ok := r.Get("nope"); ok {
		t.Error("unknown id should not resolve")
	}
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	b := DefaultComposition()
	b.ID = "beta"
	a := DefaultComposition()
	a.ID = "alpha"

	for _, c := range []Composition{b, a} {
		if err := r.Register(c); err != nil {
			t.Fatal(err)
		}
	}

	list := r.List()
	if len(list) != 2 {
		t.Fatalf("list length = %d, want 2", len(list))
	}
	if list[0].ID != "alpha" || list[1].ID != "beta" {
		t.Errorf("list not sorted by id: %q, %q", list[0].ID, list[1].ID)
	}
}

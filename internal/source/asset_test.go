package source

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestNewAssetNormalizesBarePath(t *testing.T) {
	a := NewAsset("videos/in.mp4")

	if !strings.HasPrefix(a.Locator(), "file:") {
		t.Fatalf("locator %q not file-prefixed", a.Locator())
	}
	if !filepath.IsAbs(a.Path()) {
		t.Errorf("path %q not absolute", a.Path())
	}
	if !strings.HasSuffix(a.Path(), filepath.Join("videos", "in.mp4")) {
		t.Errorf("path %q lost the original tail", a.Path())
	}
}

func TestNewAssetAbsolutePath(t *testing.T) {
	a := NewAsset("/media/in.mp4")
	if a.Locator() != "file:/media/in.mp4" {
		t.Errorf("locator = %q, want file:/media/in.mp4", a.Locator())
	}
	if a.Path() != "/media/in.mp4" {
		t.Errorf("path = %q, want /media/in.mp4", a.Path())
	}
}

func TestNewAssetIdempotent(t *testing.T) {
	a := NewAsset("/media/in.mp4")
	b := NewAsset(a.Locator())
	if a.Locator() != b.Locator() {
		t.Errorf("re-normalizing changed the locator: %q vs %q", a.Locator(), b.Locator())
	}
}

func TestNewAssetKeepsForeignSchemes(t *testing.T) {
	for _, loc := range []string{
		"file:/already/prefixed.mp4",
		"http://example.com/clip.mp4",
		"rtsp://camera.local/stream",
	} {
		if got := NewAsset(loc).Locator(); got != loc {
			t.Errorf("NewAsset(%q).Locator() = %q, want unchanged", loc, got)
		}
	}
}

func TestHasVideoExtension(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"a.mp4", true},
		{"a.mov", true},
		{"b.MKV", true},
		{"clip.webm", true},
		{"doc.txt", false},
		{"noext", false},
	}

	for _, c := range cases {
		if got := HasVideoExtension(c.path); got != c.want {
			t.Errorf("HasVideoExtension(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

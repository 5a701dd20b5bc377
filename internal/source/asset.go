// Package source models the input video asset handed to the pipeline.
package source

import (
	"path/filepath"
	"strings"

	"github.com/jmorel/vibecut/pkg/util"
)

// Extensions is the fixed set of video file extensions the pickers accept.
var Extensions = []string{".mp4", ".mov", ".mkv", ".webm"}

// VideoAsset identifies a source video by a resolved, engine-addressable
// locator. Immutable once created; intrinsic duration and resolution are
// discovered at decode time, not carried here.
type VideoAsset struct {
	locator string
}

// NewAsset builds an asset from a raw path or locator. Bare paths are
// normalized to file-reference form (absolute path behind a file: prefix,
// which ffmpeg resolves natively); inputs that already carry a scheme pass
// through untouched, so normalization is idempotent.
func NewAsset(pathOrLocator string) VideoAsset {
	if hasScheme(pathOrLocator) {
		return VideoAsset{locator: pathOrLocator}
	}

	abs, err := filepath.Abs(pathOrLocator)
	if err != nil {
		abs = pathOrLocator
	}
	return VideoAsset{locator: "file:" + abs}
}

// Locator returns the engine-addressable reference
func (a VideoAsset) Locator() string {
	return a.locator
}

// Path returns the local filesystem path for file-backed assets; locators
// with other schemes are returned as-is.
func (a VideoAsset) Path() string {
	return strings.TrimPrefix(a.locator, "file:")
}

// HasVideoExtension reports whether the path carries one of the accepted
// video extensions, case-insensitively.
func HasVideoExtension(path string) bool {
	ext := util.GetExtension(path)
	for _, e := range Extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// hasScheme reports whether the string starts with a URL scheme, using the
// same alphabet net/url accepts.
func hasScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
			// valid scheme byte
		case '0' <= c && c <= '9' || c == '+' || c == '-' || c == '.':
			if i == 0 {
				return false
			}
		case c == ':':
			return i > 0
		default:
			return false
		}
	}
	return false
}

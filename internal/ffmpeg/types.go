package ffmpeg

import "time"

// VideoInfo contains metadata about a video file
type VideoInfo struct {
	FilePath   string
	Duration   time.Duration
	Width      int
	Height     int
	FPS        float64
	Bitrate    int64
	VideoCodec string
	HasAudio   bool
	AudioCodec string
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame   int
	FPS     float64
	Bitrate string
	Time    string
	Speed   string
}

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args            []string
	ProgressHandler func(*Progress)
	LogHandler      func(line string)
}

// ProgressFunc is a callback for progress updates during ffmpeg operations.
// Called periodically with progress information as the operation executes.
type ProgressFunc func(*Progress)

// FilterChain represents a -vf filter graph
type FilterChain struct {
	Filters []string
}

// Default encoding settings
const (
	DefaultCRF         = 23
	DefaultPreset      = "medium"
	DefaultVideoCodec  = "libx264"
	DefaultAudioCodec  = "aac"
	DefaultPixelFormat = "yuv420p"
)

// EncodeSettings carries the tunable encode quality knobs. Zero values fall
// back to the defaults above.
type EncodeSettings struct {
	CRF    int
	Preset string
}

func (s EncodeSettings) withDefaults() EncodeSettings {
	if s.CRF == 0 {
		s.CRF = DefaultCRF
	}
	if s.Preset == "" {
		s.Preset = DefaultPreset
	}
	return s
}

// StreamOptions describes the raw RGBA frame geometry of a decode or encode
// stream. FrameCount caps an encode stream (0 leaves it unbounded by args;
// the writer side still controls how many frames go in).
type StreamOptions struct {
	Width      int
	Height     int
	FPS        int
	FrameCount int
	Settings   EncodeSettings
}

package config

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	WorkDir string `yaml:"work_dir"`
	DBPath  string `yaml:"db_path"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// Render settings
	Render RenderConfig `yaml:"render"`

	// Preview settings
	Preview PreviewConfig `yaml:"preview"`

	// Assisted edit settings
	Assist AssistConfig `yaml:"assist"`
}

type FFmpegConfig struct {
	Threads int    `yaml:"threads"`
	Preset  string `yaml:"preset"`
	CRF     int    `yaml:"crf"`
}

type RenderConfig struct {
	Composition string `yaml:"composition"`
}

type PreviewConfig struct {
	// PaintRate is the fallback sampling rate (Hz) used when a source
	// cannot signal individual decoded frames.
	PaintRate int `yaml:"paint_rate"`
}

type AssistConfig struct {
	WatermarkText string `yaml:"watermark_text"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func defaultConfig() *Config {
	return &Config{
		WorkDir: "./work",
		DBPath:  "./vibe.db",
		FFmpeg: FFmpegConfig{
			Threads: 0,
			Preset:  "medium",
			CRF:     23,
		},
		Render: RenderConfig{
			Composition: "vibe",
		},
		Preview: PreviewConfig{
			PaintRate: 60,
		},
		Assist: AssistConfig{
			WatermarkText: "TRIAL",
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./vibecut.yaml",
		"./vibecut.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "vibecut", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}

package ffmpeg

import (
	"context"
	"fmt"
	"strings"
)

// ApplyFilters re-encodes input through a -vf filter chain, writing the
// result to output. Used by the edit bridge, where the whole effect is
// expressed as a flat filter list.
func (e *Executor) ApplyFilters(ctx context.Context, input, output string, chain FilterChain, settings EncodeSettings, progress ProgressFunc) error {
	if input == "" {
		return fmt.Errorf("input path is required")
	}
	if output == "" {
		return fmt.Errorf("output path is required")
	}
	if len(chain.Filters) == 0 {
		return fmt.Errorf("filter chain cannot be empty")
	}

	s := settings.withDefaults()

	e.logger.Info().
		Str("input", input).
		Str("output", output).
		Int("filters", len(chain.Filters)).
		Msg("applying filter chain")

	args := []string{
		"-i", input,
		"-vf", strings.Join(chain.Filters, ","),
		"-c:v", DefaultVideoCodec,
		"-crf", fmt.Sprintf("%d", s.CRF),
		"-preset", s.Preset,
		"-c:a", DefaultAudioCodec,
		output,
	}

	runOpts := RunOptions{
		Args:            args,
		ProgressHandler: progress,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("filter output")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("filter chain render failed: %w", err)
	}

	e.logger.Info().Str("output", output).Msg("filter chain applied")
	return nil
}

// Package assist turns a vibe prompt into a rendered edit: filter
// selection, an optional trial watermark, and history recording.
package assist

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/jmorel/vibecut/internal/ffmpeg"
	"github.com/jmorel/vibecut/internal/store"
)

// OutputName is the fixed name of an edit's output, written next to the
// input file.
const OutputName = "vibe_output.mp4"

// Request describes one edit run.
type Request struct {
	InputPath  string
	Prompt     string
	LicenseKey string
}

// Result reports what an edit produced.
type Result struct {
	OutputPath                  string
	AppliedFilters              []string
	UsedAssistedFilterSelection bool
	Watermarked                 bool
}

// Selector proposes a filter list for a prompt. Implementations may call
// out to an external service; any failure falls back to keyword selection.
type Selector interface {
	SelectFilters(ctx context.Context, prompt string) ([]string, error)
}

// EditorOptions tunes an Editor beyond its required collaborators.
type EditorOptions struct {
	Selector      Selector
	Settings      ffmpeg.EncodeSettings
	WatermarkText string
}

// Editor runs prompt-driven edits.
type Editor struct {
	logger        zerolog.Logger
	exec          *ffmpeg.Executor
	store         *store.Store
	selector      Selector
	settings      ffmpeg.EncodeSettings
	watermarkText string
}

func NewEditor(logger zerolog.Logger, exec *ffmpeg.Executor, st *store.Store, opts EditorOptions) *Editor {
	text := opts.WatermarkText
	if text == "" {
		text = "TRIAL"
	}
	return &Editor{
		logger:        logger.With().Str("component", "assist").Logger(),
		exec:          exec,
		store:         st,
		selector:      opts.Selector,
		settings:      opts.Settings,
		watermarkText: text,
	}
}

// Edit renders the input through the selected filter chain. Output lands
// next to the input as vibe_output.mp4 and the run is recorded in history.
func (ed *Editor) Edit(ctx context.Context, req Request) (*Result, error) {
	if req.InputPath == "" {
		return nil, fmt.Errorf("input path is required")
	}

	filters, assisted, watermarked := ed.composeFilters(ctx, req.Prompt, req.LicenseKey)
	outputPath := filepath.Join(filepath.Dir(req.InputPath), OutputName)

	ed.logger.Info().
		Str("input", req.InputPath).
		Str("output", outputPath).
		Strs("filters", filters).
		Bool("assisted", assisted).
		Bool("watermarked", watermarked).
		Msg("starting edit")

	chain := ffmpeg.FilterChain{Filters: filters}
	if err := ed.exec.ApplyFilters(ctx, req.InputPath, outputPath, chain, ed.settings, nil); err != nil {
		return nil, fmt.Errorf("edit render failed: %w", err)
	}

	if _, err := ed.store.RecordProject(ctx, req.InputPath, outputPath, req.Prompt); err != nil {
		return nil, fmt.Errorf("edit rendered but history write failed: %w", err)
	}

	return &Result{
		OutputPath:                  outputPath,
		AppliedFilters:              filters,
		UsedAssistedFilterSelection: assisted,
		Watermarked:                 watermarked,
	}, nil
}

// composeFilters produces the final three-filter chain: selection, padding
// to three, then the caption slot swapped for a watermark on unlicensed
// runs.
func (ed *Editor) composeFilters(ctx context.Context, prompt, licenseKey string) (filters []string, assisted, watermarked bool) {
	filters, assisted = ed.selectFilters(ctx, prompt)
	filters = EnsureThree(filters)

	if !ed.checkLicense(ctx, licenseKey) {
		watermarked = true
		filters[2] = ffmpeg.NewFilterBuilder().
			DrawText(ed.watermarkText, "16", "16", 24, "white").
			Build()
	}
	return filters, assisted, watermarked
}

func (ed *Editor) selectFilters(ctx context.Context, prompt string) ([]string, bool) {
	if ed.selector == nil {
		return SelectByKeywords(prompt), false
	}

	filters, err := ed.selector.SelectFilters(ctx, prompt)
	if err != nil || len(filters) == 0 {
		if err != nil {
			ed.logger.Warn().Err(err).Msg("assisted filter selection failed, using keyword fallback")
		}
		return SelectByKeywords(prompt), false
	}
	return filters, true
}

// checkLicense fails closed: a store error means the run is watermarked.
func (ed *Editor) checkLicense(ctx context.Context, key string) bool {
	valid, err := ed.store.LicenseValid(ctx, key)
	if err != nil {
		ed.logger.Warn().Err(err).Msg("license check failed, treating as unlicensed")
		return false
	}
	return valid
}

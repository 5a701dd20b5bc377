package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmorel/vibecut/internal/assist"
	"github.com/jmorel/vibecut/internal/composition"
	"github.com/jmorel/vibecut/internal/config"
	"github.com/jmorel/vibecut/internal/ffmpeg"
	"github.com/jmorel/vibecut/internal/gui"
	"github.com/jmorel/vibecut/internal/logging"
	"github.com/jmorel/vibecut/internal/render"
	"github.com/jmorel/vibecut/internal/source"
	"github.com/jmorel/vibecut/internal/store"
)

var (
	cfgFile string
	verbose bool

	renderComposition string
	renderStats       bool

	editPrompt     string
	editLicenseKey string
)

// registry holds the compositions registered at process start.
var registry = composition.DefaultRegistry()

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vibecut",
	Short: "vibecut - frame-synchronized video overlay renderer",
	Long:  "Renders an animated overlay composition over a video frame by frame, with a live preview window and prompt-driven filter edits.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging
		logging.Init(verbose)

		// Load config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// Store config in context
		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./vibecut.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(licenseCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(configCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render [input video] [output file] [seconds]",
	Short: "Render the overlay composition over a video",
	Long:  "Decodes the input, paints the animated overlay stack on every frame, and encodes the result. The duration falls back to the composition default when seconds is omitted.",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		cfg := config.FromContext(cmd.Context())

		seconds := math.NaN()
		if len(args) == 3 {
			v, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				log.Warn().Str("value", args[2]).Msg("unparsable duration, using composition default")
			} else {
				seconds = v
			}
		}

		compositionID := renderComposition
		if compositionID == "" {
			compositionID = cfg.Render.Composition
		}

		job, err := render.NewJob(source.NewAsset(args[0]), args[1], compositionID, seconds)
		if err != nil {
			return err
		}

		executor, err := ffmpeg.New(log.Logger, cfg.FFmpeg.Threads)
		if err != nil {
			return err
		}

		bundler := render.NewBundler(log.Logger, cfg.WorkDir)
		engine := render.NewEngine(log.Logger, executor, encodeSettings(cfg))
		orch := render.NewOrchestrator(log.Logger, registry, bundler, engine)

		res, err := orch.Render(cmd.Context(), job)
		if err != nil {
			return err
		}

		if renderStats {
			render.WriteReport(os.Stderr, res)
		}

		fmt.Println(res.OutputPath)
		return nil
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview [input video]",
	Short: "Open the live preview window",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		cfg := config.FromContext(cmd.Context())

		executor, err := ffmpeg.New(log.Logger, cfg.FFmpeg.Threads)
		if err != nil {
			return err
		}

		initial, err := pickVideo(args)
		if err != nil {
			// The window has its own chooser; start without a file.
			log.Warn().Err(err).Msg("file chooser unavailable")
			initial = ""
		}

		gui.RunViewer(log.Logger, executor, registry, cfg, initial)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit [input video]",
	Short: "Apply a prompt-driven filter edit",
	Long:  "Selects a three-filter chain from the prompt, watermarks unlicensed output, renders next to the input, and records the project.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		cfg := config.FromContext(cmd.Context())

		input, err := pickVideo(args)
		if err != nil {
			return err
		}
		if input == "" {
			return errors.New("no input video chosen")
		}

		executor, err := ffmpeg.New(log.Logger, cfg.FFmpeg.Threads)
		if err != nil {
			return err
		}

		st, err := store.Open(log.Logger, cfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()

		editor := assist.NewEditor(log.Logger, executor, st, assist.EditorOptions{
			Settings:      encodeSettings(cfg),
			WatermarkText: cfg.Assist.WatermarkText,
		})

		res, err := editor.Edit(cmd.Context(), assist.Request{
			InputPath:  input,
			Prompt:     editPrompt,
			LicenseKey: editLicenseKey,
		})
		if err != nil {
			return err
		}

		log.Info().
			Bool("watermarked", res.Watermarked).
			Strs("filters", res.AppliedFilters).
			Msg("edit complete")

		fmt.Println(res.OutputPath)
		return nil
	},
}

var licenseCmd = &cobra.Command{
	Use:   "license",
	Short: "License management commands",
}

var licenseAddCmd = &cobra.Command{
	Use:   "add [key]",
	Short: "Store a license key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		cfg := config.FromContext(cmd.Context())

		st, err := store.Open(log.Logger, cfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()

		return st.AddLicense(cmd.Context(), args[0])
	},
}

var licenseCheckCmd = &cobra.Command{
	Use:   "check [key]",
	Short: "Check whether a license key is valid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		cfg := config.FromContext(cmd.Context())

		st, err := store.Open(log.Logger, cfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()

		valid, err := st.LicenseValid(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if valid {
			fmt.Println("valid")
		} else {
			fmt.Println("invalid")
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded edit projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		cfg := config.FromContext(cmd.Context())

		st, err := store.Open(log.Logger, cfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()

		projects, err := st.Projects(cmd.Context())
		if err != nil {
			return err
		}

		for _, p := range projects {
			fmt.Printf("%s  %s  %s -> %s", p.ID, p.CreatedAt.Format("2006-01-02 15:04"), p.InputPath, p.OutputPath)
			if p.Prompt != "" {
				fmt.Printf("  (%s)", p.Prompt)
			}
			fmt.Println()
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered compositions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, c := range registry.List() {
			fmt.Printf("%s: %dx%d @ %dfps, %d layers, default %d frames\n",
				c.ID, c.Width, c.Height, c.FPS, len(c.Layers), c.DefaultDurationInFrames)
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}

		fmt.Print(string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config to ./vibecut.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		cfg := config.FromContext(cmd.Context())

		if err := cfg.Save("vibecut.yaml"); err != nil {
			return err
		}

		log.Info().Str("path", "vibecut.yaml").Msg("config written")
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderComposition, "composition", "", "composition id (default from config)")
	renderCmd.Flags().BoolVar(&renderStats, "stats", false, "print a render report to stderr")

	editCmd.Flags().StringVar(&editPrompt, "prompt", "", "vibe prompt used to pick the filter chain")
	editCmd.Flags().StringVar(&editLicenseKey, "license-key", "", "license key; unlicensed output is watermarked")

	licenseCmd.AddCommand(licenseAddCmd)
	licenseCmd.AddCommand(licenseCheckCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

// pickVideo resolves the input: the positional argument when given,
// otherwise a native file chooser. An empty path with nil error means the
// chooser was canceled.
func pickVideo(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	patterns := make([]string, len(source.Extensions))
	for i, ext := range source.Extensions {
		patterns[i] = "*" + ext
	}

	path, err := zenity.SelectFile(
		zenity.Title("Choose a video"),
		zenity.FileFilters{{Name: "Video files", Patterns: patterns, CaseFold: true}},
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return "", nil
	}
	return path, err
}

func encodeSettings(cfg *config.Config) ffmpeg.EncodeSettings {
	return ffmpeg.EncodeSettings{
		CRF:    cfg.FFmpeg.CRF,
		Preset: cfg.FFmpeg.Preset,
	}
}

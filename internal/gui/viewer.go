// Package gui hosts the desktop preview window: load a video, watch the
// sampled playback buffer, and kick off full renders.
package gui

import (
	"context"
	"fmt"
	"image"
	"math"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"github.com/jmorel/vibecut/internal/composition"
	"github.com/jmorel/vibecut/internal/config"
	"github.com/jmorel/vibecut/internal/ffmpeg"
	"github.com/jmorel/vibecut/internal/playback"
	"github.com/jmorel/vibecut/internal/preview"
	"github.com/jmorel/vibecut/internal/render"
	"github.com/jmorel/vibecut/internal/source"
)

// RunViewer opens the preview window and blocks until it is closed. A
// non-empty initial path is loaded before the window shows. All widget
// state lives on the fyne main goroutine; background work reports back
// through fyne.Do.
func RunViewer(logger zerolog.Logger, executor *ffmpeg.Executor, registry *composition.Registry, cfg *config.Config, initial string) {
	log := logger.With().Str("component", "gui").Logger()

	myApp := app.NewWithID("vibecut")
	w := myApp.NewWindow("vibecut")
	w.Resize(fyne.NewSize(800, 560))

	var (
		videoPath string
		player    *playback.Player
		session   *preview.Session
		unsub     func()
	)

	view := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, preview.DefaultWidth, preview.DefaultHeight)))
	view.FillMode = canvas.ImageFillContain
	view.SetMinSize(fyne.NewSize(640, 360))

	statusLabel := widget.NewLabel("No video loaded")

	teardown := func() {
		if unsub != nil {
			unsub()
			unsub = nil
		}
		if session != nil {
			session.Detach()
			session = nil
		}
		if player != nil {
			player.Close()
			player = nil
		}
	}

	load := func(path string) {
		teardown()

		p, err := playback.Open(context.Background(), logger, executor, path)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("could not open video")
			statusLabel.SetText("Open failed: " + err.Error())
			return
		}

		var s *preview.Session
		s = preview.Attach(logger, p, preview.Options{
			PaintRate: cfg.Preview.PaintRate,
			OnPresent: func() {
				fyne.Do(func() {
					// A present queued before Detach may land after it.
					if buf := s.Buffer(); buf != nil {
						view.Image = buf
						view.Refresh()
					}
				})
			},
		})

		player = p
		session = s
		videoPath = path
		unsub = p.Subscribe(func(ev preview.Event) {
			if ev == preview.EventEnded {
				fyne.Do(func() {
					statusLabel.SetText("Ended: " + filepath.Base(path))
				})
			}
		})

		width, height, _ := p.NativeSize()
		log.Info().Str("path", path).Int("width", width).Int("height", height).Msg("video loaded")
		statusLabel.SetText(fmt.Sprintf("Loaded: %s (%dx%d)", path, width, height))
	}

	loadButton := widget.NewButton("Load Video", func() {
		fd := dialog.NewFileOpen(
			func(ur fyne.URIReadCloser, err error) {
				if ur == nil {
					return
				}
				load(ur.URI().Path())
			}, w)
		fd.SetFilter(storage.NewExtensionFileFilter(source.Extensions))
		fd.Show()
	})

	playButton := widget.NewButton("Play", func() {
		if player == nil {
			return
		}
		player.Play()
		statusLabel.SetText("Playing: " + filepath.Base(videoPath))
	})

	pauseButton := widget.NewButton("Pause", func() {
		if player == nil {
			return
		}
		player.Pause()
		statusLabel.SetText("Paused: " + filepath.Base(videoPath))
	})

	bundler := render.NewBundler(logger, cfg.WorkDir)
	engine := render.NewEngine(logger, executor, ffmpeg.EncodeSettings{
		CRF:    cfg.FFmpeg.CRF,
		Preset: cfg.FFmpeg.Preset,
	})
	orch := render.NewOrchestrator(logger, registry, bundler, engine)

	var renderButton *widget.Button
	renderButton = widget.NewButton("Render", func() {
		if videoPath == "" {
			statusLabel.SetText("Load a video first")
			return
		}

		job, err := render.NewJob(source.NewAsset(videoPath), renderOutputPath(videoPath), cfg.Render.Composition, math.NaN())
		if err != nil {
			statusLabel.SetText("Render failed: " + err.Error())
			return
		}

		renderButton.Disable()
		statusLabel.SetText("Rendering: " + filepath.Base(videoPath))

		go func() {
			res, err := orch.Render(context.Background(), job)
			fyne.Do(func() {
				renderButton.Enable()
				if err != nil {
					statusLabel.SetText("Render failed: " + err.Error())
					return
				}
				statusLabel.SetText(fmt.Sprintf("Rendered %d frames to %s", res.Frames, res.OutputPath))
			})
		}()
	})

	w.SetContent(
		container.NewVBox(
			view,
			statusLabel,
			container.NewHBox(loadButton, playButton, pauseButton, renderButton),
		),
	)

	w.SetOnClosed(teardown)

	if initial != "" {
		load(initial)
	}

	w.ShowAndRun()
}

// renderOutputPath derives the overlay render target next to the input.
func renderOutputPath(input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(filepath.Dir(input), base+"_vibe.mp4")
}

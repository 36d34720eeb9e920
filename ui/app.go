// Package ui is the desktop transcript editor.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"verbum-lector/internal/datauri"
	"verbum-lector/internal/logger"
	"verbum-lector/models"
	"verbum-lector/services"
	uicontainer "verbum-lector/ui/container"
	"verbum-lector/ui/dialogs"
	"verbum-lector/ui/layouts"
)

var audioExtensions = []string{".mp3", ".wav", ".m4a", ".aac", ".ogg", ".oga", ".opus", ".flac", ".webm", ".mp4", ".mov", ".mkv"}

// MainUI is the main application UI. It drives one session at a time.
type MainUI struct {
	window fyne.Window
	config *models.Config
	log    *logger.Logger

	ctx         context.Context
	pipeline    *services.Pipeline
	pipelineErr error
	session     *services.Session
	unsubscribe func()

	statusPanel      *uicontainer.StatusPanel
	editorPanel      *uicontainer.EditorPanel
	translationPanel *uicontainer.TranslationPanel
}

// NewMainUI creates the UI. Sessions end when ctx does.
func NewMainUI(ctx context.Context, w fyne.Window, config *models.Config) *MainUI {
	ui := &MainUI{
		window: w,
		config: config,
		log:    logger.With("ui"),
		ctx:    ctx,
	}
	ui.setupPipeline()
	return ui
}

func (ui *MainUI) setupPipeline() {
	ui.pipeline, ui.pipelineErr = services.NewPipelineFromConfig(ui.ctx, ui.config)
	if ui.pipelineErr != nil {
		ui.log.Warn("providers not configured: %v", ui.pipelineErr)
	}
}

// Build creates the complete UI layout
func (ui *MainUI) Build() fyne.CanvasObject {
	ui.statusPanel = uicontainer.NewStatusPanel(ui.openAudio)
	ui.editorPanel = uicontainer.NewEditorPanel(ui.window)
	ui.editorPanel.OnError = func(err error) { dialog.ShowError(err, ui.window) }
	ui.translationPanel = uicontainer.NewTranslationPanel(ui.translate, ui.fullTranslation)

	toolbar := widget.NewToolbar(
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.SettingsIcon(), ui.showSettings),
	)

	split := container.NewVSplit(ui.editorPanel, ui.translationPanel)
	split.SetOffset(0.55)

	return container.NewBorder(toolbar, nil, nil, nil,
		container.New(layouts.NewSidebarLayout(),
			container.NewPadded(ui.statusPanel),
			split,
		),
	)
}

func (ui *MainUI) openAudio() {
	if ui.pipeline == nil {
		dialog.ShowError(fmt.Errorf("configure a provider in Settings first: %w", ui.pipelineErr), ui.window)
		return
	}

	open := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, ui.window)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		data, err := io.ReadAll(reader)
		if err != nil {
			dialog.ShowError(fmt.Errorf("failed to read %s: %w", reader.URI().Name(), err), ui.window)
			return
		}
		ui.submit(reader.URI().Name(), data)
	}, ui.window)
	open.SetFilter(storage.NewExtensionFileFilter(audioExtensions))
	open.Show()
}

func (ui *MainUI) submit(name string, data []byte) {
	if ui.session == nil {
		ui.startSession()
	}
	if _, err := ui.session.Submit(datauri.FromFile(name, data), name); err != nil {
		dialog.ShowError(err, ui.window)
		return
	}
	ui.log.Info("submitted %s (%d bytes)", name, len(data))
}

func (ui *MainUI) startSession() {
	sess := ui.pipeline.NewSession(ui.ctx)
	sess.SetProgressCallback(func(stage models.Stage, percent int, message string) {
		ui.log.Debug("%s %d%% %s", stage, percent, message)
	})

	events, unsubscribe := sess.Subscribe()
	ui.session = sess
	ui.unsubscribe = unsubscribe
	ui.editorPanel.SetSession(sess)

	go func() {
		for ev := range events {
			fyne.Do(func() { ui.handleEvent(sess, ev) })
		}
	}()
}

// handleEvent resyncs the panels from the session. Events can be dropped
// when the UI falls behind, so each one is only a hint to read fresh state.
func (ui *MainUI) handleEvent(sess *services.Session, ev services.Event) {
	if sess != ui.session {
		return
	}
	switch ev.Type {
	case services.EventFocus:
		if ev.Focus != nil {
			ui.editorPanel.ApplyFocus(*ev.Focus)
		}
		return
	case services.EventError:
		ui.showSessionError(ev.Error)
	}

	status := sess.Status()
	ui.statusPanel.SetStatus(status)
	ui.translationPanel.SetStatus(status)
	ui.editorPanel.SetSegments(sess.Segments())
	ui.translationPanel.SetRows(sess.Rows())
}

func (ui *MainUI) showSessionError(msg string) {
	if msg == "" {
		return
	}
	dialog.ShowError(errors.New(msg), ui.window)
}

func (ui *MainUI) translate() {
	if ui.session == nil {
		return
	}
	if err := ui.session.Translate(); err != nil {
		dialog.ShowError(err, ui.window)
	}
}

func (ui *MainUI) fullTranslation() string {
	if ui.session == nil {
		return ""
	}
	return ui.session.FullTranslation()
}

// Close ends the current session.
func (ui *MainUI) Close() {
	if ui.session == nil {
		return
	}
	ui.unsubscribe()
	ui.session.Close()
	ui.session = nil
}

func (ui *MainUI) showSettings() {
	d := dialogs.NewSettingsDialog(ui.window, ui.config)
	d.OnSave = func(config *models.Config) {
		*ui.config = *config
		// Providers changed; the next file starts a session on the new pipeline.
		ui.Close()
		ui.editorPanel.SetSession(nil)
		ui.editorPanel.SetSegments(nil)
		ui.translationPanel.SetRows(nil)
		ui.statusPanel.SetStatus(models.SessionStatus{Stage: models.StageIdle})
		ui.translationPanel.SetStatus(models.SessionStatus{Stage: models.StageIdle})
		ui.setupPipeline()
	}
	d.Show()
}

package main

import (
	"context"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"verbum-lector/internal/config"
	"verbum-lector/internal/logger"
	"verbum-lector/models"
	"verbum-lector/ui"
	appTheme "verbum-lector/ui/theme"
)

func main() {
	cfg, err := models.LoadConfig()
	if err != nil {
		logger.Warn("failed to load config, using defaults: %v", err)
		cfg = models.DefaultConfig()
	}
	logger.Configure(logger.ParseLevel(cfg.LogLevel), logger.Format(cfg.LogFormat), os.Stderr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := app.NewWithID(config.AppID)
	a.Settings().SetTheme(&appTheme.LectorTheme{})

	w := a.NewWindow(config.AppName)
	w.Resize(fyne.NewSize(1100, 760))

	mainUI := ui.NewMainUI(ctx, w, cfg)
	w.SetContent(mainUI.Build())
	w.SetOnClosed(mainUI.Close)

	w.ShowAndRun()
}

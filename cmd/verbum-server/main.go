// Command verbum-server serves transcript sessions over HTTP.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"verbum-lector/internal/logger"
	"verbum-lector/models"
	"verbum-lector/server"
	"verbum-lector/services"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/verbum-lector/config.json)")
	addr := flag.String("addr", "", "listen address (overrides server_addr)")
	flag.Parse()

	var (
		cfg *models.Config
		err error
	)
	if *configPath != "" {
		cfg, err = models.LoadConfigFrom(*configPath)
	} else {
		cfg, err = models.LoadConfig()
	}
	if err != nil {
		logger.Error("failed to load config: %v", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.ServerAddr = *addr
	}

	logger.Configure(logger.ParseLevel(cfg.LogLevel), logger.Format(cfg.LogFormat), os.Stdout)
	if logger.ParseLevel(cfg.LogLevel) != logger.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	pipeline, err := services.NewPipelineFromConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to set up providers: %v", err)
		os.Exit(1)
	}

	logger.Info("starting verbum-server on %s", cfg.ServerAddr)
	if err := server.New(ctx, pipeline).Run(ctx, cfg.ServerAddr); err != nil {
		logger.Error("server stopped: %v", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

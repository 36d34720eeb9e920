// Package server exposes transcript sessions over HTTP and WebSocket.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"verbum-lector/internal/config"
	"verbum-lector/internal/logger"
	"verbum-lector/services"
)

// Server routes HTTP requests to sessions created from one pipeline.
type Server struct {
	pipeline *services.Pipeline
	sessions *registry
	router   *gin.Engine
	log      *logger.Logger
}

// New creates a server. Sessions live until deleted or until ctx ends.
func New(ctx context.Context, pipeline *services.Pipeline) *Server {
	s := &Server{
		pipeline: pipeline,
		sessions: newRegistry(ctx, pipeline),
		log:      logger.With("server"),
	}
	s.router = s.setupRouter()
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(s.requestLogMiddleware())
	router.Use(corsMiddleware())
	router.Use(s.errorHandlerMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"service":  config.AppName,
			"sessions": s.sessions.len(),
		})
	})

	api := router.Group("/api")
	api.POST("/sessions", s.createSession)

	sess := api.Group("/sessions/:id")
	sess.GET("", s.getSession)
	sess.DELETE("", s.deleteSession)
	sess.POST("/audio", bodyLimitMiddleware(config.MaxUploadBytes), s.submitAudio)
	sess.POST("/translate", s.translate)
	sess.GET("/transcript", s.fullTranscript)
	sess.GET("/translation", s.fullTranslation)
	sess.GET("/ws", s.streamEvents)

	sess.POST("/segments/insert", s.insertSegment)
	sess.POST("/segments/split", s.splitSegment)
	sess.PUT("/segments/:segmentId", s.updateSegment)
	sess.DELETE("/segments/:segmentId", s.removeSegment)
	sess.POST("/segments/:segmentId/move", s.moveSegment)

	sess.POST("/focus", s.focus)
	sess.POST("/focus/cursor", s.moveCursor)
	sess.POST("/focus/blur", s.blur)
	sess.POST("/focus/split", s.splitAtFocus)
	sess.POST("/focus/insert", s.insertAfterFocused)

	return router
}

// Run serves on addr until ctx ends, then shuts down gracefully and closes
// every session.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.sessions.closeAll()
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.sessions.closeAll()
	if serveErr := <-errCh; serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	return err
}

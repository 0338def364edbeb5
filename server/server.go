package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hupe1980/tubeanalyst/analyst"
	"github.com/hupe1980/tubeanalyst/core"
	"github.com/hupe1980/tubeanalyst/logging"
	"github.com/shirou/gopsutil/v3/mem"
)

// Asker answers questions; *analyst.Analyst satisfies it.
type Asker interface {
	Ask(ctx context.Context, q analyst.Question) (*analyst.Answer, error)
}

// Options configures a Server.
type Options struct {
	Addr            string
	Mode            string // gin mode; empty keeps gin's current mode
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Logger          logging.Logger

	// MemoryStats reports host memory for /health. Defaults to gopsutil's
	// mem.VirtualMemory.
	MemoryStats func() (*mem.VirtualMemoryStat, error)
	Now         func() time.Time
}

// Server is the HTTP surface over a session store and an Asker.
type Server struct {
	store  core.SessionStore
	asker  Asker
	opts   Options
	logger logging.Logger
	engine *gin.Engine
}

// New builds the gin engine and registers all routes.
func New(store core.SessionStore, asker Asker, optFns ...func(o *Options)) *Server {
	opts := Options{
		Addr:            ":8080",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Logger:          logging.NoOpLogger{},
		MemoryStats:     mem.VirtualMemory,
		Now:             time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.MemoryStats == nil {
		opts.MemoryStats = mem.VirtualMemory
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}

	s := &Server{store: store, asker: asker, opts: opts, logger: opts.Logger}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())
	s.routes(engine)
	s.engine = engine
	return s
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	v1.POST("/chat", s.chat)
	v1.GET("/stats", s.stats)

	sessions := v1.Group("/sessions")
	sessions.GET("", s.listSessions)
	sessions.GET("/:id", s.getSession)
	sessions.GET("/:id/context", s.sessionContext)
	sessions.GET("/:id/messages", s.sessionMessages)
	sessions.DELETE("/:id", s.deleteSession)

	maintenance := v1.Group("/maintenance")
	maintenance.POST("/cleanup", s.cleanup)
	maintenance.POST("/clear", s.clear)
}

// Handler exposes the engine, mainly for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on Options.Addr until ctx is done, then shuts down gracefully
// within ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.opts.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", s.opts.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	s.logger.Info("HTTP server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func abortWithError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

package daemon

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/tomato-clock/tomato/internal/api"
	"github.com/tomato-clock/tomato/internal/app/gamification"
	"github.com/tomato-clock/tomato/internal/app/tasks"
	"github.com/tomato-clock/tomato/internal/app/timeline"
	"github.com/tomato-clock/tomato/internal/app/timer"
	"github.com/tomato-clock/tomato/internal/domain"
	"github.com/tomato-clock/tomato/internal/health"
	_ "github.com/tomato-clock/tomato/internal/infra/metrics" // Register Prometheus metrics
	"github.com/tomato-clock/tomato/internal/infra/storage"
)

// Daemon is the core tomato runtime. It wires together all services.
type Daemon struct {
	Config       Config
	DB           *storage.DB
	Gamification *gamification.Service
	Timeline     *timeline.Store
	Tasks        *tasks.Store
	Timer        *timer.Timer
	Server       *api.Server
	Health       *health.Checker
	cancel       context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	dir := cfg.Storage.Dir
	if dir == "" {
		dir = tomatoHome()
	}
	limits := storage.DefaultLimits()
	if cfg.Storage.SyncQuotaBytes > 0 {
		limits.SyncBytes = cfg.Storage.SyncQuotaBytes
	}
	db, err := storage.OpenWithLimits(dir, limits)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	g := gamification.NewService(db.Local())
	tl := timeline.NewStore(db.Local(), db.Sync())
	ts := tasks.NewStore(db.Local())
	tm := timer.New(g, tl, ts)

	// Move any timeline data still living in the sync tier.
	if err := tl.MigrateSyncToLocal(); err != nil {
		log.Printf("[daemon] timeline migration: %v", err)
	}

	srv := api.NewServer(g, tl, ts, tm)
	srv.SetSessionMinutes(func(t string) int {
		return cfg.Timer.SessionMinutes(domain.SessionType(t))
	})
	srv.SetCORSOrigins(cfg.API.CORSOrigins)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	// Push completions out to connected popups.
	tm.SetOnComplete(func(c timer.Completion) {
		srv.Events().Broadcast("timer-finished", c)
	})

	checker := health.NewChecker(db, dir)
	srv.SetHealth(checker)

	return &Daemon{
		Config:       cfg,
		DB:           db,
		Gamification: g,
		Timeline:     tl,
		Tasks:        ts,
		Timer:        tm,
		Server:       srv,
		Health:       checker,
	}, nil
}

// configureLogging mirrors the standard logger to the configured file,
// keeping stderr for interactive runs. Returns the file for closing,
// nil when no file is configured.
func configureLogging(cfg LoggingConfig) (*os.File, error) {
	if cfg.File == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0700); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return f, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	logFile, err := configureLogging(d.Config.Logging)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	// Health checker (always runs)
	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // SSE connections stay open
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		d.Timer.Reset()
		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("tomato serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Timer != nil {
		d.Timer.Reset()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}

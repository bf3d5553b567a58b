package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/quorum/internal/cache"
	"github.com/javiermolinar/quorum/internal/config"
	"github.com/javiermolinar/quorum/internal/db"
	"github.com/javiermolinar/quorum/internal/logger"
	"github.com/javiermolinar/quorum/internal/service"
	"github.com/javiermolinar/quorum/internal/tui/theme"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// annotationTUI marks commands that take over the terminal.
const annotationTUI = "tui"

// App holds the CLI application state.
type App struct {
	config  *config.Config
	svc     *service.Service
	closers []io.Closer
	root    *cobra.Command
	debug   bool // Enable debug logging
}

// Option configures an App.
type Option func(*App)

// WithService makes the App use svc instead of opening the configured
// storage on first use.
func WithService(svc *service.Service) Option {
	return func(a *App) {
		a.svc = svc
	}
}

// NewApp creates a new CLI application with the given config.
func NewApp(cfg *config.Config, opts ...Option) *App {
	a := &App{config: cfg}
	for _, opt := range opts {
		opt(a)
	}

	a.root = &cobra.Command{
		Use:   "quorum",
		Short: "Find a meeting time that works for everyone",
		Long: `Quorum coordinates meeting times.

An organizer creates an event with candidate dates and a daily time window.
Participants paint the slots they are free on a grid, the organizer reads the
overlap as a heatmap and schedules the final meeting.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return logger.Init(logger.Config{
				Dir:    a.config.Log.Dir,
				Debug:  a.debug,
				Stderr: a.debug && cmd.Annotations[annotationTUI] == "",
			})
		},
	}

	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (mirrored to stderr outside the TUI)")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.newCmd())
	a.root.AddCommand(a.showCmd())
	a.root.AddCommand(a.respondCmd())
	a.root.AddCommand(a.heatmapCmd())
	a.root.AddCommand(a.scheduleCmd())
	a.root.AddCommand(a.exportCmd())
	a.root.AddCommand(a.serveCmd())
	a.root.AddCommand(a.workerCmd())
	a.root.AddCommand(a.cleanupCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "quorum %s (commit: %s)\n", Version, Commit)
		},
	}
}

// service opens the configured storage and cache on first use.
func (a *App) service(ctx context.Context) (*service.Service, error) {
	if a.svc != nil {
		return a.svc, nil
	}

	if a.config.Storage.Driver == config.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(a.config.Storage.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	store, err := db.Open(ctx, a.config.Storage.Driver, a.config.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.closers = append(a.closers, store)

	c := a.openCache(ctx)
	a.closers = append(a.closers, c)

	t, err := theme.Load(a.config.UI.Theme)
	if err != nil {
		return nil, err
	}

	a.svc = service.New(store,
		service.WithCache(c),
		service.WithLogger(logger.With("component", "service")),
		service.WithScale(theme.NewPalette(t).Scale),
	)
	return a.svc, nil
}

// openCache connects to Redis when configured and falls back to an
// in-process cache when it is unreachable.
func (a *App) openCache(ctx context.Context) cache.Cache {
	if !a.config.HasRedis() {
		return cache.NewMemory(a.config.CacheTTL())
	}
	r, err := cache.NewRedis(ctx, cache.RedisOptions{
		Addr:     a.config.Cache.RedisAddr,
		Password: a.config.Cache.RedisPassword,
		DB:       a.config.Cache.RedisDB,
		TTL:      a.config.CacheTTL(),
	})
	if err != nil {
		logger.Warn("redis unavailable, using in-process cache", "addr", a.config.Cache.RedisAddr, "err", err)
		return cache.NewMemory(a.config.CacheTTL())
	}
	return r
}

// Execute runs the CLI application. SIGINT and SIGTERM cancel the command
// context.
func (a *App) Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.root.ExecuteContext(ctx)
}

// Close releases the storage and cache, and flushes the log.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := logger.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

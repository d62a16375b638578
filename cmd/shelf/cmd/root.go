// Package cmd holds the shelf command tree and its composition root.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/printandread/shelf/internal/access"
	"github.com/printandread/shelf/internal/adapter"
	"github.com/printandread/shelf/internal/adapter/api"
	"github.com/printandread/shelf/internal/catalog"
	"github.com/printandread/shelf/internal/domain"
	"github.com/printandread/shelf/internal/search"
	"github.com/printandread/shelf/internal/state"
	"github.com/printandread/shelf/internal/store"
)

// app is everything a command needs, built once per invocation
type app struct {
	cfg    *adapter.Config
	logger *slog.Logger

	kv       domain.KeyValueStore
	state    *state.Store
	client   *api.Client
	catalog  *catalog.Service
	queries  *catalog.Queries
	tracker  *access.Tracker
	bookmark *access.Bookmark
	search   *search.Service
	launcher *adapter.Launcher

	out     printer
	closers []io.Closer
}

// globalFlags are the persistent flags shared by every command
type globalFlags struct {
	configFile string
	ephemeral  bool
	apiURL     string
}

// Execute runs the shelf command tree and releases its resources
func Execute(version string) error {
	root, a := newRootCommand(version)
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return root.ExecuteContext(ctx)
}

// newRootCommand builds the command tree around an app that is set up lazily
func newRootCommand(version string) (*cobra.Command, *app) {
	var (
		flags globalFlags
		a     = &app{}
	)

	root := &cobra.Command{
		Use:   "shelf",
		Short: "Browse, track and upload study materials",
		Long: `shelf browses a study-material catalogue organised as
branch → regulation → year → semester → subject → material.

Catalogue reads go through a session cache; visits are ranked in a
durable "frequently accessed" list that survives restarts.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip initialization for help commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "init" {
				return nil
			}
			return a.setup(cmd, flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "config file (default ~/.config/shelf/config.yaml)")
	pf.BoolVar(&flags.ephemeral, "ephemeral", false, "keep access history in memory only")
	pf.StringVar(&flags.apiURL, "api-url", "", "catalogue API base URL (overrides config)")

	root.AddCommand(
		newBranchesCommand(a),
		newRegulationsCommand(a),
		newYearsCommand(a),
		newSemestersCommand(a),
		newSubjectsCommand(a),
		newSubBranchesCommand(a),
		newMaterialsCommand(a),
		newMaterialCommand(a),
		newSubjectCommand(a),
		newRecentCommand(a),
		newSearchCommand(a),
		newFrequentCommand(a),
		newTrackCommand(a),
		newContinueCommand(a),
		newClearCommand(a),
		newCreateCommand(a),
		newUploadCommand(a),
		newBrowseCommand(a),
		newConfigCommand(&flags),
	)
	return root, a
}

// setup is the composition root: config, logging, storage, cache and services
func (a *app) setup(cmd *cobra.Command, flags globalFlags) error {
	cfg, err := adapter.LoadConfig(flags.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if flags.apiURL != "" {
		cfg.API.BaseURL = strings.TrimRight(flags.apiURL, "/")
	}
	if flags.ephemeral {
		cfg.Storage.Backend = store.BackendMemory
	}
	a.cfg = cfg

	logger, logFile, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		a.closers = append(a.closers, logFile)
	}
	slog.SetDefault(logger)
	a.logger = logger

	kv, err := store.Open(store.Options{
		Backend:   cfg.Storage.Backend,
		Dir:       cfg.Storage.Dir,
		ServerURL: cfg.API.BaseURL,
		RedisAddr: cfg.Storage.RedisAddr,
		RedisDB:   cfg.Storage.RedisDB,
		Redis: &store.RedisConfig{
			KeyPrefix:        cfg.Storage.RedisPrefix,
			TTL:              cfg.Storage.RedisTTL,
			OperationTimeout: store.DefaultRedisConfig().OperationTimeout,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Storage.Backend, err)
	}
	a.kv = kv
	a.closers = append(a.closers, kv)

	a.client = api.NewClient(api.Config{
		BaseURL:         cfg.API.BaseURL,
		Timeout:         cfg.API.Timeout,
		MaxRetries:      cfg.API.MaxRetries,
		RetryDelay:      cfg.API.RetryDelay,
		RateLimit:       cfg.API.RateLimit,
		Burst:           cfg.API.Burst,
		BreakerFailures: cfg.API.BreakerFailures,
		BreakerTimeout:  cfg.API.BreakerTimeout,
	}, logger)

	a.state = state.NewStore(logger)
	var opts []catalog.Option
	if cfg.Cache.DedupeInflight {
		opts = append(opts, catalog.WithDedupe())
	}
	a.catalog = catalog.NewService(a.client, a.state, logger, opts...)
	a.queries = catalog.NewQueries(a.state)
	a.tracker = access.NewTracker(kv,
		access.WithLimits(cfg.Tracker.MaxItemsPerType, cfg.Tracker.MaxTotalItems),
		access.WithGroupedLimit(cfg.Tracker.GroupedLimit),
		access.WithLogger(logger),
	)
	a.bookmark = access.NewBookmark(kv, logger)
	a.search = search.NewService(a.state, a.catalog, logger)
	a.launcher = adapter.NewLauncher(cfg.Viewer.Command, cfg.Viewer.Args, logger)
	a.out = newPrinter(cmd.OutOrStdout())

	logger.Info("starting shelf", "command", cmd.CommandPath(), "backend", cfg.Storage.Backend)
	return nil
}

func (a *app) close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tipscan/pkg/buildinfo"
	"github.com/matzehuels/tipscan/pkg/cache"
	"github.com/matzehuels/tipscan/pkg/pipeline"
	"github.com/matzehuels/tipscan/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "tipscan"

	// redisPrefix namespaces tipscan keys in a shared Redis.
	redisPrefix = "tipscan:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Tipscan computes scanning-gate transmission of quantum point contacts",
		Long:         `Tipscan builds tight-binding quantum point contact devices, attaches semi-infinite leads and sweeps the two-terminal transmission over gate parameters.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.sweepCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// backendOpts selects where points are cached and runs are stored.
type backendOpts struct {
	noCache  bool
	redisURL string
	mongoURI string
}

func (b *backendOpts) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&b.noCache, "no-cache", false, "disable the point cache")
	cmd.Flags().StringVar(&b.redisURL, "redis", os.Getenv("TIPSCAN_REDIS_URL"), "cache points in Redis at this URL instead of on disk")
	cmd.Flags().StringVar(&b.mongoURI, "mongo", os.Getenv("TIPSCAN_MONGO_URI"), "store runs in MongoDB at this URI")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, b backendOpts) (*pipeline.Runner, error) {
	ch, err := newCache(ctx, b)
	if err != nil {
		return nil, err
	}
	st := store.NewNullStore()
	if b.mongoURI != "" {
		if st, err = store.NewMongoStore(ctx, b.mongoURI, store.DefaultDatabase); err != nil {
			ch.Close()
			return nil, err
		}
		c.Logger.Debug("storing runs in mongo", "database", store.DefaultDatabase)
	}
	return pipeline.NewRunner(ch, nil, st, c.Logger), nil
}

func newCache(ctx context.Context, b backendOpts) (cache.Cache, error) {
	switch {
	case b.noCache:
		return cache.NewNullCache(), nil
	case b.redisURL != "":
		return cache.NewRedisCache(ctx, b.redisURL, redisPrefix)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/tipscan/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tipscan/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the point cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var redisURL string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop all cached transmission points",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCacheClear(cmd.Context(), redisURL)
		},
	}
	cmd.Flags().StringVar(&redisURL, "redis", os.Getenv("TIPSCAN_REDIS_URL"), "clear the Redis cache at this URL instead of the disk cache")
	return cmd
}

func (c *CLI) runCacheClear(ctx context.Context, redisURL string) error {
	if redisURL == "" {
		dir, err := cacheDir()
		if err != nil {
			return fmt.Errorf("get cache dir: %w", err)
		}
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			printInfo("Cache is empty")
			return nil
		}
	}
	ch, err := newCache(ctx, backendOpts{redisURL: redisURL})
	if err != nil {
		return err
	}
	defer ch.Close()

	clearer, ok := ch.(cache.Clearer)
	if !ok {
		return fmt.Errorf("cache %T cannot be cleared", ch)
	}
	if err := clearer.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	if fc, ok := ch.(*cache.FileCache); ok {
		printSuccess("Cleared cached points")
		printDetail("Directory: %s", fc.Dir())
		return nil
	}
	printSuccess("Cleared cached points in Redis")
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/spherical/mcq-extractor/internal/cache"
	"github.com/spherical/mcq-extractor/internal/domain"
)

// newCacheCmd creates the cache subcommand.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the extraction result cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Drop every cached extraction",
		Long: `Purge removes every cached extraction under the configured key prefix.
Only the redis driver keeps entries across runs; the memory driver starts
empty in every process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := cache.Open(ctx, cfg.Cache)
			if err != nil {
				return domain.CacheError("open cache", err)
			}
			if c == nil {
				return domain.ConfigError("cache is disabled; set cache.driver or REDIS_URL", nil)
			}
			defer c.Close()

			if err := c.Purge(ctx); err != nil {
				return err
			}

			logger.Info().Str("driver", cfg.Cache.Driver).Msg("Purged extraction cache")
			newUI(cmd).Success("Purged %s cache", cfg.Cache.Driver)
			return nil
		},
	})

	return cmd
}

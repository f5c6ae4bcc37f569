package main

import (
	"github.com/spf13/cobra"

	"github.com/spherical/mcq-extractor/internal/domain"
	"github.com/spherical/mcq-extractor/internal/storage"
)

// migrateOutput is the JSON shape of the migrate command.
type migrateOutput struct {
	Driver  string   `json:"driver"`
	Applied []string `json:"applied"`
	Pending []string `json:"pending"`
}

// newMigrateCmd creates the migrate subcommand.
func newMigrateCmd() *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Migrate applies the embedded schema migrations for the configured storage
driver. Use --status to list applied and pending migrations without changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ui := newUI(cmd)

			if cfg.Storage.Driver == "none" {
				return domain.ConfigError("storage is disabled; set storage.driver or DATABASE_URL", nil)
			}

			db, err := storage.Open(ctx, cfg.Storage.Driver, cfg.StorageDSN())
			if err != nil {
				return domain.StorageError("open database", err)
			}
			defer db.Close()

			migrator := storage.NewMigrator(db, cfg.Storage.Driver)
			out := migrateOutput{Driver: cfg.Storage.Driver, Applied: []string{}, Pending: []string{}}

			if !statusOnly {
				applied, err := migrator.Migrate(ctx)
				if err != nil {
					return domain.StorageError("migrate database", err)
				}
				for _, name := range applied {
					ui.Step("Applied %s", name)
				}
				logger.Info().Str("driver", cfg.Storage.Driver).Int("count", len(applied)).Msg("Migrations complete")
			}

			status, err := migrator.Status(ctx)
			if err != nil {
				return domain.StorageError("read migration status", err)
			}
			out.Applied = append(out.Applied, status.Applied...)
			out.Pending = append(out.Pending, status.Pending...)

			if outputJSON {
				return writeOutput(cmd.OutOrStdout(), "", out)
			}

			ui.KeyValue("driver", out.Driver)
			ui.KeyValue("applied", len(out.Applied))
			ui.KeyValue("pending", len(out.Pending))
			if status.UpToDate {
				ui.Success("Database is up to date")
			} else {
				ui.Warning("%d migrations pending", len(out.Pending))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&statusOnly, "status", false, "show migration status without applying")

	return cmd
}

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/spherical/mcq-extractor/internal/bootstrap"
	"github.com/spherical/mcq-extractor/internal/domain"
	"github.com/spherical/mcq-extractor/internal/storage"
)

// newHistoryCmd creates the history subcommand and its children.
func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse stored extractions",
		Long: `History reads extractions saved by the extract and parse commands.
Storage must be enabled with storage.driver or DATABASE_URL.`,
	}

	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryDeleteCmd())

	return cmd
}

// withRepository opens dependencies and hands the repository to fn.
func withRepository(cmd *cobra.Command, fn func(repo *storage.ExtractionRepository) error) error {
	deps, err := bootstrap.Open(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	if deps.Repository == nil {
		return domain.ConfigError("storage is disabled; set storage.driver or DATABASE_URL", nil)
	}
	return fn(deps.Repository)
}

func parseExtractionID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, domain.ValidationError(fmt.Sprintf("invalid extraction id: %s", arg), err)
	}
	return id, nil
}

func newHistoryListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent extractions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, func(repo *storage.ExtractionRepository) error {
				summaries, err := repo.List(cmd.Context(), limit)
				if err != nil {
					return err
				}

				if outputJSON {
					return writeOutput(cmd.OutOrStdout(), "", summaries)
				}

				ui := newUI(cmd)
				if len(summaries) == 0 {
					ui.Info("No extractions stored")
					return nil
				}

				rows := make([][]string, 0, len(summaries))
				for _, s := range summaries {
					rows = append(rows, []string{
						s.ID.String(),
						Truncate(s.Filename, 32),
						strconv.Itoa(s.TotalQuestions),
						strconv.Itoa(s.Rejected),
						s.CreatedAt.Local().Format(time.DateTime),
					})
				}
				ui.Table([]string{"ID", "FILE", "QUESTIONS", "REJECTED", "CREATED"}, rows)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", storage.DefaultListLimit, "maximum number of extractions to list")

	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored extraction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseExtractionID(args[0])
			if err != nil {
				return err
			}

			return withRepository(cmd, func(repo *storage.ExtractionRepository) error {
				ext, err := repo.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), "", ext)
			})
		},
	}
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored extraction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseExtractionID(args[0])
			if err != nil {
				return err
			}

			return withRepository(cmd, func(repo *storage.ExtractionRepository) error {
				if err := repo.Delete(cmd.Context(), id); err != nil {
					return err
				}
				logger.Info().Str("extraction_id", id.String()).Msg("Deleted extraction")
				newUI(cmd).Success("Deleted %s", id)
				return nil
			})
		},
	}
}

// Package main provides the MCQ extractor CLI entrypoint.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/spherical/mcq-extractor/internal/config"
	"github.com/spherical/mcq-extractor/internal/observability"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	verbose    bool
	noColor    bool

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
)

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mcq-extractor",
		Short: "Extract multiple-choice questions from PDF documents",
		Long: `MCQ extractor reads PDF documents and turns numbered multiple-choice
questions into structured records with four option slots and a correct answer.

Use this tool to:
- Extract questions from one or many PDFs
- Parse plain text that is already extracted
- Browse, inspect and delete stored extractions
- Purge the result cache and run database migrations

Mark the correct option by starting its line with '#'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if noColor {
				color.NoColor = true
			}

			level := "warn"
			if verbose {
				level = "debug"
			}
			logFormat := "console"
			if outputJSON {
				logFormat = "json"
			}

			logger = observability.NewLogger(observability.LogConfig{
				Level:       level,
				Format:      logFormat,
				Output:      cmd.ErrOrStderr(),
				ServiceName: "mcq-extractor-cli",
			})

			return nil
		},
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	root.PersistentFlags().BoolVar(&outputJSON, "json", false, "machine-readable mode: JSON logs and no progress output")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	root.AddCommand(newExtractCmd())
	root.AddCommand(newParseCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newUI returns a UI bound to the command's error stream.
func newUI(cmd *cobra.Command) *UI {
	return newUIWriter(cmd.ErrOrStderr(), outputJSON, noColor)
}

// writeOutput writes v as indented JSON to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	data = append(data, '\n')

	if path == "" || path == "-" {
		_, err = w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// newVersionCmd creates the version subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if outputJSON {
				_ = writeOutput(cmd.OutOrStdout(), "", map[string]string{"version": version})
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mcq-extractor v%s\n", version)
		},
	}
}

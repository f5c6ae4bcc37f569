package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/spherical/mcq-extractor/internal/bootstrap"
	"github.com/spherical/mcq-extractor/internal/domain"
)

// newParseCmd creates the parse subcommand.
func newParseCmd() *cobra.Command {
	var (
		output  string
		explain bool
	)

	cmd := &cobra.Command{
		Use:   "parse <file|->",
		Short: "Parse already-extracted text into questions",
		Long: `Parse skips PDF text extraction and runs the block grammar over a plain
text file, or stdin when the argument is '-'.

Use --explain to list every rejected block and the reason it was skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ui := newUI(cmd)

			name, text, err := readText(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			deps, err := bootstrap.Open(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer deps.Close()

			if explain {
				result := deps.Extractor.Extract(ctx, text)
				ui.Info("%d blocks, %d accepted, %d rejected", result.Blocks, result.Total(), len(result.Rejections))
				if len(result.Rejections) > 0 {
					rows := make([][]string, 0, len(result.Rejections))
					for _, r := range result.Rejections {
						rows = append(rows, []string{strconv.Itoa(r.BlockIndex), string(r.Reason), Truncate(r.Header, 48)})
					}
					ui.Table([]string{"BLOCK", "REASON", "HEADER"}, rows)
				}
			}

			ext, err := deps.Service.ProcessText(ctx, name, text, nil)
			if err != nil {
				return err
			}

			return writeOutput(cmd.OutOrStdout(), output, ext.Response())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write JSON result to file (default: stdout)")
	cmd.Flags().BoolVar(&explain, "explain", false, "list rejected blocks")

	return cmd
}

// readText reads arg as a file path, or stdin for "-".
func readText(stdin io.Reader, arg string) (string, string, error) {
	if arg == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", domain.IOError("read stdin", err)
		}
		return "stdin", string(data), nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return "", "", domain.IOError(fmt.Sprintf("read %s", arg), err)
	}
	return filepath.Base(arg), string(data), nil
}

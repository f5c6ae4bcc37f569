package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/spherical/mcq-extractor/internal/bootstrap"
	"github.com/spherical/mcq-extractor/internal/domain"
	"github.com/spherical/mcq-extractor/internal/extract"
)

// fileStages is the number of progress stages per file: read, text, parse.
const fileStages = 3

// fileResult is the outcome of extracting one file.
type fileResult struct {
	File     string                  `json:"file"`
	Result   *domain.ExtractResponse `json:"result,omitempty"`
	Rejected int                     `json:"rejected_blocks"`
	Error    string                  `json:"error,omitempty"`

	duration time.Duration
	err      error
}

// newExtractCmd creates the extract subcommand.
func newExtractCmd() *cobra.Command {
	var (
		output string
		jobs   int
	)

	cmd := &cobra.Command{
		Use:   "extract <pdf>...",
		Short: "Extract multiple-choice questions from PDF files",
		Long: `Extract reads each PDF, pulls its text, and parses numbered question
blocks into records. A single file prints its ExtractResponse; several files
print one entry per file with either a result or an error.

Use --jobs to process several files concurrently.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			ui := newUI(cmd)

			deps, err := bootstrap.Open(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer deps.Close()

			for _, path := range args {
				if err := deps.Validator.ValidatePath(path); err != nil {
					return err
				}
			}

			var results []fileResult
			switch {
			case len(args) == 1:
				results = []fileResult{extractSingle(ctx, ui, deps.Service, args[0])}
			case jobs > 1:
				results = extractConcurrent(ctx, ui, deps.Service, args, jobs)
			default:
				results = extractSequential(ctx, ui, deps.Service, args)
			}

			failed := 0
			for _, r := range results {
				if r.err != nil {
					failed++
					ui.Error("%s: %v", r.File, r.err)
					continue
				}
				ui.Success("%s: %d questions, %d blocks rejected (%s)",
					r.File, r.Result.TotalQuestions, r.Rejected, FormatDuration(r.duration))
			}

			var payload interface{} = results
			if len(results) == 1 {
				if results[0].err != nil {
					return results[0].err
				}
				payload = results[0].Result
			}

			if err := writeOutput(cmd.OutOrStdout(), output, payload); err != nil {
				return err
			}
			if output != "" && output != "-" {
				ui.Info("Wrote %s", output)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write JSON results to file (default: stdout)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 1, "number of files processed concurrently")

	return cmd
}

// processFile reads path and runs it through svc, forwarding service
// events to onEvent when it is non-nil.
func processFile(ctx context.Context, svc *extract.Service, path string, onEvent func(domain.StreamEvent)) fileResult {
	start := time.Now()
	res := fileResult{File: path}

	data, err := os.ReadFile(path)
	if err != nil {
		res.fail(domain.IOError(fmt.Sprintf("read %s", path), err))
		return res
	}

	var (
		eventCh chan domain.StreamEvent
		wg      sync.WaitGroup
	)
	if onEvent != nil {
		eventCh = make(chan domain.StreamEvent, 64)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for evt := range eventCh {
				onEvent(evt)
			}
		}()
	}

	ext, err := svc.Process(ctx, domain.Document{Name: filepath.Base(path), Data: data}, eventCh)
	if eventCh != nil {
		close(eventCh)
		wg.Wait()
	}

	res.duration = time.Since(start)
	if err != nil {
		res.fail(err)
		return res
	}

	resp := ext.Response()
	res.Result = &resp
	res.Rejected = ext.Rejected
	return res
}

func (r *fileResult) fail(err error) {
	r.err = err
	r.Error = err.Error()
}

// eventMessage renders a service event for progress output.
func eventMessage(evt domain.StreamEvent) string {
	switch evt.Type {
	case domain.EventTextExtracted:
		if n, ok := evt.Payload.(int); ok {
			return fmt.Sprintf("Extracted %s of text", FormatBytes(int64(n)))
		}
	case domain.EventBlockRejected:
		return fmt.Sprintf("Block %d rejected: %v", evt.BlockIndex, evt.Payload)
	case domain.EventCacheHit:
		return "Serving cached result"
	}
	if s, ok := evt.Payload.(string); ok && s != "" {
		return s
	}
	return string(evt.Type)
}

// extractSingle processes one file behind a spinner, or with step output in
// verbose mode.
func extractSingle(ctx context.Context, ui *UI, svc *extract.Service, path string) fileResult {
	if verbose {
		return processFile(ctx, svc, path, func(evt domain.StreamEvent) {
			ui.Step("%s", eventMessage(evt))
		})
	}

	spin := ui.Spinner(fmt.Sprintf("Extracting %s", filepath.Base(path)))
	spin.Start()
	defer spin.Stop()

	return processFile(ctx, svc, path, func(evt domain.StreamEvent) {
		if evt.Type != domain.EventBlockRejected {
			spin.UpdateMessage(eventMessage(evt))
		}
	})
}

// extractSequential processes files one at a time behind a single bar.
func extractSequential(ctx context.Context, ui *UI, svc *extract.Service, paths []string) []fileResult {
	bar := ui.ProgressBar(int64(len(paths)), "Extracting")
	defer bar.Finish()

	results := make([]fileResult, 0, len(paths))
	for _, path := range paths {
		if ctx.Err() != nil {
			r := fileResult{File: path}
			r.fail(ctx.Err())
			results = append(results, r)
			continue
		}

		bar.Describe(filepath.Base(path))
		var onEvent func(domain.StreamEvent)
		if verbose {
			onEvent = func(evt domain.StreamEvent) {
				ui.Step("%s: %s", filepath.Base(path), eventMessage(evt))
			}
		}
		results = append(results, processFile(ctx, svc, path, onEvent))
		bar.Add(1)
	}
	return results
}

// extractConcurrent processes up to jobs files at once with one bar per file.
func extractConcurrent(ctx context.Context, ui *UI, svc *extract.Service, paths []string, jobs int) []fileResult {
	progress := ui.MultiProgress()
	results := make([]fileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range paths {
		bar := progress.AddBar(Truncate(filepath.Base(path), 32), fileStages)
		g.Go(func() error {
			bar.Set(1)
			res := processFile(gctx, svc, path, func(evt domain.StreamEvent) {
				switch evt.Type {
				case domain.EventTextExtracted:
					bar.Set(2)
				case domain.EventComplete:
					bar.Complete()
				}
			})
			if res.err != nil {
				bar.Abort()
			} else {
				bar.Complete()
			}
			results[i] = res
			return nil
		})
	}

	_ = g.Wait()
	progress.Wait()
	return results
}

package extract

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spherical/mcq-extractor/internal/domain"
	"github.com/spherical/mcq-extractor/internal/observability"
)

// Config controls how blocks are scheduled.
type Config struct {
	// Workers bounds concurrent block parsing.
	Workers int
	// ParallelThreshold is the block count at which parsing goes parallel.
	// Zero means always parallel.
	ParallelThreshold int
}

// DefaultConfig returns a Config sized for the current machine.
func DefaultConfig() Config {
	return Config{
		Workers:           runtime.NumCPU(),
		ParallelThreshold: 64,
	}
}

// Result is the outcome of one extraction run.
type Result struct {
	Questions  []domain.QuestionRecord
	Rejections []Rejection
	Blocks     int
	// Parsed is the number of blocks actually visited; it is lower than
	// Blocks only when the context was cancelled.
	Parsed int
}

// Total returns the number of accepted questions.
func (r *Result) Total() int {
	return len(r.Questions)
}

// Extractor turns document text into ordered question records.
type Extractor struct {
	cfg    Config
	logger *observability.Logger
}

// NewExtractor creates an extractor. A nil logger discards output.
func NewExtractor(cfg Config, logger *observability.Logger) *Extractor {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return &Extractor{
		cfg:    cfg,
		logger: logger.WithComponent("extractor"),
	}
}

// ExtractQuestions returns every accepted question in document order. It
// never fails; bad blocks are skipped and logged.
func (e *Extractor) ExtractQuestions(text string) []domain.QuestionRecord {
	return e.Extract(context.Background(), text).Questions
}

// Extract runs segmentation and block parsing and reports rejections
// alongside the accepted records.
func (e *Extractor) Extract(ctx context.Context, text string) *Result {
	start := time.Now()
	blocks := SplitBlocks(text)

	outcomes := make([]blockOutcome, len(blocks))
	if len(blocks) >= e.cfg.ParallelThreshold && e.cfg.Workers > 1 {
		e.parseParallel(ctx, blocks, outcomes)
	} else {
		e.parseSequential(ctx, blocks, outcomes)
	}

	result := &Result{
		Questions: make([]domain.QuestionRecord, 0, len(blocks)),
		Blocks:    len(blocks),
	}
	for _, o := range outcomes {
		if !o.done {
			continue
		}
		result.Parsed++
		if o.ok {
			result.Questions = append(result.Questions, o.record)
			continue
		}
		result.Rejections = append(result.Rejections, o.rejection)
		e.logger.Warn().
			Int("block_index", o.rejection.BlockIndex).
			Str("reason", string(o.rejection.Reason)).
			Str("header", o.rejection.Header).
			Msg("Skipping question block")
	}

	if result.Parsed < result.Blocks {
		e.logger.Warn().
			Int("parsed", result.Parsed).
			Int("blocks", result.Blocks).
			Err(ctx.Err()).
			Msg("Extraction cancelled")
	}

	e.logger.Info().
		Int("questions", result.Total()).
		Int("blocks", result.Blocks).
		Int("rejected", len(result.Rejections)).
		Dur("duration", time.Since(start)).
		Msgf("Extracted %d questions", result.Total())

	return result
}

type blockOutcome struct {
	record    domain.QuestionRecord
	rejection Rejection
	ok        bool
	done      bool
}

func parseInto(b domain.QuestionBlock, out *blockOutcome) {
	rec, rej, ok := ParseBlock(b)
	*out = blockOutcome{record: rec, rejection: rej, ok: ok, done: true}
}

func (e *Extractor) parseSequential(ctx context.Context, blocks []domain.QuestionBlock, outcomes []blockOutcome) {
	for i, b := range blocks {
		if ctx.Err() != nil {
			return
		}
		parseInto(b, &outcomes[i])
	}
}

// parseParallel writes each outcome into its block's slot, so collection
// order matches document order regardless of scheduling.
func (e *Extractor) parseParallel(ctx context.Context, blocks []domain.QuestionBlock, outcomes []blockOutcome) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for i, b := range blocks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			parseInto(b, &outcomes[i])
			return nil
		})
	}

	_ = g.Wait()
}

var defaultExtractor = NewExtractor(Config{Workers: 1}, nil)

// ExtractQuestions parses text with a sequential, silent extractor.
func ExtractQuestions(text string) []domain.QuestionRecord {
	return defaultExtractor.ExtractQuestions(text)
}

package extract

import (
	"strings"

	"github.com/spherical/mcq-extractor/internal/domain"
)

// SplitBlocks cuts document text into question blocks. A new block starts
// before every line whose trimmed form begins with digits and a period.
// Runs that contain only whitespace are discarded; blank lines inside a run
// are kept for the block parser to drop.
//
// "1)" style headers are not split points even though ParseBlock accepts
// them as headers, so such a question stays glued to the block before it.
func SplitBlocks(text string) []domain.QuestionBlock {
	text = normalizeNewlines(text)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var (
		blocks  []domain.QuestionBlock
		current []string
		hasText bool
	)

	flush := func() {
		if hasText {
			blocks = append(blocks, domain.QuestionBlock{
				Index: len(blocks),
				Lines: current,
			})
		}
		current = nil
		hasText = false
	}

	for _, line := range strings.Split(text, "\n") {
		if isSplitLine(line) {
			flush()
		}
		current = append(current, line)
		if strings.TrimSpace(line) != "" {
			hasText = true
		}
	}
	flush()

	return blocks
}

func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

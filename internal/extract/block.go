package extract

import (
	"strings"

	"github.com/spherical/mcq-extractor/internal/domain"
)

// RejectReason explains why a block produced no question.
type RejectReason string

const (
	RejectEmpty         RejectReason = "empty_block"
	RejectNoHeader      RejectReason = "no_header"
	RejectTooFewOptions RejectReason = "too_few_options"
	RejectNoAnswer      RejectReason = "no_correct_answer"
)

// Rejection records a block that was dropped.
type Rejection struct {
	BlockIndex int
	Reason     RejectReason
	Header     string
}

// maxHeaderPreview bounds the header text kept on a Rejection for logging.
const maxHeaderPreview = 80

// blockState is the per-block accumulator. Continuation lines go to the
// last option once one exists, to the question content before that.
type blockState struct {
	content string
	options []string
	correct string
}

func (s *blockState) apply(l Line) {
	switch l.Kind {
	case LineMarker:
		// A marker repeating a retained option points at that option.
		if i := s.indexOf(l.Text); i >= 0 {
			s.correct, _ = domain.LetterForIndex(i)
			return
		}
		// Markers past the fourth slot keep the earlier letter.
		if letter, ok := domain.LetterForIndex(len(s.options)); ok && l.Text != "" {
			s.correct = letter
		}
		s.options = append(s.options, l.Text)
	case LineOption:
		s.options = append(s.options, l.Text)
	default:
		if n := len(s.options); n > 0 {
			s.options[n-1] = joinText(s.options[n-1], l.Text)
		} else {
			s.content = joinText(s.content, l.Text)
		}
	}
}

// indexOf returns the slot among the first four holding text, or -1.
func (s *blockState) indexOf(text string) int {
	if text == "" {
		return -1
	}
	for i, opt := range s.options {
		if i >= domain.OptionSlots {
			break
		}
		if opt == text {
			return i
		}
	}
	return -1
}

// populated counts non-empty options among the slots a record retains.
func (s *blockState) populated() int {
	n := 0
	for i, opt := range s.options {
		if i >= domain.OptionSlots {
			break
		}
		if opt != "" {
			n++
		}
	}
	return n
}

func joinText(acc, text string) string {
	if acc == "" {
		return text
	}
	return acc + " " + text
}

// ParseBlock applies the question grammar to one block. It never fails
// hard: a block that is not a complete question yields ok == false and a
// Rejection describing why.
func ParseBlock(block domain.QuestionBlock) (domain.QuestionRecord, Rejection, bool) {
	lines := nonEmptyLines(block.Lines)
	rej := Rejection{BlockIndex: block.Index}

	if len(lines) == 0 {
		rej.Reason = RejectEmpty
		return domain.QuestionRecord{}, rej, false
	}
	rej.Header = preview(lines[0])

	content, ok := headerText(lines[0])
	if !ok {
		rej.Reason = RejectNoHeader
		return domain.QuestionRecord{}, rej, false
	}

	state := &blockState{content: content}
	for _, line := range lines[1:] {
		state.apply(ClassifyLine(line))
	}

	if state.populated() < domain.MinOptions {
		rej.Reason = RejectTooFewOptions
		return domain.QuestionRecord{}, rej, false
	}
	if state.correct == "" {
		rej.Reason = RejectNoAnswer
		return domain.QuestionRecord{}, rej, false
	}

	return domain.NewQuestionRecord(state.content, state.options, state.correct), Rejection{}, true
}

// ParseBlockText parses a raw block string.
func ParseBlockText(text string) (domain.QuestionRecord, bool) {
	rec, _, ok := ParseBlock(domain.QuestionBlock{Lines: strings.Split(normalizeNewlines(text), "\n")})
	return rec, ok
}

func nonEmptyLines(raw []string) []string {
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func preview(s string) string {
	if r := []rune(s); len(r) > maxHeaderPreview {
		return string(r[:maxHeaderPreview]) + "…"
	}
	return s
}

package extract

import (
	"regexp"
	"strings"
)

// LineKind is the grammar class of a line inside a question block, after the header.
type LineKind int

const (
	// LineContinuation extends whichever accumulator is open.
	LineContinuation LineKind = iota
	// LineMarker is a "#" line naming the correct option.
	LineMarker
	// LineOption is a lettered option such as "a) Paris" or "B. Rome".
	LineOption
)

func (k LineKind) String() string {
	switch k {
	case LineMarker:
		return "marker"
	case LineOption:
		return "option"
	default:
		return "continuation"
	}
}

const markerPrefix = "#"

var (
	// splitPattern marks segmentation boundaries. Only a period counts here.
	splitPattern = regexp.MustCompile(`^[0-9]+\.`)
	// headerPattern is the block header grammar; a close-paren is accepted too.
	headerPattern = regexp.MustCompile(`^[0-9]+[.)]\s*(.+)$`)
	// optionStartPattern requires whitespace after the letter marker.
	optionStartPattern = regexp.MustCompile(`^[A-Za-z][.)]\s+`)
	optionTextPattern  = regexp.MustCompile(`^[A-Za-z][.)]\s*(.+)$`)
)

// Line is a classified block line. For markers and options Text holds the
// option text with its letter prefix removed; for continuations it is the
// trimmed line.
type Line struct {
	Kind LineKind
	Text string
}

// ClassifyLine assigns a line to exactly one grammar class: marker first,
// then option, then continuation.
func ClassifyLine(line string) Line {
	line = strings.TrimSpace(line)

	if strings.HasPrefix(line, markerPrefix) {
		rest := strings.TrimSpace(strings.TrimPrefix(line, markerPrefix))
		return Line{Kind: LineMarker, Text: optionText(rest)}
	}

	if optionStartPattern.MatchString(line) {
		return Line{Kind: LineOption, Text: optionText(line)}
	}

	return Line{Kind: LineContinuation, Text: line}
}

// isSplitLine reports whether a raw line starts a new question block.
func isSplitLine(line string) bool {
	return splitPattern.MatchString(strings.TrimSpace(line))
}

// headerText returns the question text following the number on a header line.
func headerText(line string) (string, bool) {
	m := headerPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// optionText strips a leading "a)" / "A." marker when present, so that both
// "# Paris" and "# c) Paris" yield "Paris".
func optionText(s string) string {
	s = strings.TrimSpace(s)
	if m := optionTextPattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

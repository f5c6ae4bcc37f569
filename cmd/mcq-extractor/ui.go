// Package main provides UI utilities for the MCQ extractor CLI.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// UI provides user-friendly output utilities. Human output goes to out so
// stdout stays free for JSON results.
type UI struct {
	out      io.Writer
	noColor  bool
	jsonMode bool
}

// NewUI creates a new UI writing to stderr.
func NewUI(jsonMode, noColor bool) *UI {
	return newUIWriter(os.Stderr, jsonMode, noColor)
}

func newUIWriter(out io.Writer, jsonMode, noColor bool) *UI {
	return &UI{out: out, noColor: noColor, jsonMode: jsonMode}
}

// Interactive reports whether progress animations should be drawn.
func (ui *UI) Interactive() bool {
	return !ui.jsonMode && IsTerminal(ui.out)
}

func (ui *UI) print(attr color.Attribute, symbol, format string, args ...interface{}) {
	if ui.jsonMode {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if ui.noColor {
		fmt.Fprintf(ui.out, "%s %s\n", symbol, msg)
		return
	}
	color.New(attr).Fprintf(ui.out, "%s %s\n", symbol, msg)
}

// Success prints a success message.
func (ui *UI) Success(format string, args ...interface{}) {
	ui.print(color.FgGreen, "✓", format, args...)
}

// Error prints an error message.
func (ui *UI) Error(format string, args ...interface{}) {
	ui.print(color.FgRed, "✗", format, args...)
}

// Warning prints a warning message.
func (ui *UI) Warning(format string, args ...interface{}) {
	ui.print(color.FgYellow, "⚠", format, args...)
}

// Info prints an info message.
func (ui *UI) Info(format string, args ...interface{}) {
	ui.print(color.FgCyan, "ℹ", format, args...)
}

// Step prints a step message.
func (ui *UI) Step(format string, args ...interface{}) {
	ui.print(color.FgBlue, "→", format, args...)
}

// KeyValue prints a key-value pair.
func (ui *UI) KeyValue(key string, value interface{}) {
	if ui.jsonMode {
		return
	}
	if ui.noColor {
		fmt.Fprintf(ui.out, "  %s: %v\n", key, value)
		return
	}
	color.New(color.FgYellow).Fprintf(ui.out, "  %s: ", key)
	fmt.Fprintf(ui.out, "%v\n", value)
}

// Table prints a formatted table.
func (ui *UI) Table(headers []string, rows [][]string) {
	if ui.jsonMode || len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = len([]rune(header))
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len([]rune(cell)) > widths[i] {
				widths[i] = len([]rune(cell))
			}
		}
	}

	border := color.New(color.FgCyan, color.Bold)
	glyphs := map[string]string{"h": "─", "v": "│", "tl": "┌", "tm": "┬", "tr": "┐", "ml": "├", "mm": "┼", "mr": "┤", "bl": "└", "bm": "┴", "br": "┘"}
	if ui.noColor {
		glyphs = map[string]string{"h": "-", "v": "|", "tl": "+", "tm": "+", "tr": "+", "ml": "+", "mm": "+", "mr": "+", "bl": "+", "bm": "+", "br": "+"}
	}
	paint := func(s string) string {
		if ui.noColor {
			return s
		}
		return border.Sprint(s)
	}

	rule := func(left, mid, right string) {
		var b strings.Builder
		b.WriteString(paint(glyphs[left]))
		for i, width := range widths {
			b.WriteString(strings.Repeat(glyphs["h"], width+2))
			if i < len(widths)-1 {
				b.WriteString(paint(glyphs[mid]))
			}
		}
		b.WriteString(paint(glyphs[right]))
		fmt.Fprintln(ui.out, b.String())
	}

	line := func(cells []string, sep string) {
		var b strings.Builder
		b.WriteString(sep)
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			fmt.Fprintf(&b, " %s%s ", cell, strings.Repeat(" ", widths[i]-len([]rune(cell))))
			b.WriteString(sep)
		}
		fmt.Fprintln(ui.out, b.String())
	}

	rule("tl", "tm", "tr")
	line(headers, paint(glyphs["v"]))
	rule("ml", "mm", "mr")
	for _, row := range rows {
		line(row, glyphs["v"])
	}
	rule("bl", "bm", "br")
}

// Spinner wraps a spinner for a single indeterminate job.
type Spinner struct {
	spinner *spinner.Spinner
}

// Spinner returns a spinner with the given message, or nil when output is
// not interactive.
func (ui *UI) Spinner(message string) *Spinner {
	if !ui.Interactive() {
		return nil
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = ui.out
	return &Spinner{spinner: s}
}

// Start starts the spinner animation.
func (s *Spinner) Start() {
	if s != nil {
		s.spinner.Start()
	}
}

// Stop stops the spinner animation and clears the line.
func (s *Spinner) Stop() {
	if s != nil {
		s.spinner.Stop()
	}
}

// UpdateMessage updates the spinner's message.
func (s *Spinner) UpdateMessage(message string) {
	if s != nil {
		s.spinner.Lock()
		s.spinner.Suffix = " " + message
		s.spinner.Unlock()
	}
}

// ProgressBar wraps a progressbar for sequential work over a known count.
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// ProgressBar returns a bar over total items, or nil when output is not
// interactive.
func (ui *UI) ProgressBar(total int64, description string) *ProgressBar {
	if !ui.Interactive() {
		return nil
	}
	out := ui.out
	bar := progressbar.NewOptions64(
		total,
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
		progressbar.OptionEnableColorCodes(!ui.noColor),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &ProgressBar{bar: bar}
}

// Add advances the bar by n.
func (p *ProgressBar) Add(n int) {
	if p != nil {
		_ = p.bar.Add(n)
	}
}

// Describe changes the bar description.
func (p *ProgressBar) Describe(description string) {
	if p != nil {
		p.bar.Describe(description)
	}
}

// Finish completes the progress bar.
func (p *ProgressBar) Finish() {
	if p != nil {
		_ = p.bar.Finish()
	}
}

// MultiProgress renders one bar per concurrent job.
type MultiProgress struct {
	progress *mpb.Progress
}

// MultiProgress returns a container for per-job bars, or nil when output is
// not interactive.
func (ui *UI) MultiProgress() *MultiProgress {
	if !ui.Interactive() {
		return nil
	}
	return &MultiProgress{progress: mpb.New(mpb.WithWidth(64), mpb.WithOutput(ui.out))}
}

// AddBar adds a bar named name with total stages. It returns nil on a nil
// MultiProgress.
func (m *MultiProgress) AddBar(name string, total int64) *StageBar {
	if m == nil {
		return nil
	}
	bar := m.progress.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DSyncSpaceR}),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.OnAbort(
				decor.OnComplete(decor.Percentage(decor.WC{W: 5}), " done"),
				" failed",
			),
			decor.Elapsed(decor.ET_STYLE_GO, decor.WC{W: 12}),
		),
	)
	return &StageBar{bar: bar, total: total}
}

// Wait blocks until every bar has completed or aborted.
func (m *MultiProgress) Wait() {
	if m != nil {
		m.progress.Wait()
	}
}

// StageBar is a nil-safe handle on one mpb bar.
type StageBar struct {
	bar   *mpb.Bar
	total int64
}

// Set moves the bar to stage n.
func (s *StageBar) Set(n int64) {
	if s != nil {
		s.bar.SetCurrent(n)
	}
}

// Complete fills the bar.
func (s *StageBar) Complete() {
	if s != nil {
		s.bar.SetCurrent(s.total)
	}
}

// Abort marks the bar as failed and keeps it on screen.
func (s *StageBar) Abort() {
	if s != nil {
		s.bar.Abort(false)
	}
}

// FormatDuration formats a duration in a human-readable way.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}

// FormatBytes formats bytes in a human-readable way.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// IsTerminal checks if w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

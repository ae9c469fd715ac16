// Package output renders trace text to the screen and an optional
// capture file, tracking the column so long lines can be wrapped.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"pnmptrace/internal/config"
)

const (
	// Margin starts an indented line for the layers above AX25.
	Margin = "\n    "

	// WrapColumn is where a wrapped continuation line resumes.
	WrapColumn = 8

	wrapIndent = "\n        "
)

// Writer fans trace text out to the screen and capture file. It owns
// the only mutable output state: the current column and the sinks.
type Writer struct {
	screen   io.Writer
	capture  io.Writer
	warnings io.Writer
	display  config.DisplayConfig

	col int
	err error
}

// New returns a Writer. capture may be nil. With Quiet set no trace
// text is written to screen, though warnings still are; the capture
// file always gets a copy of the trace.
func New(screen, capture io.Writer, display config.DisplayConfig) *Writer {
	w := &Writer{screen: screen, capture: capture, warnings: screen, display: display}
	if display.Quiet {
		w.screen = nil
	}
	return w
}

// WriteString writes s to every sink and returns its display width.
func (w *Writer) WriteString(s string) int {
	if s == "" {
		return 0
	}
	if w.capture != nil {
		w.write(w.capture, s)
	}
	if w.screen != nil {
		w.write(w.screen, s)
	}

	n := runewidth.StringWidth(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		w.col = runewidth.StringWidth(s[i+1:])
	} else {
		w.col += n
	}
	return n
}

// Printf formats according to format and writes the result.
func (w *Writer) Printf(format string, args ...any) int {
	return w.WriteString(fmt.Sprintf(format, args...))
}

// Column is the display column of the next character.
func (w *Writer) Column() int {
	return w.col
}

// Width is the configured display width.
func (w *Writer) Width() int {
	return w.display.Width
}

// Wrap starts an indented continuation line and returns its column.
func (w *Writer) Wrap() int {
	w.WriteString(wrapIndent)
	return w.col
}

// Fit wraps first if n more columns would reach the display width.
func (w *Writer) Fit(n int) {
	if w.col+n >= w.display.Width {
		w.Wrap()
	}
}

// Warn writes a diagnostic line to the screen, even when quiet. It is
// never captured.
func (w *Writer) Warn(msg string) {
	if w.warnings != nil {
		w.write(w.warnings, msg+"\n")
	}
}

// Err returns the first write error seen on any sink.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) write(dst io.Writer, s string) {
	if _, err := io.WriteString(dst, s); err != nil && w.err == nil {
		w.err = fmt.Errorf("write trace: %w", err)
	}
}

// Package progress renders a single-line progress bar that redraws in place.
package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// DefaultWidth is the number of cells in the bar.
const DefaultWidth = 30

// Line redraws one status line with a ratio bar.
type Line struct {
	mu       sync.Mutex
	writer   io.Writer
	width    int
	lastLen  int
	inPlace  bool
	lastLine string
}

// NewLine creates a line renderer. When inPlace is false every render is
// written on its own line and identical consecutive lines are skipped.
func NewLine(w io.Writer, inPlace bool) *Line {
	return &Line{writer: w, width: DefaultWidth, inPlace: inPlace}
}

// SetWidth changes the number of bar cells.
func (l *Line) SetWidth(width int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if width > 0 {
		l.width = width
	}
}

// Bar returns a bar of width cells filled to ratio, clamped to [0,1].
func Bar(ratio float64, width int) string {
	if ratio < 0 || ratio != ratio {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(float64(width) * ratio)
	return strings.Repeat("=", filled) + strings.Repeat(" ", width-filled)
}

// Render draws "label [bar] pct% message".
func (l *Line) Render(label string, ratio float64, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pct := ratio * 100
	if pct < 0 {
		pct = 0
	}
	line := fmt.Sprintf("%s [%s] %3.0f%%", label, Bar(ratio, l.width), pct)
	if message != "" {
		line += " " + message
	}

	if !l.inPlace {
		if line == l.lastLine {
			return
		}
		l.lastLine = line
		fmt.Fprintln(l.writer, line)
		return
	}

	clear := "\r"
	if l.lastLen > 0 {
		clear = "\r" + strings.Repeat(" ", l.lastLen) + "\r"
	}
	fmt.Fprint(l.writer, clear+line)
	l.lastLen = len(line)
}

// Done ends an in-place line with a newline.
func (l *Line) Done() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inPlace && l.lastLen > 0 {
		fmt.Fprintln(l.writer)
	}
	l.lastLen = 0
	l.lastLine = ""
}

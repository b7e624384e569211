// Package display renders the timer to a terminal: an mpb progress bar on
// interactive terminals, a plain line renderer otherwise, and a confetti
// strip on completion.
package display

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/eggtimer-project/eggtimer/internal/engine"
	"github.com/eggtimer-project/eggtimer/internal/notify"
	"github.com/eggtimer-project/eggtimer/pkg/color"
	"github.com/eggtimer-project/eggtimer/pkg/progress"
)

// ConfettiWidth is the width of the confetti strip in cells.
const ConfettiWidth = 40

// Surface is everything the run command draws on.
type Surface interface {
	engine.Display
	notify.Surface
	SetNote(text string)
	Close()
}

// scene holds what is drawn next to the bar.
type scene struct {
	mu       sync.Mutex
	view     engine.View
	note     string
	confetti *Confetti
}

func (s *scene) setView(v engine.View) {
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
}

func (s *scene) snapshot() (engine.View, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view, s.note
}

func (s *scene) Spawn(p notify.Particle) { s.confetti.Spawn(p) }
func (s *scene) Remove(id int)           { s.confetti.Remove(id) }

func (s *scene) SetNote(text string) {
	s.mu.Lock()
	s.note = text
	s.mu.Unlock()
}

// Headline formats the clock and state badge.
func Headline(v engine.View) string {
	label := v.Label
	if label == "" {
		label = "egg"
	}
	return fmt.Sprintf("%s %s %s", color.Boldf(v.Time), color.Dim(label), stateBadge(v.State))
}

func stateBadge(s engine.State) string {
	switch s {
	case engine.Running:
		return color.Info("[boiling]")
	case engine.Paused:
		return color.Warning("[paused]")
	case engine.Finished:
		return color.Success("[done]")
	default:
		return color.Dim("[ready]")
	}
}

// Footer formats the status line, the confetti strip and the note.
func Footer(v engine.View, note, strip string) string {
	parts := []string{v.Status}
	if strip != "" {
		parts = append(parts, strip)
	}
	if note != "" {
		parts = append(parts, color.Dim("note: "+note))
	}
	return strings.Join(parts, "  ")
}

// Bar draws an mpb progress bar whose fill tracks progress.
type Bar struct {
	scene
	p   *mpb.Progress
	bar *mpb.Bar
}

// barResolution is the bar total; progress is scaled onto it.
const barResolution = 1000

// NewBar creates a bar display writing to w.
func NewBar(w io.Writer, refresh time.Duration) *Bar {
	if refresh <= 0 {
		refresh = 100 * time.Millisecond
	}
	b := &Bar{}
	b.confetti = NewConfetti(nil)
	b.p = mpb.New(
		mpb.WithOutput(w),
		mpb.WithWidth(48),
		mpb.WithRefreshRate(refresh),
		mpb.WithAutoRefresh(),
	)
	style := mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟")
	b.bar = b.p.New(0, style,
		mpb.PrependDecorators(
			decor.Any(func(decor.Statistics) string {
				v, _ := b.snapshot()
				return Headline(v) + " "
			}),
		),
		mpb.AppendDecorators(
			decor.Any(func(decor.Statistics) string {
				v, note := b.snapshot()
				return " " + Footer(v, note, b.confetti.Strip(ConfettiWidth))
			}),
		),
	)
	// A zero-total bar with a manual total never completes on its own.
	b.bar.SetTotal(barResolution, false)
	return b
}

// Render implements engine.Display.
func (b *Bar) Render(v engine.View) {
	b.setView(v)
	b.bar.SetCurrent(int64(v.Progress * barResolution))
}

// Close stops the refresh goroutine.
func (b *Bar) Close() {
	b.bar.Abort(false)
	b.p.Wait()
}

// Plain writes one line per visible change, for pipes and dumb terminals.
type Plain struct {
	scene
	line *progress.Line
}

// NewPlain creates a plain display. With inPlace set the line is redrawn
// with carriage returns.
func NewPlain(w io.Writer, inPlace bool) *Plain {
	p := &Plain{line: progress.NewLine(w, inPlace)}
	p.confetti = NewConfetti(nil)
	return p
}

// Render implements engine.Display.
func (p *Plain) Render(v engine.View) {
	p.setView(v)
	p.draw()
}

func (p *Plain) draw() {
	v, note := p.snapshot()
	p.line.Render(v.Time, v.Progress, Footer(v, note, ""))
}

// Close ends the current line.
func (p *Plain) Close() {
	p.line.Done()
}

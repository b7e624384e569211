// Package engine implements the countdown state machine behind the egg timer.
//
// An Engine is driven by an injected FrameClock. While Running it requests one
// frame at a time; each frame recomputes the remaining time from the anchor
// captured on the first frame after start, so irregular frame delivery never
// accumulates drift. The Engine is not safe for concurrent use: every method
// and every frame callback must run on the same goroutine (the event loop).
package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/eggtimer-project/eggtimer/pkg/errclass"
)

// FinishSlack absorbs frame jitter: a run whose remaining time drops to or
// below this value finishes on the current frame.
const FinishSlack = 100 * time.Millisecond

// Status messages published with each transition.
const (
	StatusReady   = "Ready to bubble!"
	StatusPreset  = "Preset locked in!"
	StatusCustom  = "Custom time ready."
	StatusRunning = "Boiling in progress…"
	StatusPaused  = "Paused. Pop me back when ready."
	StatusReset   = "Reset and waiting!"
	StatusDone    = "Egg-cellent! Time to scoop."
)

// State is the run state of the timer.
type State int

const (
	Idle State = iota
	Running
	Paused
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// FrameID identifies a requested frame. Zero means no frame.
type FrameID uint64

// FrameClock delivers per-frame callbacks carrying the frame timestamp.
type FrameClock interface {
	RequestFrame(fn func(now time.Time)) FrameID
	CancelFrame(id FrameID)
}

// Display receives every published view.
type Display interface {
	Render(View)
}

// Notifier is told when a run finishes and when any chime must stop.
type Notifier interface {
	Fire()
	Cancel()
}

// Controls reports which control intents are currently accepted.
type Controls struct {
	Start bool `json:"start"`
	Pause bool `json:"pause"`
	Reset bool `json:"reset"`
}

// View is the snapshot handed to the display surface.
type View struct {
	Time      string        `json:"time"`
	Progress  float64       `json:"progress"`
	Status    string        `json:"status"`
	State     State         `json:"state"`
	Label     string        `json:"label,omitempty"`
	Remaining time.Duration `json:"remaining"`
	Total     time.Duration `json:"total"`
	Controls  Controls      `json:"controls"`
}

// Event names a transition reported to the observer.
type Event string

const (
	EventSelected Event = "selected"
	EventStarted  Event = "started"
	EventPaused   Event = "paused"
	EventReset    Event = "reset"
	EventFinished Event = "finished"
)

// Transition describes one observed state change.
type Transition struct {
	Event   Event
	From    State
	To      State
	Label   string
	Total   time.Duration
	Elapsed time.Duration
}

// Engine is the timer state machine.
type Engine struct {
	clock    FrameClock
	display  Display
	notifier Notifier
	observer func(Transition)

	total     time.Duration
	remaining time.Duration
	offset    time.Duration
	anchor    time.Time
	anchored  bool
	frame     FrameID

	state  State
	label  string
	status string
}

// New creates an idle engine with no duration selected.
// A nil notifier disables completion effects.
func New(clock FrameClock, display Display, notifier Notifier) *Engine {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Engine{
		clock:    clock,
		display:  display,
		notifier: notifier,
		status:   StatusReady,
	}
}

// SetObserver registers a callback for transitions. Nil removes it.
func (e *Engine) SetObserver(fn func(Transition)) {
	e.observer = fn
}

// Select installs a new duration, forcing Idle from any state.
func (e *Engine) Select(total time.Duration, label, status string) error {
	if total <= 0 {
		return errclass.ErrDurationInvalid.WithMessagef("duration must be positive, got %s", total)
	}
	from := e.state
	e.cancelFrame()
	e.notifier.Cancel()

	e.total = total
	e.remaining = total
	e.offset = 0
	e.anchored = false
	e.state = Idle
	e.label = label
	e.status = status

	e.observe(EventSelected, from, 0)
	e.publish()
	return nil
}

// SelectPreset installs a named preset duration.
func (e *Engine) SelectPreset(label string, total time.Duration) error {
	return e.Select(total, label, StatusPreset)
}

// SelectCustom installs a custom duration.
func (e *Engine) SelectCustom(total time.Duration) error {
	return e.Select(total, "custom", StatusCustom)
}

// Start begins or resumes a run. It is a no-op while Running or before a
// duration is selected. A finished run restarts from the full duration.
func (e *Engine) Start() {
	if e.state == Running || e.total <= 0 {
		return
	}
	from := e.state
	if e.remaining <= 0 {
		e.remaining = e.total
	}
	e.offset = e.total - e.remaining
	e.notifier.Cancel()

	e.state = Running
	e.anchored = false
	e.status = StatusRunning
	e.requestFrame()

	e.observe(EventStarted, from, e.offset)
	e.publish()
}

// Pause freezes a running timer, banking the elapsed time.
func (e *Engine) Pause() {
	if e.state != Running {
		return
	}
	e.cancelFrame()
	e.offset = e.total - e.remaining
	e.state = Paused
	e.status = StatusPaused

	e.observe(EventPaused, Running, e.offset)
	e.publish()
}

// Reset returns to Idle with the full duration from any state.
func (e *Engine) Reset() {
	from := e.state
	elapsed := e.total - e.remaining
	e.cancelFrame()
	e.notifier.Cancel()

	e.offset = 0
	e.remaining = e.total
	e.anchored = false
	e.state = Idle
	e.status = StatusReset

	e.observe(EventReset, from, elapsed)
	e.publish()
}

// OnTick advances a running timer to now. The first tick after Start anchors
// the run, so its elapsed delta is zero.
func (e *Engine) OnTick(now time.Time) {
	if e.state != Running {
		return
	}
	if !e.anchored {
		e.anchor = now
		e.anchored = true
	}

	segment := now.Sub(e.anchor)
	if segment < 0 {
		segment = 0
	}
	remaining := e.total - (e.offset + segment)
	if remaining < 0 {
		remaining = 0
	}
	if remaining < e.remaining {
		e.remaining = remaining
	}

	if e.remaining <= FinishSlack {
		e.finish()
		return
	}
	e.publish()
	e.requestFrame()
}

func (e *Engine) finish() {
	e.cancelFrame()
	e.remaining = 0
	e.state = Finished
	e.status = StatusDone

	e.observe(EventFinished, Running, e.total)
	e.publish()
	e.notifier.Fire()
}

func (e *Engine) requestFrame() {
	if e.frame != 0 {
		return
	}
	var id FrameID
	id = e.clock.RequestFrame(func(now time.Time) {
		if e.frame == id {
			e.frame = 0
		}
		e.OnTick(now)
	})
	e.frame = id
}

func (e *Engine) cancelFrame() {
	if e.frame == 0 {
		return
	}
	e.clock.CancelFrame(e.frame)
	e.frame = 0
}

func (e *Engine) observe(ev Event, from State, elapsed time.Duration) {
	if e.observer == nil {
		return
	}
	e.observer(Transition{
		Event:   ev,
		From:    from,
		To:      e.state,
		Label:   e.label,
		Total:   e.total,
		Elapsed: elapsed,
	})
}

func (e *Engine) publish() {
	if e.display != nil {
		e.display.Render(e.View())
	}
}

// State returns the current run state.
func (e *Engine) State() State { return e.state }

// Total returns the selected duration.
func (e *Engine) Total() time.Duration { return e.total }

// Remaining returns the remaining duration as of the last frame.
func (e *Engine) Remaining() time.Duration { return e.remaining }

// PausedOffset returns the elapsed time banked across pauses.
func (e *Engine) PausedOffset() time.Duration { return e.offset }

// FramePending reports whether a frame is currently requested.
func (e *Engine) FramePending() bool { return e.frame != 0 }

// Progress returns 0 at the start of a run and 1 when complete.
func (e *Engine) Progress() float64 {
	if e.total <= 0 {
		return 0
	}
	return 1 - float64(e.remaining)/float64(e.total)
}

// Controls reports which intents are currently accepted.
func (e *Engine) Controls() Controls {
	return Controls{
		Start: e.state != Running,
		Pause: e.state == Running,
		Reset: e.remaining < e.total,
	}
}

// View returns the current display snapshot.
func (e *Engine) View() View {
	return View{
		Time:      FormatClock(e.remaining),
		Progress:  e.Progress(),
		Status:    e.status,
		State:     e.state,
		Label:     e.label,
		Remaining: e.remaining,
		Total:     e.total,
		Controls:  e.Controls(),
	}
}

// FormatClock renders d as MM:SS, truncating each unit toward zero.
// Minutes are not capped at two digits.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := d.Seconds()
	mins := math.Floor(secs / 60)
	rest := math.Floor(math.Mod(secs, 60))
	return fmt.Sprintf("%02d:%02d", int64(mins), int64(rest))
}

type nopNotifier struct{}

func (nopNotifier) Fire()   {}
func (nopNotifier) Cancel() {}

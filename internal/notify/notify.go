// Package notify runs the completion effects of a finished timer: the
// confetti celebration, the repeating chime and haptic feedback.
//
// A Notifier is driven from the event loop goroutine. Every effect is gated
// by a preference that is read at the moment it is needed, so toggles
// changed mid-run take effect without re-creating the Notifier.
package notify

import (
	"math/rand/v2"
	"time"

	"github.com/eggtimer-project/eggtimer/pkg/logging"
)

// Timing of the completion effects.
const (
	ChimeInterval    = 4500 * time.Millisecond
	ParticleLifetime = 2500 * time.Millisecond
	ParticleCount    = 24
	MaxParticleDelay = 200 * time.Millisecond
)

// Palette is cycled across particles in spawn order.
var Palette = []string{"#ff9ec4", "#ffd685", "#b4f2d3", "#c8c6ff"}

// VibrationPattern alternates on and off pulses, starting with on.
var VibrationPattern = []time.Duration{
	80 * time.Millisecond,
	30 * time.Millisecond,
	80 * time.Millisecond,
	30 * time.Millisecond,
	120 * time.Millisecond,
}

// Task is a handle to scheduled work.
type Task interface {
	Cancel()
}

// Scheduler runs callbacks on the event loop after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Task
	Every(d time.Duration, fn func()) Task
}

// Effect names a user-toggleable completion effect.
type Effect string

const (
	Sound       Effect = "sound"
	Vibration   Effect = "vibration"
	Celebration Effect = "celebration"
)

// Prefs reports whether an effect is currently enabled.
type Prefs interface {
	Enabled(Effect) bool
}

// PrefsFunc adapts a function to Prefs.
type PrefsFunc func(Effect) bool

func (f PrefsFunc) Enabled(e Effect) bool { return f(e) }

// Chimer plays one complete chime.
type Chimer interface {
	Chime()
}

// Vibrator drives a haptic pattern.
type Vibrator interface {
	Supported() bool
	Vibrate(pattern []time.Duration)
}

// Particle is one piece of confetti.
type Particle struct {
	ID       int           `json:"id"`
	Left     float64       `json:"left"`
	Color    string        `json:"color"`
	Delay    time.Duration `json:"delay"`
	Rotation float64       `json:"rotation"`
}

// Surface shows and removes confetti.
type Surface interface {
	Spawn(Particle)
	Remove(id int)
}

// Rand is the source of random particle attributes.
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Options configures a Notifier. Scheduler is required; a nil Chimer,
// Vibrator or Surface disables that effect.
type Options struct {
	Scheduler Scheduler
	Prefs     Prefs
	Chimer    Chimer
	Vibrator  Vibrator
	Surface   Surface
	Rand      Rand
	Logger    *logging.Logger
}

// Notifier implements engine.Notifier.
type Notifier struct {
	sched    Scheduler
	prefs    Prefs
	chimer   Chimer
	vibrator Vibrator
	surface  Surface
	rand     Rand
	log      *logging.Logger

	loop    Task
	fired   int
	chimes  int
	pieceID int
}

// New creates a Notifier.
func New(opts Options) *Notifier {
	n := &Notifier{
		sched:    opts.Scheduler,
		prefs:    opts.Prefs,
		chimer:   opts.Chimer,
		vibrator: opts.Vibrator,
		surface:  opts.Surface,
		rand:     opts.Rand,
		log:      opts.Logger,
	}
	if n.prefs == nil {
		n.prefs = PrefsFunc(func(Effect) bool { return true })
	}
	if n.rand == nil {
		n.rand = globalRand{}
	}
	if n.log == nil {
		n.log = logging.Global()
	}
	return n
}

// Fire runs every enabled completion effect.
func (n *Notifier) Fire() {
	n.fired++
	n.log.Debug("completion fired", map[string]any{"count": n.fired})

	if n.surface != nil && n.prefs.Enabled(Celebration) {
		n.celebrate()
	}
	if n.chimer != nil && n.prefs.Enabled(Sound) {
		n.startChimeLoop()
	}
	if n.vibrator != nil && n.prefs.Enabled(Vibration) && n.vibrator.Supported() {
		n.vibrator.Vibrate(VibrationPattern)
	}
}

// Cancel stops the chime loop. Confetti keeps its own removal schedule.
func (n *Notifier) Cancel() {
	n.stopChimeLoop()
}

// Fired returns how many times Fire has run.
func (n *Notifier) Fired() int { return n.fired }

// Chimes returns how many chimes have been played.
func (n *Notifier) Chimes() int { return n.chimes }

// ChimeActive reports whether the chime loop is scheduled.
func (n *Notifier) ChimeActive() bool { return n.loop != nil }

func (n *Notifier) startChimeLoop() {
	n.stopChimeLoop()
	n.playChime()

	var task Task
	task = n.sched.Every(ChimeInterval, func() {
		if n.loop != task {
			return
		}
		if !n.prefs.Enabled(Sound) {
			n.log.Debug("chime loop stopped, sound disabled")
			n.stopChimeLoop()
			return
		}
		n.playChime()
	})
	n.loop = task
}

func (n *Notifier) stopChimeLoop() {
	if n.loop == nil {
		return
	}
	n.loop.Cancel()
	n.loop = nil
}

func (n *Notifier) playChime() {
	n.chimes++
	n.chimer.Chime()
}

func (n *Notifier) celebrate() {
	for i := 0; i < ParticleCount; i++ {
		n.pieceID++
		p := Particle{
			ID:       n.pieceID,
			Left:     n.rand.Float64() * 100,
			Color:    Palette[i%len(Palette)],
			Delay:    time.Duration(n.rand.Float64() * float64(MaxParticleDelay)),
			Rotation: n.rand.Float64() * 360,
		}
		n.surface.Spawn(p)
		id := p.ID
		n.sched.AfterFunc(ParticleLifetime, func() {
			n.surface.Remove(id)
		})
	}
}

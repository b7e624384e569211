// Package loop hosts the timer on a single-goroutine event loop.
//
// Frames for the engine are go-eventloop JS timeouts. The notifier's longer
// timeouts and intervals are kept by runtime timers that submit their
// callbacks to the loop. Every callback runs on the loop goroutine; other
// goroutines hand work over with Submit.
package loop

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	eventloop "github.com/joeycumines/go-eventloop"

	"github.com/eggtimer-project/eggtimer/internal/engine"
	"github.com/eggtimer-project/eggtimer/internal/notify"
	"github.com/eggtimer-project/eggtimer/pkg/logging"
)

// DefaultFrameInterval is roughly one display refresh at 60 Hz.
const DefaultFrameInterval = 16 * time.Millisecond

// Option configures a Loop.
type Option func(*Loop)

// WithFrameInterval overrides the spacing between frames.
func WithFrameInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.frameInterval = d
		}
	}
}

// WithLogger sets the logger for scheduling failures.
func WithLogger(log *logging.Logger) Option {
	return func(l *Loop) { l.log = log }
}

// Loop wraps an event loop and its JS timer adapter.
type Loop struct {
	loop *eventloop.Loop
	js   *eventloop.JS
	log  *logging.Logger
	now  func() time.Time

	frameInterval time.Duration

	mu     sync.Mutex
	frames map[engine.FrameID]uint64
	nextID engine.FrameID
}

// New creates an event loop. Call Run to start processing.
func New(opts ...Option) (*Loop, error) {
	el, err := eventloop.New()
	if err != nil {
		return nil, fmt.Errorf("create event loop: %w", err)
	}
	js, err := eventloop.NewJS(el)
	if err != nil {
		return nil, fmt.Errorf("create timer adapter: %w", err)
	}
	l := &Loop{
		loop:          el,
		js:            js,
		log:           logging.Global(),
		now:           time.Now,
		frameInterval: DefaultFrameInterval,
		frames:        make(map[engine.FrameID]uint64),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Run processes callbacks until ctx is done or Shutdown is called.
func (l *Loop) Run(ctx context.Context) error {
	return l.loop.Run(ctx)
}

// Shutdown drains queued work and stops the loop.
func (l *Loop) Shutdown(ctx context.Context) error {
	return l.loop.Shutdown(ctx)
}

// Submit schedules fn to run on the loop goroutine as soon as possible.
// It is safe to call from any goroutine.
func (l *Loop) Submit(fn func()) error {
	if err := l.loop.Submit(fn); err != nil {
		return fmt.Errorf("submit to event loop: %w", err)
	}
	return nil
}

// RequestFrame implements engine.FrameClock. The callback receives the wall
// time at which the frame ran.
func (l *Loop) RequestFrame(fn func(now time.Time)) engine.FrameID {
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.frames[id] = 0
	l.mu.Unlock()

	timerID, err := l.js.SetTimeout(func() {
		l.mu.Lock()
		_, live := l.frames[id]
		delete(l.frames, id)
		l.mu.Unlock()
		if live {
			fn(l.now())
		}
	}, int(l.frameInterval/time.Millisecond))
	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		delete(l.frames, id)
		l.log.WarnErr("frame request failed", err)
		return 0
	}
	if _, live := l.frames[id]; live {
		l.frames[id] = timerID
	}
	return id
}

// CancelFrame implements engine.FrameClock.
func (l *Loop) CancelFrame(id engine.FrameID) {
	l.mu.Lock()
	timerID, ok := l.frames[id]
	delete(l.frames, id)
	l.mu.Unlock()
	if ok && timerID != 0 {
		_ = l.js.ClearTimeout(timerID)
	}
}

// AfterFunc implements notify.Scheduler. The delay is kept by a runtime
// timer and fn is submitted to the loop when it expires, so the callback
// fires even while the loop has nothing else to do.
func (l *Loop) AfterFunc(d time.Duration, fn func()) notify.Task {
	t := &task{}
	t.timer = time.AfterFunc(d, func() { l.deliver(t, fn) })
	return t
}

// Every implements notify.Scheduler. Ticks that arrive after Cancel are
// dropped on the loop, so canceling from the loop goroutine, including
// from fn itself, guarantees no further call.
func (l *Loop) Every(d time.Duration, fn func()) notify.Task {
	if d <= 0 {
		d = time.Millisecond
	}
	t := &task{stop: make(chan struct{})}
	ticker := time.NewTicker(d)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.deliver(t, fn)
			case <-t.stop:
				return
			}
		}
	}()
	return t
}

func (l *Loop) deliver(t *task, fn func()) {
	if t.canceled.Load() {
		return
	}
	err := l.loop.Submit(func() {
		if !t.canceled.Load() {
			fn()
		}
	})
	if err != nil {
		l.log.Debug("scheduled callback dropped", map[string]any{"error": err.Error()})
	}
}

type task struct {
	canceled atomic.Bool
	timer    *time.Timer
	stop     chan struct{}
	once     sync.Once
}

func (t *task) Cancel() {
	t.once.Do(func() {
		t.canceled.Store(true)
		if t.timer != nil {
			t.timer.Stop()
		}
		if t.stop != nil {
			close(t.stop)
		}
	})
}

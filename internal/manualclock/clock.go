// Package manualclock provides a deterministic clock for tests. It delivers
// frames and timers only when Advance is called.
package manualclock

import (
	"sort"
	"time"

	"github.com/eggtimer-project/eggtimer/internal/engine"
	"github.com/eggtimer-project/eggtimer/internal/notify"
)

// FrameInterval is the spacing between delivered frames.
const FrameInterval = 16 * time.Millisecond

type timer struct {
	id       uint64
	due      time.Time
	interval time.Duration
	fn       func()
	canceled bool
}

// Clock is a manual frame clock and scheduler.
type Clock struct {
	now       time.Time
	nextID    uint64
	nextFrame time.Time
	frames    map[engine.FrameID]func(time.Time)
	timers    map[uint64]*timer
}

// New creates a clock starting at start.
func New(start time.Time) *Clock {
	return &Clock{
		now:       start,
		nextFrame: start.Add(FrameInterval),
		frames:    make(map[engine.FrameID]func(time.Time)),
		timers:    make(map[uint64]*timer),
	}
}

// Now returns the current manual time.
func (c *Clock) Now() time.Time { return c.now }

// RequestFrame implements engine.FrameClock.
func (c *Clock) RequestFrame(fn func(now time.Time)) engine.FrameID {
	c.nextID++
	id := engine.FrameID(c.nextID)
	c.frames[id] = fn
	return id
}

// CancelFrame implements engine.FrameClock.
func (c *Clock) CancelFrame(id engine.FrameID) {
	delete(c.frames, id)
}

// AfterFunc implements notify.Scheduler.
func (c *Clock) AfterFunc(d time.Duration, fn func()) notify.Task {
	return c.add(d, 0, fn)
}

// Every implements notify.Scheduler.
func (c *Clock) Every(d time.Duration, fn func()) notify.Task {
	return c.add(d, d, fn)
}

func (c *Clock) add(d, interval time.Duration, fn func()) *Task {
	if d < 0 {
		d = 0
	}
	c.nextID++
	t := &timer{id: c.nextID, due: c.now.Add(d), interval: interval, fn: fn}
	c.timers[t.id] = t
	return &Task{clock: c, timer: t}
}

// PendingFrames returns the number of requested frames.
func (c *Clock) PendingFrames() int { return len(c.frames) }

// PendingTimeouts returns the number of scheduled one-shot timers.
func (c *Clock) PendingTimeouts() int {
	n := 0
	for _, t := range c.timers {
		if t.interval == 0 {
			n++
		}
	}
	return n
}

// PendingIntervals returns the number of scheduled repeating timers.
func (c *Clock) PendingIntervals() int {
	n := 0
	for _, t := range c.timers {
		if t.interval > 0 {
			n++
		}
	}
	return n
}

// Frame delivers one frame at the current time without advancing it.
func (c *Clock) Frame() {
	c.deliverFrames(c.now)
}

// Advance moves time forward by d, delivering frames every FrameInterval and
// firing timers in due order. Callbacks may schedule or cancel work.
func (c *Clock) Advance(d time.Duration) {
	end := c.now.Add(d)
	for {
		next, isFrame, ok := c.nextEvent(end)
		if !ok {
			break
		}
		c.now = next
		if isFrame {
			c.nextFrame = next.Add(FrameInterval)
			c.deliverFrames(next)
			continue
		}
		c.fireTimers(next)
	}
	c.now = end
}

func (c *Clock) nextEvent(end time.Time) (time.Time, bool, bool) {
	var (
		best    time.Time
		isFrame bool
		found   bool
	)
	for _, t := range c.timers {
		if t.due.After(end) {
			continue
		}
		if !found || t.due.Before(best) {
			best, found = t.due, true
		}
	}
	if !c.nextFrame.After(end) && (!found || c.nextFrame.Before(best)) {
		best, isFrame, found = c.nextFrame, true, true
	}
	return best, isFrame, found
}

func (c *Clock) deliverFrames(now time.Time) {
	if len(c.frames) == 0 {
		return
	}
	ids := make([]engine.FrameID, 0, len(c.frames))
	for id := range c.frames {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fn, ok := c.frames[id]
		if !ok {
			continue
		}
		delete(c.frames, id)
		fn(now)
	}
}

func (c *Clock) fireTimers(now time.Time) {
	due := make([]*timer, 0)
	for _, t := range c.timers {
		if !t.due.After(now) {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].id < due[j].id })
	for _, t := range due {
		if t.canceled {
			continue
		}
		if t.interval > 0 {
			t.due = t.due.Add(t.interval)
		} else {
			delete(c.timers, t.id)
		}
		t.fn()
	}
}

// Task is a handle to a scheduled timer.
type Task struct {
	clock *Clock
	timer *timer
}

// Cancel stops the timer. It is safe to call from inside the timer's own
// callback and more than once.
func (t *Task) Cancel() {
	t.timer.canceled = true
	delete(t.clock.timers, t.timer.id)
}

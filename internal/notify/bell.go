package notify

import (
	"io"
	"time"
)

// BellVibrator approximates haptics on a terminal by ringing the bell at the
// start of each "on" pulse of a pattern.
type BellVibrator struct {
	W         io.Writer
	Scheduler Scheduler
}

// Supported reports whether a terminal writer is attached.
func (b *BellVibrator) Supported() bool {
	return b != nil && b.W != nil && b.Scheduler != nil
}

// Vibrate rings the first pulse now and schedules the rest.
func (b *BellVibrator) Vibrate(pattern []time.Duration) {
	var at time.Duration
	for i, d := range pattern {
		if i%2 == 0 {
			if at == 0 {
				b.ring()
			} else {
				b.Scheduler.AfterFunc(at, b.ring)
			}
		}
		at += d
	}
}

func (b *BellVibrator) ring() {
	io.WriteString(b.W, "\a")
}

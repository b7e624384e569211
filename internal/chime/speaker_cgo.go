//go:build cgo

package chime

import (
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// SpeakerAvailable reports whether this build can drive the system speaker.
const SpeakerAvailable = true

type speakerPlayer struct {
	sr      beep.SampleRate
	once    sync.Once
	initErr error
}

// NewSpeaker returns a Player backed by the system audio device. The device
// is opened on first use.
func NewSpeaker(sr beep.SampleRate) Player {
	return &speakerPlayer{sr: sr}
}

func (p *speakerPlayer) Play(s beep.Streamer) error {
	p.once.Do(func() {
		if err := speaker.Init(p.sr, p.sr.N(time.Second/10)); err != nil {
			p.initErr = fmt.Errorf("open audio device: %w", err)
		}
	})
	if p.initErr != nil {
		return p.initErr
	}
	speaker.Play(s)
	return nil
}

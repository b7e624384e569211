//go:build !cgo

package chime

import (
	"github.com/faiface/beep"

	"github.com/eggtimer-project/eggtimer/pkg/errclass"
)

// SpeakerAvailable reports whether this build can drive the system speaker.
const SpeakerAvailable = false

type unsupportedPlayer struct{}

// NewSpeaker returns a Player that always reports the capability as missing.
func NewSpeaker(beep.SampleRate) Player {
	return unsupportedPlayer{}
}

func (unsupportedPlayer) Play(beep.Streamer) error {
	return errclass.ErrCapabilityUnsupported.WithMessage("audio playback requires a cgo build")
}

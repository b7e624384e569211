// Package chime synthesizes the three note completion chime and plays it.
package chime

import (
	"io"
	"math"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/wav"

	"github.com/eggtimer-project/eggtimer/pkg/logging"
)

// DefaultSampleRate is used for playback and WAV rendering.
const DefaultSampleRate beep.SampleRate = 44100

// Envelope and note timing.
const (
	Stagger  = 150 * time.Millisecond
	Attack   = 10 * time.Millisecond
	Decay    = 400 * time.Millisecond
	NoteStop = 500 * time.Millisecond

	FloorGain = 0.0001
	PeakGain  = 0.3
)

// Notes are sine frequencies in Hz, played in order.
var Notes = []float64{880, 1318, 1046}

// Length is the duration of the whole chime.
var Length = time.Duration(len(Notes)-1)*Stagger + NoteStop

// Envelope returns the gain of one note at local time t after its onset.
// The note is silent outside [0, NoteStop).
func Envelope(t time.Duration) float64 {
	switch {
	case t < 0 || t >= NoteStop:
		return 0
	case t < Attack:
		return expRamp(FloorGain, PeakGain, float64(t)/float64(Attack))
	case t < Decay:
		return expRamp(PeakGain, FloorGain, float64(t-Attack)/float64(Decay-Attack))
	default:
		return FloorGain
	}
}

func expRamp(from, to, frac float64) float64 {
	return from * math.Pow(to/from, frac)
}

// Sample returns the mono signal at time t from the start of the chime.
func Sample(t time.Duration) float64 {
	var v float64
	for i, freq := range Notes {
		local := t - time.Duration(i)*Stagger
		g := Envelope(local)
		if g == 0 {
			continue
		}
		v += g * math.Sin(2*math.Pi*freq*local.Seconds())
	}
	return v
}

// Synthesize returns a stereo streamer of one full chime at sr.
// Each call returns an independent streamer.
func Synthesize(sr beep.SampleRate) beep.Streamer {
	total := sr.N(Length)
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		if pos >= total {
			return 0, false
		}
		for i := range samples {
			if pos >= total {
				break
			}
			v := Sample(sr.D(pos))
			samples[i][0] = v
			samples[i][1] = v
			pos++
			n++
		}
		return n, true
	})
}

// Format is the PCM format used for rendering.
func Format(sr beep.SampleRate) beep.Format {
	return beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2}
}

// WriteWAV encodes one chime as 16-bit stereo WAV.
func WriteWAV(w io.WriteSeeker, sr beep.SampleRate) error {
	return wav.Encode(w, Synthesize(sr), Format(sr))
}

// Player plays a streamer to completion in the background.
type Player interface {
	Play(s beep.Streamer) error
}

// Bell is a notify.Chimer that synthesizes a fresh chime for every call.
type Bell struct {
	Player     Player
	SampleRate beep.SampleRate
	// Volume is a base-2 exponent applied to the chime. Zero leaves it unchanged.
	Volume float64
	Logger *logging.Logger
}

// Chime plays one chime. Playback failures are logged and otherwise ignored.
func (b *Bell) Chime() {
	if b.Player == nil {
		return
	}
	sr := b.SampleRate
	if sr == 0 {
		sr = DefaultSampleRate
	}
	s := &effects.Volume{
		Streamer: Synthesize(sr),
		Base:     2,
		Volume:   b.Volume,
		Silent:   false,
	}
	if err := b.Player.Play(s); err != nil {
		log := b.Logger
		if log == nil {
			log = logging.Global()
		}
		log.Debug("chime playback failed", map[string]any{"error": err.Error()})
	}
}

package chime_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eggtimer-project/eggtimer/internal/chime"
	"github.com/eggtimer-project/eggtimer/internal/notify"
	"github.com/eggtimer-project/eggtimer/pkg/logging"
)

var _ notify.Chimer = (*chime.Bell)(nil)

func drain(s beep.Streamer) (n int, peak float64) {
	buf := make([][2]float64, 512)
	for {
		got, ok := s.Stream(buf)
		for _, smp := range buf[:got] {
			if v := smp[0]; v > peak {
				peak = v
			} else if -v > peak {
				peak = -v
			}
		}
		n += got
		if !ok {
			return n, peak
		}
	}
}

func TestLength(t *testing.T) {
	assert.Equal(t, 800*time.Millisecond, chime.Length)
}

func TestEnvelope(t *testing.T) {
	assert.Zero(t, chime.Envelope(-time.Millisecond))
	assert.InDelta(t, 0.0001, chime.Envelope(0), 1e-12)
	assert.InDelta(t, 0.3, chime.Envelope(chime.Attack), 1e-9)
	assert.InDelta(t, 0.0001, chime.Envelope(450*time.Millisecond), 1e-12)
	assert.Zero(t, chime.Envelope(chime.NoteStop))

	// Decay is monotonic.
	prev := chime.Envelope(chime.Attack)
	for d := chime.Attack + time.Millisecond; d < chime.Decay; d += 10 * time.Millisecond {
		g := chime.Envelope(d)
		assert.Less(t, g, prev)
		prev = g
	}
}

func TestSampleBounded(t *testing.T) {
	for d := time.Duration(0); d < chime.Length; d += time.Millisecond {
		v := chime.Sample(d)
		assert.LessOrEqual(t, v, 0.9)
		assert.GreaterOrEqual(t, v, -0.9)
	}
	assert.Zero(t, chime.Sample(chime.Length))
}

func TestSynthesize(t *testing.T) {
	sr := beep.SampleRate(8000)

	n, peak := drain(chime.Synthesize(sr))
	assert.Equal(t, sr.N(chime.Length), n)
	assert.Greater(t, peak, 0.1)

	// Each call is independent.
	n2, _ := drain(chime.Synthesize(sr))
	assert.Equal(t, n, n2)
}

func TestWriteWAV(t *testing.T) {
	fs := afero.NewMemMapFs()
	f, err := fs.Create("/chime.wav")
	require.NoError(t, err)

	require.NoError(t, chime.WriteWAV(f, beep.SampleRate(8000)))
	require.NoError(t, f.Close())

	data, err := afero.ReadFile(fs, "/chime.wav")
	require.NoError(t, err)
	require.Greater(t, len(data), 6400*2*2)
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))
}

type recordingPlayer struct {
	played []beep.Streamer
	err    error
}

func (p *recordingPlayer) Play(s beep.Streamer) error {
	p.played = append(p.played, s)
	return p.err
}

func TestBellPlaysFreshChime(t *testing.T) {
	p := &recordingPlayer{}
	b := &chime.Bell{Player: p, SampleRate: 8000}

	b.Chime()
	b.Chime()

	require.Len(t, p.played, 2)
	n, _ := drain(p.played[0])
	assert.Equal(t, 6400, n)
	n, _ = drain(p.played[1])
	assert.Equal(t, 6400, n)
}

func TestBellLogsPlaybackFailure(t *testing.T) {
	var sb bytes.Buffer
	p := &recordingPlayer{err: errors.New("no device")}
	b := &chime.Bell{
		Player: p,
		Logger: logging.New(&sb, logging.LevelDebug, logging.FormatText),
	}

	assert.NotPanics(t, b.Chime)
	assert.Contains(t, sb.String(), "chime playback failed")
	assert.Contains(t, sb.String(), "no device")
}

func TestBellWithoutPlayer(t *testing.T) {
	assert.NotPanics(t, (&chime.Bell{}).Chime)
}

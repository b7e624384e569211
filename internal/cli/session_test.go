package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eggtimer-project/eggtimer/internal/engine"
	"github.com/eggtimer-project/eggtimer/internal/journal"
	"github.com/eggtimer-project/eggtimer/internal/manualclock"
	"github.com/eggtimer-project/eggtimer/internal/notify"
	"github.com/eggtimer-project/eggtimer/internal/preset"
	"github.com/eggtimer-project/eggtimer/pkg/config"
	"github.com/eggtimer-project/eggtimer/pkg/logging"
)

type sessionFixture struct {
	clock *manualclock.Clock
	sess  *session
	saved int
	quits int
}

func newSessionFixture(t *testing.T, scale preset.Scale) *sessionFixture {
	t.Helper()
	table, err := preset.NewTable(nil)
	require.NoError(t, err)

	f := &sessionFixture{clock: manualclock.New(time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC))}
	f.sess = &session{
		table: table,
		scale: scale,
		cfg:   config.Default(),
		save:  func(*config.Config) error { f.saved++; return nil },
		log:   logging.Discard(),
		quit:  func() { f.quits++ },
	}
	f.sess.eng = engine.New(f.clock, nil, nil)
	f.sess.eng.SetObserver(f.sess.observe)
	return f
}

func TestSessionPresetKeys(t *testing.T) {
	f := newSessionFixture(t, preset.Normal)

	f.sess.handleKey('1')
	assert.Equal(t, "soft", f.sess.eng.View().Label)
	assert.Equal(t, 6*time.Minute, f.sess.eng.Total())

	f.sess.handleKey('3')
	assert.Equal(t, "hard", f.sess.eng.View().Label)
	assert.Equal(t, 11*time.Minute, f.sess.eng.Total())
	assert.Equal(t, 11.0, f.sess.custom)

	// No fourth preset.
	f.sess.handleKey('4')
	assert.Equal(t, "hard", f.sess.eng.View().Label)
}

func TestSessionStartPauseReset(t *testing.T) {
	f := newSessionFixture(t, preset.Normal)
	f.sess.handleKey('2')

	f.sess.handleKey('s')
	f.clock.Advance(time.Minute)
	assert.Equal(t, engine.Running, f.sess.eng.State())

	f.sess.handleKey('p')
	assert.Equal(t, engine.Paused, f.sess.eng.State())

	f.sess.handleKey(' ')
	assert.Equal(t, engine.Running, f.sess.eng.State())

	f.sess.handleKey('r')
	assert.Equal(t, engine.Idle, f.sess.eng.State())
	assert.Equal(t, 8*time.Minute, f.sess.eng.Remaining())
}

func TestSessionResetNeedsProgress(t *testing.T) {
	f := newSessionFixture(t, preset.Normal)
	f.sess.handleKey('2')

	f.sess.handleKey('r')
	assert.Equal(t, engine.StatusPreset, f.sess.eng.View().Status, "nothing to reset")
}

func TestSessionCustomNudge(t *testing.T) {
	f := newSessionFixture(t, preset.Normal)
	require.NoError(t, f.sess.apply(selection{custom: true, minutes: 29.5}))

	f.sess.handleKey('+')
	assert.Equal(t, 30*time.Minute, f.sess.eng.Total())
	assert.Equal(t, "custom", f.sess.eng.View().Label)

	f.sess.handleKey('s')
	f.clock.Advance(time.Second)

	// At the upper bound another nudge leaves the run alone.
	f.sess.handleKey('+')
	assert.Equal(t, engine.Running, f.sess.eng.State())

	f.sess.handleKey('-')
	assert.Equal(t, engine.Idle, f.sess.eng.State())
	assert.Equal(t, 1770*time.Second, f.sess.eng.Total())
}

func TestSessionNudgeFromPreset(t *testing.T) {
	f := newSessionFixture(t, preset.Normal)
	f.sess.handleKey('1')

	f.sess.handleKey('-')
	assert.Equal(t, "custom", f.sess.eng.View().Label)
	assert.Equal(t, 330*time.Second, f.sess.eng.Total())
}

func TestSessionDebugScale(t *testing.T) {
	f := newSessionFixture(t, preset.NewDebugScale(10))
	require.NoError(t, f.sess.apply(selection{preset: preset.Builtins[0]}))
	assert.Equal(t, preset.DebugStatus, f.sess.eng.View().Status)
	assert.Equal(t, 7500*time.Millisecond, f.sess.eng.Total())

	f.sess.handleKey('2')
	assert.Equal(t, 10*time.Second, f.sess.eng.Total())

	f.sess.handleKey('3')
	assert.Equal(t, 13750*time.Millisecond, f.sess.eng.Total())
}

func TestSessionToggles(t *testing.T) {
	f := newSessionFixture(t, preset.Normal)

	tests := []struct {
		key    byte
		effect notify.Effect
	}{
		{'m', notify.Sound},
		{'v', notify.Vibration},
		{'c', notify.Celebration},
	}
	for _, tt := range tests {
		t.Run(string(tt.effect), func(t *testing.T) {
			require.True(t, f.sess.enabled(tt.effect))
			f.sess.handleKey(tt.key)
			assert.False(t, f.sess.enabled(tt.effect))
			f.sess.handleKey(tt.key)
			assert.True(t, f.sess.enabled(tt.effect))
		})
	}
	assert.Equal(t, 6, f.saved)
	assert.False(t, f.sess.enabled(notify.Effect("unknown")))
}

func TestSessionToggleSaveFailure(t *testing.T) {
	f := newSessionFixture(t, preset.Normal)
	f.sess.save = func(*config.Config) error { return errors.New("disk full") }

	f.sess.handleKey('m')
	assert.False(t, f.sess.cfg.Sound, "the toggle applies even when saving fails")
}

func TestSessionQuitKeys(t *testing.T) {
	f := newSessionFixture(t, preset.Normal)
	for _, b := range []byte{'q', 0x03, 0x04} {
		f.sess.handleKey(b)
	}
	assert.Equal(t, 3, f.quits)
}

func TestSessionJournalAndFinish(t *testing.T) {
	f := newSessionFixture(t, preset.Normal)
	fs := afero.NewMemMapFs()
	f.sess.journal = journal.New(fs, "/data")
	finished := 0
	f.sess.onFinish = func() { finished++ }

	require.NoError(t, f.sess.apply(selection{custom: true, minutes: 1}))
	f.sess.handleKey('s')
	f.clock.Advance(61 * time.Second)

	assert.Equal(t, engine.Finished, f.sess.eng.State())
	assert.Equal(t, 1, finished)

	records, err := f.sess.journal.List(0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, engine.EventStarted, records[0].Event)
	assert.Equal(t, engine.EventFinished, records[1].Event)
	assert.Equal(t, 60.0, records[1].TotalSeconds)
}

func TestReadKeys(t *testing.T) {
	var got []byte
	readKeys(strings.NewReader("sp q"), func(b byte) { got = append(got, b) })
	assert.Equal(t, []byte("sp q"), got)
}

func TestCRLFWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &crlfWriter{w: &buf}
	n, err := w.Write([]byte("a\nb\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "a\r\nb\r\n", buf.String())
}

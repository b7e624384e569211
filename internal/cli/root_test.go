package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eggtimer-project/eggtimer/internal/chime"
	"github.com/eggtimer-project/eggtimer/internal/engine"
	"github.com/eggtimer-project/eggtimer/internal/preset"
	"github.com/eggtimer-project/eggtimer/pkg/color"
	"github.com/eggtimer-project/eggtimer/pkg/config"
	"github.com/eggtimer-project/eggtimer/pkg/errclass"
)

type fakePlayer struct {
	plays int
	err   error
}

func (p *fakePlayer) Play(beep.Streamer) error {
	p.plays++
	return p.err
}

// setupHome points every directory at a fresh temp dir and makes the
// commands non-interactive.
func setupHome(t *testing.T) (string, *fakePlayer) {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.HomeEnv, home)
	color.Disable()

	player := &fakePlayer{}
	prevInteractive, prevPlayer, prevLinger := isInteractive, newPlayer, finishLinger
	isInteractive = func() bool { return false }
	newPlayer = func(beep.SampleRate) chime.Player { return player }
	finishLinger = 20 * time.Millisecond
	t.Cleanup(func() {
		isInteractive, newPlayer, finishLinger = prevInteractive, prevPlayer, prevLinger
	})

	resetFlags()
	return home, player
}

func resetFlags() {
	jsonOutput = false
	noColor = false
	historyLimit = 20
	chimeOut = ""
	chimeSampleRate = int(chime.DefaultSampleRate)
	presetsDebug = preset.DebugFlag{}
	runMinutes = 0
	runStart = false
	runExit = false
	runDebug = preset.DebugFlag{}
	runDisplay = ""
	runLogLevel = ""
	completionNoDesc = false
}

func executeCommand(args ...string) (string, error) {
	resetFlags()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeConfig(t *testing.T, home, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(home, config.FileName), []byte(body), 0o644))
}

func TestRootCommand_Help(t *testing.T) {
	setupHome(t)
	out, err := executeCommand("--help")
	require.NoError(t, err)
	assert.Contains(t, out, "boiling eggs")
	for _, name := range []string{"run", "presets", "note", "config", "history", "chime", "doctor"} {
		assert.Contains(t, out, name)
	}
	rootCmd.Flags().Set("help", "false")
}

func TestConfigCommand_SetGet(t *testing.T) {
	home, _ := setupHome(t)

	out, err := executeCommand("config", "set", "sound", "off")
	require.NoError(t, err)
	assert.Equal(t, "Set sound = false\n", out)

	out, err = executeCommand("config", "get", "sound")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	cfg, err := config.Load(appFs, home)
	require.NoError(t, err)
	assert.False(t, cfg.Sound)
	assert.True(t, cfg.Vibration)
}

func TestConfigCommand_Show(t *testing.T) {
	home, _ := setupHome(t)
	writeConfig(t, home, "presets:\n  - name: jammy\n    minutes: 7\n")

	out, err := executeCommand("config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(home, config.FileName))
	assert.Contains(t, out, "celebration: true")
	assert.Contains(t, out, "default_preset: medium")
	assert.Contains(t, out, "jammy: 7 min")
}

func TestConfigCommand_Errors(t *testing.T) {
	setupHome(t)

	tests := []struct {
		args []string
		want *errclass.EggError
	}{
		{[]string{"config", "set", "colour", "red"}, errclass.ErrConfigKey},
		{[]string{"config", "get", "colour"}, errclass.ErrConfigKey},
		{[]string{"config", "set", "display", "neon"}, errclass.ErrConfigValue},
		{[]string{"config", "set", "sound", "loud"}, errclass.ErrConfigValue},
		{[]string{"config", "set", "default_preset", "gooey"}, errclass.ErrPresetUnknown},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args[1:], " "), func(t *testing.T) {
			_, err := executeCommand(tt.args...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestConfigCommand_BrokenFile(t *testing.T) {
	home, _ := setupHome(t)
	writeConfig(t, home, "display: [\n")

	_, err := executeCommand("config", "show")
	assert.Error(t, err)
}

func TestNoteCommand(t *testing.T) {
	setupHome(t)

	out, err := executeCommand("note", "get")
	require.NoError(t, err)
	assert.Equal(t, "(no note)\n", out)

	out, err = executeCommand("note", "set", "  two eggs", "for ramen  ")
	require.NoError(t, err)
	assert.Equal(t, "Saved note: two eggs for ramen\n", out)

	out, err = executeCommand("note", "get")
	require.NoError(t, err)
	assert.Equal(t, "two eggs for ramen\n", out)

	out, err = executeCommand("--json", "note", "get")
	require.NoError(t, err)
	assert.Contains(t, out, `"note": "two eggs for ramen"`)

	_, err = executeCommand("note", "clear")
	require.NoError(t, err)
	out, err = executeCommand("note", "get")
	require.NoError(t, err)
	assert.Equal(t, "(no note)\n", out)
}

func TestPresetsCommand(t *testing.T) {
	home, _ := setupHome(t)
	writeConfig(t, home, "default_preset: soft\npresets:\n  - name: jammy\n    minutes: 7\n")

	out, err := executeCommand("presets")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "soft")
	assert.Contains(t, lines[0], "6 min")
	assert.Contains(t, lines[0], "[default]")
	assert.Contains(t, lines[3], "jammy")
	assert.Contains(t, lines[3], "(config)")
	assert.Contains(t, lines[4], "1-30 min")
}

func TestPresetsCommand_Debug(t *testing.T) {
	setupHome(t)

	out, err := executeCommand("presets", "--debug=16")
	require.NoError(t, err)
	assert.Contains(t, out, "Debug mode")
	assert.Contains(t, out, "12 sec")
	assert.Contains(t, out, "16 sec")
	assert.Contains(t, out, "22 sec")
	assert.Contains(t, out, "2-60 sec")

	out, err = executeCommand("presets", "--debug")
	require.NoError(t, err)
	assert.Contains(t, out, "10 sec")
}

func TestPresetsCommand_JSON(t *testing.T) {
	setupHome(t)

	out, err := executeCommand("--json", "presets")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "medium"`)
	assert.Contains(t, out, `"run_seconds": 480`)
	assert.Contains(t, out, `"default": true`)
}

func TestChimeCommand_WAV(t *testing.T) {
	home, player := setupHome(t)
	path := filepath.Join(home, "chime.wav")

	out, err := executeCommand("chime", "--out", path, "--sample-rate", "8000")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")
	assert.Zero(t, player.plays)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("RIFF")))
}

func TestChimeCommand_Play(t *testing.T) {
	_, player := setupHome(t)

	_, err := executeCommand("chime")
	require.NoError(t, err)
	assert.Equal(t, 1, player.plays)
}

func TestChimeCommand_PlayFailure(t *testing.T) {
	_, player := setupHome(t)
	player.err = errclass.ErrCapabilityUnsupported.WithMessage("no speaker")

	_, err := executeCommand("chime")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errclass.ErrCapabilityUnsupported))
}

func TestHistoryCommand_Empty(t *testing.T) {
	setupHome(t)

	out, err := executeCommand("history")
	require.NoError(t, err)
	assert.Equal(t, "No runs yet.\n", out)

	out, err = executeCommand("--json", "history")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestRunCommand_ToCompletion(t *testing.T) {
	home, player := setupHome(t)
	writeConfig(t, home, "celebration: false\n")
	_, err := executeCommand("note", "set", "ramen")
	require.NoError(t, err)

	out, err := executeCommand("run", "--debug=4", "--minutes", "1", "--display", "plain")
	require.NoError(t, err)
	assert.Contains(t, out, "Debug mode")
	assert.Contains(t, out, engine.StatusDone)
	assert.Contains(t, out, "note: ramen")
	assert.Equal(t, 1, player.plays)

	out, err = executeCommand("history")
	require.NoError(t, err)
	assert.Contains(t, out, "started")
	assert.Contains(t, out, "finished")
	assert.Contains(t, out, "custom")

	_, err = os.Stat(filepath.Join(home, logFileName))
	assert.NoError(t, err, "run logs go to the data dir")
}

func TestRunCommand_NoJournal(t *testing.T) {
	home, _ := setupHome(t)
	writeConfig(t, home, "journal: false\ncelebration: false\nsound: false\n")

	_, err := executeCommand("run", "--debug=0.2", "soft")
	require.NoError(t, err)

	out, err := executeCommand("history")
	require.NoError(t, err)
	assert.Equal(t, "No runs yet.\n", out)
}

func TestRunCommand_Errors(t *testing.T) {
	setupHome(t)

	tests := []struct {
		name string
		args []string
		want *errclass.EggError
	}{
		{"unknown preset", []string{"run", "gooey"}, errclass.ErrPresetUnknown},
		{"preset and minutes", []string{"run", "soft", "--minutes", "5"}, errclass.ErrDurationInvalid},
		{"minutes too long", []string{"run", "--minutes", "45"}, errclass.ErrDurationInvalid},
		{"minutes negative", []string{"run", "--minutes=-2"}, errclass.ErrDurationInvalid},
		{"bad display", []string{"run", "--display", "neon"}, errclass.ErrConfigValue},
		{"bad log level", []string{"run", "--log-level", "loud"}, errclass.ErrConfigValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(tt.args...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestInitialSelection(t *testing.T) {
	table, err := preset.NewTable(nil)
	require.NoError(t, err)
	cfg := config.Default()
	t.Cleanup(resetFlags)

	runMinutes = 0
	sel, err := initialSelection(table, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "medium", sel.preset.Name)

	sel, err = initialSelection(table, cfg, []string{"3"})
	require.NoError(t, err)
	assert.Equal(t, "hard", sel.preset.Name)

	sel, err = initialSelection(table, cfg, []string{"so"})
	require.NoError(t, err)
	assert.Equal(t, "soft", sel.preset.Name)

	runMinutes = 7.25
	sel, err = initialSelection(table, cfg, nil)
	require.NoError(t, err)
	assert.True(t, sel.custom)
	assert.Equal(t, 7.25, sel.minutes)
	assert.Equal(t, "custom", labelOf(sel))
}

func TestDoctorCommand(t *testing.T) {
	setupHome(t)

	out, err := executeCommand("doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "terminal")
}

func TestDoctorCommand_Unhealthy(t *testing.T) {
	home, _ := setupHome(t)
	writeConfig(t, home, "volume: 9\n")

	out, err := executeCommand("--json", "doctor")
	assert.ErrorIs(t, err, errUnhealthy)
	assert.Contains(t, out, `"healthy": false`)
}

func TestInfoCommand(t *testing.T) {
	home, _ := setupHome(t)

	out, err := executeCommand("--json", "info")
	require.NoError(t, err)
	assert.Contains(t, out, `"data_dir": "`+home+`"`)
	assert.Contains(t, out, `"interactive": false`)
}

func TestCompletionCommand(t *testing.T) {
	setupHome(t)

	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := executeCommand("completion", shell)
			require.NoError(t, err)
			assert.Contains(t, out, "eggtimer")

			out, err = executeCommand("completion", shell, "--no-descriptions")
			require.NoError(t, err)
			assert.NotEmpty(t, out)
		})
	}

	_, err := executeCommand("completion", "tcsh")
	assert.Error(t, err)
}

func TestCompletionCandidates(t *testing.T) {
	setupHome(t)

	out, err := executeCommand(cobra.ShellCompRequestCmd, "run", "")
	require.NoError(t, err)
	assert.Contains(t, out, "medium")

	out, err = executeCommand(cobra.ShellCompRequestCmd, "config", "set", "")
	require.NoError(t, err)
	assert.Contains(t, out, "default_preset")

	out, err = executeCommand(cobra.ShellCompRequestCmd, "config", "set", "sound", "")
	require.NoError(t, err)
	assert.NotContains(t, out, "default_preset")
}

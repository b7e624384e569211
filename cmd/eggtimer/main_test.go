package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// getProjectRoot returns the absolute path to the project root.
func getProjectRoot(t *testing.T) string {
	dir, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	t.Fatal("go.mod not found")
	return ""
}

// buildBinary compiles the command without cgo so no audio headers are needed.
func buildBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping build test in short mode")
	}
	binPath := filepath.Join(t.TempDir(), "eggtimer-test")
	buildCmd := exec.Command("go", "build", "-o", binPath, ".")
	buildCmd.Dir = filepath.Join(getProjectRoot(t), "cmd", "eggtimer")
	buildCmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	output, err := buildCmd.CombinedOutput()
	require.NoError(t, err, "build failed: %s", string(output))
	return binPath
}

// binaryTimeout bounds every invocation so a run that never exits fails.
const binaryTimeout = 30 * time.Second

func runBinary(t *testing.T, bin, home string, args ...string) (string, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), binaryTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Env = append(os.Environ(), "EGGTIMER_HOME="+home, "NO_COLOR=1")
	out, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		t.Fatalf("%s %v did not exit within %s:\n%s", filepath.Base(bin), args, binaryTimeout, out)
	}
	return string(out), err
}

func TestMainHelpFlag(t *testing.T) {
	bin := buildBinary(t)

	out, err := runBinary(t, bin, t.TempDir(), "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "boiling eggs")
}

func TestMainUnknownCommand(t *testing.T) {
	bin := buildBinary(t)

	out, err := runBinary(t, bin, t.TempDir(), "unknown-command-xyz")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(out), "unknown")
	assert.Contains(t, out, "eggtimer:")
}

func TestMainEntryPoints(t *testing.T) {
	_ = main
}

func TestBinaryRunToCompletion(t *testing.T) {
	bin := buildBinary(t)
	home := t.TempDir()

	start := time.Now()
	out, err := runBinary(t, bin, home, "run", "--debug=4", "--minutes", "1", "--display", "plain")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Egg-cellent")
	// The run lasts under a second and then lingers for three.
	assert.Less(t, time.Since(start), 15*time.Second)

	out, err = runBinary(t, bin, home, "--json", "history")
	require.NoError(t, err)
	assert.Contains(t, out, `"event": "finished"`)
}

func TestBinaryNote(t *testing.T) {
	bin := buildBinary(t)
	home := t.TempDir()

	_, err := runBinary(t, bin, home, "note", "set", "  two eggs  ")
	require.NoError(t, err)

	out, err := runBinary(t, bin, home, "note", "get")
	require.NoError(t, err)
	assert.Equal(t, "two eggs\n", out)
}

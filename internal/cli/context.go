package cli

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"golang.org/x/term"

	"github.com/eggtimer-project/eggtimer/internal/journal"
	"github.com/eggtimer-project/eggtimer/internal/note"
	"github.com/eggtimer-project/eggtimer/pkg/color"
	"github.com/eggtimer-project/eggtimer/pkg/config"
)

// appFs backs every file the commands touch.
var appFs afero.Fs = afero.NewOsFs()

// isInteractive reports whether stdin and stdout are both terminals.
var isInteractive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// dirs holds the resolved config and data directories.
type dirs struct {
	Config string `json:"config_dir"`
	Data   string `json:"data_dir"`
}

func resolveDirs() (dirs, error) {
	cfgDir, err := config.Dir()
	if err != nil {
		return dirs{}, err
	}
	dataDir, err := config.DataDir()
	if err != nil {
		return dirs{}, err
	}
	return dirs{Config: cfgDir, Data: dataDir}, nil
}

// loadConfig resolves the directories and loads the config file.
func loadConfig() (*config.Config, dirs, error) {
	d, err := resolveDirs()
	if err != nil {
		return nil, dirs{}, err
	}
	cfg, err := config.Load(appFs, d.Config)
	if err != nil {
		return nil, dirs{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, d, nil
}

func openNote() (*note.FileStore, error) {
	d, err := resolveDirs()
	if err != nil {
		return nil, err
	}
	return note.NewFileStore(appFs, d.Data), nil
}

func openJournal(d dirs) *journal.Journal {
	return journal.New(appFs, d.Data)
}

func fmtErr(format string, args ...any) {
	prefix := "eggtimer: "
	if color.Enabled() {
		prefix = color.Error("eggtimer:") + " "
	}
	fmt.Fprintf(os.Stderr, prefix+format+"\n", args...)
}

package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/spf13/afero"

	"github.com/eggtimer-project/eggtimer/internal/chime"
	"github.com/eggtimer-project/eggtimer/pkg/config"
	"github.com/eggtimer-project/eggtimer/pkg/fsutil"
)

// Severities.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Finding represents a detected issue.
type Finding struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Path        string `json:"path,omitempty"`
}

// Result contains doctor check results.
type Result struct {
	Healthy  bool      `json:"healthy"`
	Findings []Finding `json:"findings"`
}

// Env describes the host being checked.
type Env struct {
	Fs        afero.Fs
	ConfigDir string
	DataDir   string
	// Speaker reports whether audio playback was compiled in.
	Speaker bool
	// Terminal reports whether stdin and stdout are interactive.
	Terminal bool
}

// Doctor performs capability checks.
type Doctor struct {
	env Env
}

// NewDoctor creates a new doctor.
func NewDoctor(env Env) *Doctor {
	if env.Fs == nil {
		env.Fs = afero.NewOsFs()
	}
	return &Doctor{env: env}
}

// Check runs all diagnostic checks.
func (d *Doctor) Check() *Result {
	result := &Result{Healthy: true, Findings: []Finding{}}

	d.checkConfig(result)
	d.checkDataDir(result)
	d.checkSynthesis(result)
	d.checkPlayback(result)
	d.checkTerminal(result)
	d.checkOrphanTmp(result, d.env.ConfigDir)
	if d.env.DataDir != d.env.ConfigDir {
		d.checkOrphanTmp(result, d.env.DataDir)
	}

	return result
}

func (r *Result) add(f Finding) {
	r.Findings = append(r.Findings, f)
	if f.Severity == SeverityCritical {
		r.Healthy = false
	}
}

func (d *Doctor) checkConfig(result *Result) {
	if _, err := config.Load(d.env.Fs, d.env.ConfigDir); err != nil {
		result.add(Finding{
			Category:    "config",
			Description: err.Error(),
			Severity:    SeverityCritical,
			Path:        filepath.Join(d.env.ConfigDir, config.FileName),
		})
	}
}

func (d *Doctor) checkDataDir(result *Result) {
	probe := filepath.Join(d.env.DataDir, ".doctor-probe")
	if err := fsutil.AtomicWrite(d.env.Fs, probe, []byte("ok"), 0o600); err != nil {
		result.add(Finding{
			Category:    "storage",
			Description: fmt.Sprintf("data directory not writable: %v", err),
			Severity:    SeverityCritical,
			Path:        d.env.DataDir,
		})
		return
	}
	d.env.Fs.Remove(probe)
}

func (d *Doctor) checkSynthesis(result *Result) {
	s := chime.Synthesize(beep.SampleRate(8000))
	buf := make([][2]float64, 512)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			break
		}
	}
	if total == 0 {
		result.add(Finding{
			Category:    "audio",
			Description: "chime synthesis produced no samples",
			Severity:    SeverityWarning,
		})
	}
}

func (d *Doctor) checkPlayback(result *Result) {
	if !d.env.Speaker {
		result.add(Finding{
			Category:    "audio",
			Description: "audio playback not built in; the chime is silent (try `eggtimer chime --out chime.wav`)",
			Severity:    SeverityWarning,
		})
	}
}

func (d *Doctor) checkTerminal(result *Result) {
	if !d.env.Terminal {
		result.add(Finding{
			Category:    "terminal",
			Description: "not an interactive terminal; keyboard controls and bell haptics are unavailable",
			Severity:    SeverityInfo,
		})
	}
}

func (d *Doctor) checkOrphanTmp(result *Result, dir string) {
	if dir == "" {
		return
	}
	afero.Walk(d.env.Fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if strings.HasPrefix(info.Name(), ".eggtimer-tmp-") {
			result.add(Finding{
				Category:    "tmp",
				Description: fmt.Sprintf("orphan temp file: %s", info.Name()),
				Severity:    SeverityInfo,
				Path:        path,
			})
		}
		return nil
	})
}

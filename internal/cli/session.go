package cli

import (
	"github.com/eggtimer-project/eggtimer/internal/engine"
	"github.com/eggtimer-project/eggtimer/internal/journal"
	"github.com/eggtimer-project/eggtimer/internal/notify"
	"github.com/eggtimer-project/eggtimer/internal/preset"
	"github.com/eggtimer-project/eggtimer/pkg/config"
	"github.com/eggtimer-project/eggtimer/pkg/logging"
)

// session binds keyboard input, preferences and the journal to one engine.
// All methods run on the event loop goroutine.
type session struct {
	eng     *engine.Engine
	table   *preset.Table
	scale   preset.Scale
	cfg     *config.Config
	save    func(*config.Config) error
	journal *journal.Journal
	log     *logging.Logger

	// custom is the custom duration in minutes, before scaling.
	custom float64

	quit     func()
	onFinish func()
}

// selection is the duration a run starts with.
type selection struct {
	preset  preset.Preset
	custom  bool
	minutes float64
}

// apply installs the first selection of a run. Debug runs announce
// themselves in the status line.
func (s *session) apply(sel selection) error {
	if !s.scale.Debug {
		if sel.custom {
			return s.selectCustom(sel.minutes)
		}
		return s.selectPreset(sel.preset)
	}
	label, minutes := sel.preset.Name, sel.preset.Minutes
	s.custom = preset.ClampCustom(minutes)
	if sel.custom {
		label, minutes = "custom", sel.minutes
		s.custom = minutes
	}
	return s.eng.Select(s.scale.Duration(minutes), label, preset.DebugStatus)
}

func (s *session) selectPreset(p preset.Preset) error {
	s.custom = preset.ClampCustom(p.Minutes)
	return s.eng.SelectPreset(p.Name, s.scale.Duration(p.Minutes))
}

func (s *session) selectCustom(minutes float64) error {
	s.custom = minutes
	return s.eng.SelectCustom(s.scale.Duration(minutes))
}

// handleKey dispatches one key press.
func (s *session) handleKey(b byte) {
	switch b {
	case 's', ' ':
		s.eng.Start()
	case 'p':
		s.eng.Pause()
	case 'r':
		if s.eng.Controls().Reset {
			s.eng.Reset()
		}
	case 'q', 0x03, 0x04:
		if s.quit != nil {
			s.quit()
		}
	case '+', '=':
		s.nudge(preset.CustomStep)
	case '-', '_':
		s.nudge(-preset.CustomStep)
	case 'm':
		s.toggle(notify.Sound)
	case 'v':
		s.toggle(notify.Vibration)
	case 'c':
		s.toggle(notify.Celebration)
	default:
		if b >= '1' && b <= '9' {
			if p, ok := s.table.At(int(b - '0')); ok {
				s.logErr(s.selectPreset(p))
			}
		}
	}
}

func (s *session) nudge(delta float64) {
	next := preset.ClampCustom(s.custom + delta)
	if next == s.custom && s.eng.View().Label == "custom" {
		return
	}
	s.logErr(s.selectCustom(next))
}

func (s *session) flag(e notify.Effect) *bool {
	switch e {
	case notify.Sound:
		return &s.cfg.Sound
	case notify.Vibration:
		return &s.cfg.Vibration
	case notify.Celebration:
		return &s.cfg.Celebration
	default:
		return nil
	}
}

// enabled implements notify.Prefs over the live config.
func (s *session) enabled(e notify.Effect) bool {
	if p := s.flag(e); p != nil {
		return *p
	}
	return false
}

// toggle flips an effect and persists the config.
func (s *session) toggle(e notify.Effect) {
	p := s.flag(e)
	if p == nil {
		return
	}
	*p = !*p
	s.log.Info("preference toggled", map[string]any{"effect": string(e), "enabled": *p})
	if s.save == nil {
		return
	}
	if err := s.save(s.cfg); err != nil {
		s.log.WarnErr("save preferences failed", err)
	}
}

func (s *session) observe(tr engine.Transition) {
	s.log.Debug("transition", map[string]any{
		"event": string(tr.Event),
		"from":  tr.From.String(),
		"to":    tr.To.String(),
		"label": tr.Label,
	})
	if s.journal != nil {
		s.journal.Observe(tr)
	}
	if tr.Event == engine.EventFinished && s.onFinish != nil {
		s.onFinish()
	}
}

func (s *session) logErr(err error) {
	if err != nil {
		s.log.WarnErr("selection rejected", err)
	}
}

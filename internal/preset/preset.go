// Package preset holds the named durations offered by the timer and the
// debug time scale applied to them.
package preset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/eggtimer-project/eggtimer/pkg/color"
	"github.com/eggtimer-project/eggtimer/pkg/config"
	"github.com/eggtimer-project/eggtimer/pkg/errclass"
	"github.com/eggtimer-project/eggtimer/pkg/nameutil"
)

// DefaultName is selected when nothing else is requested.
const DefaultName = "medium"

// Preset is a named duration in minutes.
type Preset struct {
	Name    string  `json:"name"`
	Minutes float64 `json:"minutes"`
	Builtin bool    `json:"builtin"`
}

// Builtins are always available, in key order.
var Builtins = []Preset{
	{Name: "soft", Minutes: 6, Builtin: true},
	{Name: "medium", Minutes: 8, Builtin: true},
	{Name: "hard", Minutes: 11, Builtin: true},
}

// Table is the ordered set of selectable presets. Number keys address
// presets by one-based position.
type Table struct {
	presets []Preset
}

// NewTable combines the built-ins with user presets. A user preset with a
// built-in name replaces the built-in duration in place.
func NewTable(user []config.PresetConfig) (*Table, error) {
	t := &Table{presets: append([]Preset(nil), Builtins...)}
	for _, u := range user {
		if err := nameutil.ValidateName(u.Name); err != nil {
			return nil, err
		}
		if u.Minutes <= 0 {
			return nil, errclass.ErrDurationInvalid.WithMessagef("preset %q needs positive minutes", u.Name)
		}
		p := Preset{Name: nameutil.Normalize(u.Name), Minutes: u.Minutes}
		if i := t.index(p.Name); i >= 0 {
			t.presets[i].Minutes = p.Minutes
			continue
		}
		t.presets = append(t.presets, p)
	}
	return t, nil
}

func (t *Table) index(name string) int {
	for i, p := range t.presets {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// All returns the presets in key order.
func (t *Table) All() []Preset {
	return append([]Preset(nil), t.presets...)
}

// Len returns the number of presets.
func (t *Table) Len() int { return len(t.presets) }

// At returns the preset for one-based key n.
func (t *Table) At(n int) (Preset, bool) {
	if n < 1 || n > len(t.presets) {
		return Preset{}, false
	}
	return t.presets[n-1], true
}

// Lookup resolves a query by exact name, then by number key, then by a
// unique best fuzzy match.
func (t *Table) Lookup(query string) (Preset, error) {
	q := nameutil.Normalize(query)
	if q == "" {
		return Preset{}, errclass.ErrPresetUnknown.WithMessage("empty preset name")
	}
	if i := t.index(q); i >= 0 {
		return t.presets[i], nil
	}
	if n, err := strconv.Atoi(q); err == nil {
		if p, ok := t.At(n); ok {
			return p, nil
		}
		return Preset{}, errclass.ErrPresetUnknown.WithMessagef("no preset at key %d (1-%d)", n, len(t.presets))
	}

	matches := t.Match(q, 3)
	if len(matches) == 1 || (len(matches) > 1 && matches[0].Score > matches[1].Score && matches[0].Score >= scorePrefix) {
		return matches[0].Preset, nil
	}
	return Preset{}, errclass.ErrPresetUnknown.WithMessagef("preset %q not found. %s", query, t.Suggest(q))
}

// Match scores.
const (
	scoreExact     = 1000
	scorePrefix    = 900
	scoreSubstring = 100
)

// Match is a fuzzy lookup result.
type Match struct {
	Preset Preset
	Score  int
}

// Match returns up to max presets relevant to query, best first.
func (t *Table) Match(query string, max int) []Match {
	q := nameutil.Normalize(query)
	var matches []Match
	for _, p := range t.presets {
		if s := score(p.Name, q); s > 0 {
			matches = append(matches, Match{Preset: p, Score: s})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if max > 0 && len(matches) > max {
		matches = matches[:max]
	}
	return matches
}

func score(name, q string) int {
	switch {
	case q == "":
		return 0
	case name == q:
		return scoreExact
	case strings.HasPrefix(name, q):
		return scorePrefix
	case strings.Contains(name, q):
		return scoreSubstring
	default:
		return 0
	}
}

// Suggest returns a hint for an unknown preset query.
func (t *Table) Suggest(query string) string {
	matches := t.Match(query, 3)
	if len(matches) > 0 {
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = color.Success(m.Preset.Name)
		}
		hint := "Did you mean"
		if len(names) > 1 {
			hint += " one of"
		}
		return fmt.Sprintf("%s: %s?", hint, strings.Join(names, ", "))
	}

	names := make([]string, len(t.presets))
	for i, p := range t.presets {
		names[i] = color.Success(p.Name)
	}
	return fmt.Sprintf("Available presets: %s", strings.Join(names, ", "))
}

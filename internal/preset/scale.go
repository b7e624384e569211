package preset

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Debug mode constants.
const (
	DefaultMinutes      = 8.0
	DebugDefaultSeconds = 10.0
	DebugStatus         = "Debug mode active — perfect for rapid testing."
)

// Custom duration bounds in minutes.
const (
	MinCustom  = 1.0
	MaxCustom  = 30.0
	CustomStep = 0.5
)

// Scale maps preset minutes to run time. In debug mode the whole range is
// compressed so that the default preset lasts Seconds.
type Scale struct {
	Debug   bool
	Seconds float64
}

// Normal is the identity scale.
var Normal = Scale{}

// NewDebugScale returns a debug scale. Non-positive or non-finite seconds
// fall back to DebugDefaultSeconds.
func NewDebugScale(seconds float64) Scale {
	if !(seconds > 0) || math.IsInf(seconds, 0) {
		seconds = DebugDefaultSeconds
	}
	return Scale{Debug: true, Seconds: seconds}
}

// Factor is the multiplier applied to real seconds.
func (s Scale) Factor() float64 {
	if !s.Debug {
		return 1
	}
	return s.Seconds / (DefaultMinutes * 60)
}

// RunSeconds converts minutes to scaled run seconds.
func (s Scale) RunSeconds(minutes float64) float64 {
	if !s.Debug {
		return minutes * 60
	}
	return minutes * s.Seconds / DefaultMinutes
}

// Duration converts minutes to a scaled duration.
func (s Scale) Duration(minutes float64) time.Duration {
	return time.Duration(math.Round(s.RunSeconds(minutes) * float64(time.Second)))
}

// Badge is the short duration label of a preset.
func (s Scale) Badge(minutes float64) string {
	if s.Debug {
		return fmt.Sprintf("%d sec", int64(math.Round(s.RunSeconds(minutes))))
	}
	return FormatMinutes(minutes) + " min"
}

// CustomLabel is the value shown next to the custom duration control.
func (s Scale) CustomLabel(minutes float64) string {
	if s.Debug {
		return strconv.FormatInt(int64(math.Round(s.RunSeconds(minutes))), 10)
	}
	return FormatMinutes(minutes)
}

// Unit is the unit of CustomLabel.
func (s Scale) Unit() string {
	if s.Debug {
		return "sec"
	}
	return "min"
}

// Banner explains an active debug scale. It is empty otherwise.
func (s Scale) Banner() string {
	if !s.Debug {
		return ""
	}
	return fmt.Sprintf("Debug mode: timers scaled so medium preset ≈ %d sec. Drop --debug to return to minutes.",
		int64(math.Round(s.Seconds)))
}

// FormatMinutes prints whole minutes without a decimal and others with one.
func FormatMinutes(minutes float64) string {
	if minutes == math.Trunc(minutes) {
		return strconv.FormatFloat(minutes, 'f', 0, 64)
	}
	return strconv.FormatFloat(minutes, 'f', 1, 64)
}

// ClampCustom snaps minutes to the custom step within the allowed range.
func ClampCustom(minutes float64) float64 {
	if math.IsNaN(minutes) {
		return DefaultMinutes
	}
	minutes = math.Round(minutes/CustomStep) * CustomStep
	return math.Max(MinCustom, math.Min(MaxCustom, minutes))
}

// DebugFlag is a flag value for --debug[=seconds]. Any value that is not a
// positive number enables debug mode with the default seconds.
type DebugFlag struct {
	Enabled bool
	Seconds float64
}

// NoOptDefault is the value used when the flag is given without "=".
const NoOptDefault = "10"

func (f *DebugFlag) String() string {
	if !f.Enabled {
		return ""
	}
	return strconv.FormatFloat(f.Seconds, 'f', -1, 64)
}

func (f *DebugFlag) Set(v string) error {
	f.Enabled = true
	seconds, err := strconv.ParseFloat(v, 64)
	if err != nil || !(seconds > 0) || math.IsInf(seconds, 0) {
		seconds = DebugDefaultSeconds
	}
	f.Seconds = seconds
	return nil
}

func (f *DebugFlag) Type() string { return "seconds" }

// Scale returns the scale selected by the flag.
func (f *DebugFlag) Scale() Scale {
	if !f.Enabled {
		return Normal
	}
	return NewDebugScale(f.Seconds)
}

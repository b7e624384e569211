package errclass

import "fmt"

// EggError is a stable, machine-readable error class.
type EggError struct {
	Code    string
	Message string
}

func (e *EggError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *EggError) Is(target error) bool {
	t, ok := target.(*EggError)
	return ok && e.Code == t.Code
}

// WithMessage returns a new EggError with the same Code but a specific message.
func (e *EggError) WithMessage(msg string) *EggError {
	return &EggError{Code: e.Code, Message: msg}
}

// WithMessagef returns a new EggError with a formatted message.
func (e *EggError) WithMessagef(format string, args ...any) *EggError {
	return &EggError{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// Stable error classes.
var (
	ErrDurationInvalid       = &EggError{Code: "E_DURATION_INVALID"}
	ErrPresetUnknown         = &EggError{Code: "E_PRESET_UNKNOWN"}
	ErrConfigKey             = &EggError{Code: "E_CONFIG_KEY"}
	ErrConfigValue           = &EggError{Code: "E_CONFIG_VALUE"}
	ErrNameInvalid           = &EggError{Code: "E_NAME_INVALID"}
	ErrCapabilityUnsupported = &EggError{Code: "E_CAPABILITY_UNSUPPORTED"}
	ErrStorage               = &EggError{Code: "E_STORAGE"}
)

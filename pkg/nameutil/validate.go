// Package nameutil validates user-chosen preset names.
package nameutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/eggtimer-project/eggtimer/pkg/errclass"
)

var nameRegex = regexp.MustCompile(`^[a-z0-9._-]+$`)

// MaxNameLen bounds preset names so they fit on a badge.
const MaxNameLen = 24

// Normalize returns the canonical form of a preset name: NFC, trimmed, lower case.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(name)))
}

// ValidateName checks a preset name after normalization.
func ValidateName(name string) error {
	name = Normalize(name)
	if name == "" {
		return errclass.ErrNameInvalid.WithMessage("name must not be empty")
	}
	if len(name) > MaxNameLen {
		return errclass.ErrNameInvalid.WithMessagef("name longer than %d bytes: %s", MaxNameLen, name)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return errclass.ErrNameInvalid.WithMessagef("name must not contain control characters: %q", name)
		}
	}
	if !nameRegex.MatchString(name) {
		return errclass.ErrNameInvalid.WithMessagef("name must match [a-z0-9._-]+: %s", name)
	}
	if isAllDigits(name) {
		return errclass.ErrNameInvalid.WithMessagef("name must not be a bare number: %s", name)
	}
	return nil
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

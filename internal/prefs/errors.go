package prefs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("invalid boolean value")
	// ErrMalformed is returned by Open and Reload when the file on disk
	// cannot be parsed at all.
	ErrMalformed = errors.New("malformed preferences file")
	// ErrUnknownKey is returned for names outside the schema.
	ErrUnknownKey = errors.New("unknown preference key")
)

// ParseError reports a stored value that is not a recognized boolean token.
type ParseError struct {
	Section string
	Key     string
	Value   string
}

func (e *ParseError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("%s: %q", ErrParse, e.Value)
	}
	return fmt.Sprintf("%s.%s: %s: %q", e.Section, e.Key, ErrParse, e.Value)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ParseBool accepts true/yes/1/on and false/no/0/off, case-insensitively.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "on":
		return true, nil
	case "false", "no", "0", "off":
		return false, nil
	}
	return false, &ParseError{Value: s}
}

// FormatBool renders booleans the way legacy preference files store them.
func FormatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

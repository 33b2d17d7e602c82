package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// SourcePattern defines the accepted format for source identifiers:
// letters, digits, underscore, dash and dot (file-style stream ids).
var SourcePattern = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_.-]{0,127}$`)

const (
	// MaxTitleLen is the maximum session title length
	MaxTitleLen = 120
)

// ValidateTitle checks that a session title is non-empty after trimming and
// fits the length limit.
func ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if len(trimmed) > MaxTitleLen {
		return fmt.Errorf("title must not exceed %d characters", MaxTitleLen)
	}
	return nil
}

// ValidateSourceID checks that a source identifier is well formed.
// An empty id is valid and means "vacate the slot".
func ValidateSourceID(id string) error {
	if id == "" {
		return nil
	}
	if !SourcePattern.MatchString(id) {
		return fmt.Errorf("source id can only contain letters, numbers, underscores, dots and dashes")
	}
	return nil
}

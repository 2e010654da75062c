package redos

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownSeverity = errors.New("unknown severity")

// Severity classifies backtracking risk. The values form a total order:
// Safe < Low < Medium < High < Critical.
type Severity int

const (
	SeveritySafe Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeveritySafe:
		return "safe"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Exceeds reports whether s is at or above min. Callers use it to gate
// fail-the-build decisions against a configured threshold.
func (s Severity) Exceeds(min Severity) bool {
	return s >= min
}

// ParseSeverity converts a config string into a Severity.
func ParseSeverity(value string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "safe":
		return SeveritySafe, nil
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	case "critical":
		return SeverityCritical, nil
	default:
		return SeveritySafe, fmt.Errorf("%w: %q", ErrUnknownSeverity, value)
	}
}

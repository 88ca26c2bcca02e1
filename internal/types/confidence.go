package types

import "strings"

// Confidence is an ordered trust grade attached to analysis findings.
// Higher values mean stronger evidence. The zero value means "no data".
type Confidence int

const (
	ConfidenceNone Confidence = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "low"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	default:
		return "none"
	}
}

// AtLeast reports whether c meets or exceeds the given grade.
func (c Confidence) AtLeast(min Confidence) bool {
	return c >= min
}

// ParseConfidence maps a string grade to a Confidence. Unrecognized input
// yields ConfidenceNone.
func ParseConfidence(s string) Confidence {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return ConfidenceLow
	case "medium":
		return ConfidenceMedium
	case "high":
		return ConfidenceHigh
	default:
		return ConfidenceNone
	}
}

// MarshalYAML emits the string form so results serialize readably.
func (c Confidence) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

// MarshalJSON emits the string form.
func (c Confidence) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

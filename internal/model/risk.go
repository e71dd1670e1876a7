package model

import (
	"encoding/json"
	"strings"
)

// Severity is the closed set of risk severities. The zero value is SeverityUnknown.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityHigh
	SeverityMedium
	SeverityLow
)

// ParseSeverity accepts any casing of HIGH, MEDIUM and LOW.
func ParseSeverity(s string) Severity {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH":
		return SeverityHigh
	case "MEDIUM":
		return SeverityMedium
	case "LOW":
		return SeverityLow
	default:
		return SeverityUnknown
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "HIGH"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityLow:
		return "LOW"
	default:
		return "UNKNOWN"
	}
}

// Rank orders severities for display: HIGH first, unknown last.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	default:
		return 3
	}
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		// Non-string severities are kept as unknown rather than rejecting the whole risk.
		*s = SeverityUnknown
		return nil
	}
	*s = ParseSeverity(raw)
	return nil
}

// Risk is one finding reported by an analysis.
type Risk struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Severity        Severity `json:"severity"`
	MatrixReference string   `json:"matrixReference,omitempty"`
	Suggestion      string   `json:"suggestion"`
}

package model

// AvatarState is the assistant persona's display state.
type AvatarState string

const (
	StateIdle      AvatarState = "IDLE"
	StateAnalyzing AvatarState = "ANALYZING"
	StateDanger    AvatarState = "DANGER"
	StateSuccess   AvatarState = "SUCCESS"
)

// Valid reports whether s is one of the four known states.
func (s AvatarState) Valid() bool {
	switch s {
	case StateIdle, StateAnalyzing, StateDanger, StateSuccess:
		return true
	}
	return false
}

// AnalysisRecord is the structured result of analyzing one piece of user text.
type AnalysisRecord struct {
	Commentary   string      `json:"commentary"`
	State        AvatarState `json:"state"`
	HealthImpact int         `json:"healthImpact"`
	Risks        []Risk      `json:"risks"`
	Sources      []Source    `json:"sources,omitempty"`
}

// Source is a knowledge-base document cited by the context service.
type Source struct {
	ID       int    `json:"id"`
	Filename string `json:"filename"`
	Source   string `json:"source"`
}

// RiskMatrix groups risks by severity.
type RiskMatrix struct {
	High   []Risk `json:"high"`
	Medium []Risk `json:"medium"`
	Low    []Risk `json:"low"`
}

// Len is the number of risks across all severities.
func (m RiskMatrix) Len() int {
	return len(m.High) + len(m.Medium) + len(m.Low)
}

// Empty reports whether the matrix has no entries.
func (m RiskMatrix) Empty() bool {
	return m.Len() == 0
}

// Recommendation is one remediation item of a final analysis.
type Recommendation struct {
	Priority    Severity `json:"priority"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

// FinalAnalysis is the per-domain rollup shown at the end of a block.
type FinalAnalysis struct {
	Summary           string           `json:"summary"`
	RiskMatrix        RiskMatrix       `json:"riskMatrix"`
	Recommendations   []Recommendation `json:"recommendations"`
	OverallAssessment string           `json:"overallAssessment"`
}

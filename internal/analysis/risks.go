// Package analysis aggregates per-domain findings and keeps the final rollup
// consistent with the answers and the score.
package analysis

import (
	"sort"

	"legalflow/internal/model"
)

// AggregateRisks collects the risks reported across a conversation.
func AggregateRisks(turns []model.Turn) []model.Risk {
	var all []model.Risk
	for _, t := range turns {
		all = append(all, t.Risks...)
	}
	return Aggregate(all)
}

// Aggregate drops repeated ids, keeping the first occurrence, and orders the rest
// HIGH, MEDIUM, LOW, then unknown. Equal severities keep their input order.
func Aggregate(risks []model.Risk) []model.Risk {
	seen := make(map[string]bool, len(risks))
	out := make([]model.Risk, 0, len(risks))
	for _, r := range risks {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() < out[j].Severity.Rank()
	})
	return out
}

// MatrixFromRisks groups risks by severity. Unknown severities are left out.
func MatrixFromRisks(risks []model.Risk) model.RiskMatrix {
	m := model.RiskMatrix{High: []model.Risk{}, Medium: []model.Risk{}, Low: []model.Risk{}}
	for _, r := range risks {
		switch r.Severity {
		case model.SeverityHigh:
			m.High = append(m.High, r)
		case model.SeverityMedium:
			m.Medium = append(m.Medium, r)
		case model.SeverityLow:
			m.Low = append(m.Low, r)
		}
	}
	return m
}

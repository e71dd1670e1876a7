package reconciler

import (
	"fmt"
	"math"
	"strings"

	"legalflow/internal/model"
)

// normalize turns any candidate into a well-formed record.
func normalize(c candidate, text string, opts Options) model.AnalysisRecord {
	return model.AnalysisRecord{
		Commentary:   normalizeCommentary(c["commentary"], text),
		State:        normalizeState(c["state"]),
		HealthImpact: normalizeImpact(c["healthImpact"]),
		Risks:        normalizeRisks(c["risks"], opts),
	}
}

func normalizeCommentary(v interface{}, text string) string {
	s, _ := v.(string)
	s = strings.TrimSpace(s)
	if s == "" {
		s = strings.TrimSpace(truncateRunes(strings.TrimSpace(stripBraces(text)), PreviewLength))
	}
	if s == "" {
		return PlaceholderCommentary
	}
	if looksTruncated(s) {
		s += TruncationNotice
	}
	return s
}

// looksTruncated flags commentary that stops mid-sentence on a short word run.
func looksTruncated(s string) bool {
	if strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?") {
		return false
	}
	if strings.Contains(s, "...") {
		return false
	}
	words := strings.Fields(s)
	if len(words) > 3 {
		words = words[len(words)-3:]
	}
	return len([]rune(strings.Join(words, " "))) < 20
}

func normalizeState(v interface{}) model.AvatarState {
	s, _ := v.(string)
	state := model.AvatarState(strings.ToUpper(strings.TrimSpace(s)))
	if !state.Valid() {
		return model.StateIdle
	}
	return state
}

func normalizeImpact(v interface{}) int {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || f < -50 || f > 50 {
		return 0
	}
	return int(math.Round(f))
}

func normalizeRisks(v interface{}, opts Options) []model.Risk {
	items, ok := v.([]interface{})
	if !ok {
		return []model.Risk{}
	}
	risks := make([]model.Risk, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		r := model.Risk{
			ID:              asString(m["id"]),
			Title:           asString(m["title"]),
			Description:     asString(m["description"]),
			Severity:        model.ParseSeverity(asString(m["severity"])),
			MatrixReference: asString(m["matrixReference"]),
			Suggestion:      asString(m["suggestion"]),
		}
		if r.ID == "" {
			r.ID = opts.NewID()
		}
		risks = append(risks, r)
	}
	return risks
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}

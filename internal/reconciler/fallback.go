package reconciler

import (
	"regexp"
	"strings"

	"legalflow/internal/model"
)

// Keyword lists cover both languages the assistant answers in.
var (
	dangerWords  = []string{"опасно", "риск", "danger", "risk"}
	successWords = []string{"отлично", "хорошо", "успех", "excellent", "success", "good"}

	riskSentenceRe = regexp.MustCompile(`(?i)(?:риск|опасность|проблема|risk|danger|problem):\s*([^.!?]+)`)
)

const (
	dangerImpact    = -20
	successImpact   = 10
	maxProseRisks   = 3
	riskTitleLength = 50
)

var proseSeverities = [maxProseRisks]model.Severity{model.SeverityHigh, model.SeverityMedium, model.SeverityLow}

// textFallback reads unstructured prose with keyword heuristics. It always succeeds.
func textFallback(text string, opts Options) candidate {
	preview := strings.TrimSpace(truncateRunes(stripBraces(text), PreviewLength))
	lower := strings.ToLower(text)

	state, impact := string(model.StateIdle), 0
	switch {
	case containsAny(lower, dangerWords):
		state, impact = string(model.StateDanger), dangerImpact
	case containsAny(lower, successWords):
		state, impact = string(model.StateSuccess), successImpact
	}

	risks := []interface{}{}
	for i, m := range riskSentenceRe.FindAllStringSubmatch(text, maxProseRisks) {
		desc := strings.TrimSpace(m[1])
		if desc == "" {
			continue
		}
		risks = append(risks, map[string]interface{}{
			"id":              opts.NewID(),
			"title":           truncateRunes(desc, riskTitleLength),
			"description":     desc,
			"severity":        proseSeverities[i].String(),
			"matrixReference": "Level: " + opts.DomainDescription,
			"suggestion":      FallbackSuggestion,
		})
	}

	return candidate{
		"commentary":   preview,
		"state":        state,
		"healthImpact": float64(impact),
		"risks":        risks,
	}
}

func stripBraces(s string) string {
	return strings.NewReplacer("{", "", "}", "").Replace(s)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

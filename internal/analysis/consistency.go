package analysis

import (
	"fmt"
	"strings"

	"legalflow/internal/model"
)

const (
	lowScorePercent  = 20
	highScorePercent = 80

	AutoRiskID            = "auto_risk_no_answers"
	DefaultSummary        = "Analysis completed."
	DefaultAssessment     = "Additional analysis required."
	risksIdentifiedPrefix = "⚠️ Risks identified! "
)

// allClearPhrases are the ways a rollup claims nothing is wrong.
var allClearPhrases = []string{
	"no risks found", "no risk found", "no risks identified", "risks not identified", "not identified",
	"no problems", "all in order", "everything is in order", "meets all requirements",
	"не выявлен", "проблем нет", "все в порядке", "всё в порядке", "соответствует всем требованиям", "риск не обнаружен",
}

var incompletePhrases = []string{"incomplete", "unanswered", "неполная", "не отвечен"}

// Draft is a rollup as authored by the model. A nil RiskMatrix means the field was missing.
type Draft struct {
	Summary           string                 `json:"summary"`
	RiskMatrix        *model.RiskMatrix      `json:"riskMatrix"`
	Recommendations   []model.Recommendation `json:"recommendations"`
	OverallAssessment string                 `json:"overallAssessment"`
}

// Enforce corrects a model-authored rollup so it never contradicts the facts.
func Enforce(d Draft, f Facts) model.FinalAnalysis {
	out := fillDefaults(d, f)
	tally := f.Tally()
	pct := f.ScorePercent()
	low := pct < lowScorePercent

	if n := len(tally.Unanswered); n > 0 {
		notice := "⚠️ The information provided for analysis is incomplete: " + unansweredText(n, len(f.Questions)) + "."
		if !containsAnyFold(out.Summary, incompletePhrases) {
			out.Summary = notice + " " + out.Summary
		}
		if !containsAnyFold(out.OverallAssessment, incompletePhrases) {
			out.OverallAssessment = notice + " Answer every audit question for a complete analysis. " + out.OverallAssessment
		}
	}

	switch {
	case len(tally.No) > 0 || low:
		affirmRisks(&out, f, len(tally.No), pct)
	case f.AllAnswered() && pct >= highScorePercent && !f.UserActivity() && len(f.Risks) == 0:
		forceAllClear(&out, f, pct)
	}
	return out
}

func fillDefaults(d Draft, f Facts) model.FinalAnalysis {
	out := model.FinalAnalysis{
		Summary:           strings.TrimSpace(d.Summary),
		Recommendations:   d.Recommendations,
		OverallAssessment: strings.TrimSpace(d.OverallAssessment),
	}
	if out.Summary == "" {
		out.Summary = DefaultSummary
	}
	if out.OverallAssessment == "" {
		out.OverallAssessment = DefaultAssessment
	}
	if d.RiskMatrix != nil {
		out.RiskMatrix = *d.RiskMatrix
	} else {
		out.RiskMatrix = MatrixFromRisks(f.Risks)
	}
	if out.Recommendations == nil {
		out.Recommendations = []model.Recommendation{}
	}
	return out
}

func affirmRisks(out *model.FinalAnalysis, f Facts, no, pct int) {
	low := pct < lowScorePercent

	if out.RiskMatrix.Empty() && len(f.Risks) == 0 {
		out.RiskMatrix.High = append(out.RiskMatrix.High, autoRisk(f, no, pct))
	}

	switch {
	case containsAnyFold(out.Summary, allClearPhrases):
		out.Summary = risksSummary(no, pct)
	case !containsAnyFold(out.Summary, []string{"risk", "риск"}):
		out.Summary = risksIdentifiedPrefix + out.Summary
	}

	switch {
	case containsAnyFold(out.OverallAssessment, allClearPhrases):
		out.OverallAssessment = risksAssessment(no, pct)
	case !containsAnyFold(out.OverallAssessment, []string{"score", "answer", "балл", "ответ"}):
		if low {
			out.OverallAssessment = fmt.Sprintf("The block score is %d%%, below the norm. %s", pct, out.OverallAssessment)
		} else if no > 0 {
			out.OverallAssessment = fmt.Sprintf(`%s. %s`, noAnswersText(no), out.OverallAssessment)
		}
	}
}

func autoRisk(f Facts, no, pct int) model.Risk {
	r := model.Risk{
		ID:              AutoRiskID,
		Severity:        model.SeverityHigh,
		MatrixReference: f.DomainName,
		Suggestion:      "Comprehensive work is required to eliminate the identified problems and raise the level of compliance.",
	}
	if pct < lowScorePercent {
		r.Title = "Critically low block score"
		r.Description = fmt.Sprintf("The block score is %d%%, far below the norm. This points to systemic problems.", pct)
	} else {
		r.Title = `"No" answers found in audit questions`
		r.Description = fmt.Sprintf(`%s, which indicates risks in this block.`, noAnswersText(no))
	}
	return r
}

func risksSummary(no, pct int) string {
	switch {
	case pct == 0:
		return risksIdentifiedPrefix + "The block score is 0%, which indicates a critical state. Comprehensive remediation is required immediately."
	case pct < lowScorePercent:
		detail := "Potential problems were identified."
		if no > 0 {
			detail = fmt.Sprintf(`Based on the "No" answers to audit questions (%d), potential problems were identified.`, no)
		}
		return fmt.Sprintf("%sThe block score is %d%%, far below the norm. %s Further analysis and action are required.", risksIdentifiedPrefix, pct, detail)
	case no > 0:
		return fmt.Sprintf(`%sBased on the "No" answers to audit questions (%d), potential problems were identified. Further analysis and action are required.`, risksIdentifiedPrefix, no)
	default:
		return risksIdentifiedPrefix + "Further analysis and action are required."
	}
}

func risksAssessment(no, pct int) string {
	switch {
	case pct == 0:
		return "The block score is 0%, which indicates a critical state and systemic problems. Comprehensive work on the identified risks is required immediately."
	case pct < lowScorePercent:
		detail := ""
		if no > 0 {
			detail = noAnswersText(no) + ". "
		}
		return fmt.Sprintf("The block score is %d%%, far below the norm. %sAction is required to eliminate the identified problems.", pct, detail)
	case no > 0:
		return noAnswersText(no) + ", which indicates risks in this block. Action is required to eliminate the identified problems."
	default:
		return "Risks were identified in this block. Action is required to eliminate the identified problems."
	}
}

func forceAllClear(out *model.FinalAnalysis, f Facts, pct int) {
	out.Summary = fmt.Sprintf(`✅ No risks identified. Block "%s" meets all requirements. Every audit question was answered positively, the block score is %d%%.`, f.DomainName, pct)
	out.OverallAssessment = fmt.Sprintf("Score: %d/%d. No risks identified.", f.Score, f.MaxScore)
	out.RiskMatrix = model.RiskMatrix{High: []model.Risk{}, Medium: []model.Risk{}, Low: []model.Risk{}}
	out.Recommendations = []model.Recommendation{{
		Priority:    model.SeverityLow,
		Title:       "Maintain the current level",
		Description: "Keep following the established procedures and requirements to maintain the current level of compliance.",
		Actions: []string{
			"Run internal reviews regularly",
			"Update documentation when needed",
			"Train employees on current requirements",
		},
	}}
}

func noAnswersText(n int) string {
	if n == 1 {
		return `1 "No" answer was given to the audit questions`
	}
	return fmt.Sprintf(`%d "No" answers were given to the audit questions`, n)
}

func unansweredText(n, total int) string {
	switch {
	case n == 1:
		return "one question is unanswered"
	case n == total:
		return "all questions are unanswered"
	default:
		return fmt.Sprintf("%d questions are unanswered", n)
	}
}

func containsAnyFold(s string, phrases []string) bool {
	lower := strings.ToLower(s)
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

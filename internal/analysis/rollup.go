package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"legalflow/internal/model"
)

var ErrNoJSON = errors.New("no JSON object in rollup response")

const (
	maxDefaultRecommendations = 5
	documentExcerptLength     = 200
)

// ParseDraft extracts the rollup object spanning the first '{' to the last '}'.
func ParseDraft(text string) (Draft, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Draft{}, ErrNoJSON
	}
	var d Draft
	if err := json.Unmarshal([]byte(text[start:end+1]), &d); err != nil {
		return Draft{}, fmt.Errorf("decoding rollup: %w", err)
	}
	return d, nil
}

// Default builds a rollup locally when the model could not produce one.
func Default(f Facts) model.FinalAnalysis {
	recs := []model.Recommendation{}
	for i, r := range f.Risks {
		if i == maxDefaultRecommendations {
			break
		}
		recs = append(recs, model.Recommendation{
			Priority:    r.Severity,
			Title:       r.Title,
			Description: r.Description,
			Actions:     []string{r.Suggestion},
		})
	}
	return model.FinalAnalysis{
		Summary:           fmt.Sprintf(`Analysis of level "%s" completed. %d risks identified.`, f.DomainName, len(f.Risks)),
		RiskMatrix:        MatrixFromRisks(f.Risks),
		Recommendations:   recs,
		OverallAssessment: fmt.Sprintf("Score: %d/%d. Attention to the identified risks is required.", f.Score, f.MaxScore),
	}
}

// BuildContext renders the facts and the user profile for the rollup prompt.
func BuildContext(f Facts, p model.Profile) string {
	var b strings.Builder
	tally := f.Tally()
	pct := f.ScorePercent()

	fmt.Fprintf(&b, "Score: %d/%d (%d%%)\n\n", f.Score, f.MaxScore, pct)

	if p.Company != "" || p.Name != "" {
		b.WriteString("User profile:\n")
		writeField(&b, "Name", p.Name)
		writeField(&b, "Company", p.Company)
		writeField(&b, "Industry", p.Industry)
		writeField(&b, "Employees", p.Employees)
		b.WriteString("\n")
	}

	if len(f.Questions) > 0 {
		b.WriteString("Audit questions:\n")
		if n := len(tally.Unanswered); n > 0 {
			fmt.Fprintf(&b, "\n⚠️ IMPORTANT:\n%d of %d audit questions are unanswered. The information provided for analysis is incomplete.\n", n, len(f.Questions))
			b.WriteString("You MUST state in summary and overallAssessment that the information provided for analysis is incomplete.\nUnanswered questions:\n")
			writeQuestions(&b, tally.Unanswered)
			b.WriteString("\n")
		}
		switch {
		case len(tally.No) > 0 || pct < lowScorePercent:
			b.WriteString("\n🚨 CRITICAL:\n")
			if pct < lowScorePercent {
				fmt.Fprintf(&b, "The block score is %d%% (%d/%d). This necessarily means risks exist.\n", pct, f.Score, f.MaxScore)
			}
			if len(tally.No) > 0 {
				fmt.Fprintf(&b, "%d questions were answered \"No\". This necessarily means risks exist in this block.\nQuestions answered \"No\":\n", len(tally.No))
				writeQuestions(&b, tally.No)
			}
			b.WriteString("\nYou MUST state that risks were identified and MUST NOT claim that everything meets the requirements.\n\n")
		case f.AllAnswered() && pct >= highScorePercent && !f.UserActivity() && len(f.Risks) == 0:
			fmt.Fprintf(&b, "\n✅ IMPORTANT:\nAll %d audit questions were answered \"Yes\" and the block score is %d%% (%d/%d).\n", len(tally.Yes), pct, f.Score, f.MaxScore)
			b.WriteString("The user uploaded no documents and asked no questions. No risks were reported.\nYou MUST state that no risks were identified.\n\n")
		}
		for i, q := range f.Questions {
			fmt.Fprintf(&b, "%d. %s - Answer: %s\n", i+1, q.Text, answerLabel(q.Answer))
		}
		b.WriteString("\n")
	}

	if docs := f.Documents(); len(docs) > 0 {
		fmt.Fprintf(&b, "Documents in chat (%d):\n", len(docs))
		for i, d := range docs {
			fmt.Fprintf(&b, "Document %d: %s...\n", i+1, truncate(d.Content, documentExcerptLength))
		}
		b.WriteString("\n")
	}

	if len(f.Risks) > 0 {
		fmt.Fprintf(&b, "Identified risks (%d):\n", len(f.Risks))
		for i, r := range f.Risks {
			fmt.Fprintf(&b, "%d. [%s] %s: %s\n", i+1, r.Severity, r.Title, r.Description)
		}
	}
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "- %s: %s\n", label, value)
	}
}

func writeQuestions(b *strings.Builder, qs []model.QuestionStatus) {
	for i, q := range qs {
		fmt.Fprintf(b, "%d. %s\n", i+1, q.Text)
	}
}

func answerLabel(a *bool) string {
	switch {
	case a == nil:
		return "Unanswered"
	case *a:
		return "Yes"
	default:
		return "No"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package analysis

import (
	"strings"
	"testing"

	"legalflow/internal/model"
)

func boolPtr(b bool) *bool { return &b }

func questions(answers ...*bool) []model.QuestionStatus {
	out := make([]model.QuestionStatus, len(answers))
	for i, a := range answers {
		out[i] = model.QuestionStatus{
			Question: model.Question{ID: string(rune('a' + i)), Text: "Question " + string(rune('A'+i)), Points: 10},
			Answer:   a,
		}
	}
	return out
}

func TestAggregateSortsAndDedupes(t *testing.T) {
	risks := []model.Risk{
		{ID: "1", Severity: model.SeverityLow},
		{ID: "2", Severity: model.SeverityHigh},
		{ID: "3", Severity: model.ParseSeverity("Medium")},
		{ID: "4", Severity: model.SeverityHigh},
	}
	got := Aggregate(risks)
	wantIDs := []string{"2", "4", "3", "1"}
	if len(got) != len(wantIDs) {
		t.Fatalf("expected %d risks, got %d", len(wantIDs), len(got))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestAggregateRisksAcrossTurns(t *testing.T) {
	turns := []model.Turn{
		{Role: model.RoleUser, Content: "hi"},
		{Role: model.RoleAssistant, Risks: []model.Risk{{ID: "a", Title: "first", Severity: model.SeverityMedium}, {ID: "x", Severity: model.SeverityUnknown}}},
		{Role: model.RoleAssistant, Risks: []model.Risk{{ID: "a", Title: "second", Severity: model.SeverityHigh}, {ID: "b", Severity: model.SeverityLow}}},
	}
	got := AggregateRisks(turns)
	if len(got) != 3 {
		t.Fatalf("expected 3 unique risks, got %d", len(got))
	}
	if got[0].ID != "a" || got[0].Title != "first" {
		t.Errorf("expected first occurrence of a to win, got %+v", got[0])
	}
	if got[2].ID != "x" {
		t.Errorf("expected unknown severity last, got %s", got[2].ID)
	}
}

func TestEnforceAffirmsRisksOnNoAnswers(t *testing.T) {
	f := Facts{
		DomainName: "HR Jungle",
		Questions:  questions(boolPtr(false), boolPtr(false), boolPtr(true)),
		Score:      15,
		MaxScore:   100,
	}
	d := Draft{
		Summary:           "No risks found, everything is great.",
		RiskMatrix:        &model.RiskMatrix{},
		OverallAssessment: "The company meets all requirements.",
	}
	out := Enforce(d, f)

	if out.RiskMatrix.Empty() {
		t.Fatal("expected a synthesized risk")
	}
	r := out.RiskMatrix.High[0]
	if r.ID != AutoRiskID || r.Severity != model.SeverityHigh || !strings.Contains(r.Description, "15%") {
		t.Errorf("unexpected auto risk %+v", r)
	}
	if containsAnyFold(out.Summary, allClearPhrases) {
		t.Errorf("summary still claims all clear: %q", out.Summary)
	}
	if containsAnyFold(out.OverallAssessment, allClearPhrases) {
		t.Errorf("assessment still claims all clear: %q", out.OverallAssessment)
	}
	if !strings.Contains(out.Summary, "15%") || !strings.Contains(out.Summary, "(2)") {
		t.Errorf("summary should cite score and no count: %q", out.Summary)
	}
}

func TestEnforceAutoRiskForNoAnswersWithGoodScore(t *testing.T) {
	f := Facts{
		DomainName: "Tax",
		Questions:  questions(boolPtr(true), boolPtr(false)),
		Score:      60,
		MaxScore:   100,
	}
	out := Enforce(Draft{Summary: "Some observations.", RiskMatrix: &model.RiskMatrix{}}, f)
	if len(out.RiskMatrix.High) != 1 || !strings.Contains(out.RiskMatrix.High[0].Title, `"No"`) {
		t.Errorf("unexpected matrix %+v", out.RiskMatrix)
	}
	if !strings.HasPrefix(out.Summary, risksIdentifiedPrefix) {
		t.Errorf("expected risks prefix, got %q", out.Summary)
	}
	if !strings.Contains(out.OverallAssessment, `1 "No" answer`) {
		t.Errorf("expected assessment to cite the no answer, got %q", out.OverallAssessment)
	}
}

func TestEnforceKeepsExistingRisks(t *testing.T) {
	raw := []model.Risk{{ID: "r", Title: "Real", Severity: model.SeverityMedium}}
	f := Facts{Questions: questions(boolPtr(false)), Score: 50, MaxScore: 100, Risks: raw}
	out := Enforce(Draft{Summary: "One risk was found."}, f)
	if out.RiskMatrix.Len() != 1 || out.RiskMatrix.Medium[0].ID != "r" {
		t.Errorf("expected matrix built from raw risks, got %+v", out.RiskMatrix)
	}
	if out.Summary != "One risk was found." {
		t.Errorf("summary mentioning risk should be kept, got %q", out.Summary)
	}
}

func TestEnforceForcesAllClear(t *testing.T) {
	f := Facts{
		DomainName: "Primary Audit",
		Questions:  questions(boolPtr(true), boolPtr(true), boolPtr(true)),
		Score:      100,
		MaxScore:   100,
		Turns:      []model.Turn{{Role: model.RoleAssistant, Content: "Welcome!"}},
	}
	d := Draft{
		Summary:         "Several risks were found.",
		RiskMatrix:      &model.RiskMatrix{High: []model.Risk{{ID: "h"}}, Low: []model.Risk{{ID: "l"}}},
		Recommendations: []model.Recommendation{{Title: "a"}, {Title: "b"}},
	}
	out := Enforce(d, f)
	if !out.RiskMatrix.Empty() {
		t.Errorf("expected empty matrix, got %+v", out.RiskMatrix)
	}
	if len(out.Recommendations) != 1 || out.Recommendations[0].Priority != model.SeverityLow {
		t.Errorf("expected single low recommendation, got %+v", out.Recommendations)
	}
	if !strings.Contains(out.Summary, "No risks identified") || !strings.Contains(out.Summary, "100%") {
		t.Errorf("unexpected summary %q", out.Summary)
	}
	if out.OverallAssessment != "Score: 100/100. No risks identified." {
		t.Errorf("unexpected assessment %q", out.OverallAssessment)
	}
}

func TestEnforceAllClearNeedsNoUserActivity(t *testing.T) {
	f := Facts{
		Questions: questions(boolPtr(true)),
		Score:     90,
		MaxScore:  100,
		Turns:     []model.Turn{{Role: model.RoleUser, Content: "Is my contract ok?"}},
	}
	d := Draft{Summary: "Some risks remain.", RiskMatrix: &model.RiskMatrix{Low: []model.Risk{{ID: "l"}}}, OverallAssessment: "Fine."}
	out := Enforce(d, f)
	if out.Summary != "Some risks remain." || out.RiskMatrix.Len() != 1 || out.OverallAssessment != "Fine." {
		t.Errorf("expected verbatim rollup, got %+v", out)
	}
}

func TestEnforceUnansweredNotice(t *testing.T) {
	f := Facts{Questions: questions(boolPtr(true), nil, nil), Score: 50, MaxScore: 100}
	out := Enforce(Draft{Summary: "Summary.", OverallAssessment: "Assessment."}, f)
	if !strings.Contains(out.Summary, "2 questions are unanswered") || !strings.HasSuffix(out.Summary, "Summary.") {
		t.Errorf("unexpected summary %q", out.Summary)
	}
	if !strings.Contains(out.OverallAssessment, "incomplete") {
		t.Errorf("unexpected assessment %q", out.OverallAssessment)
	}

	already := Enforce(Draft{Summary: "Data is incomplete.", OverallAssessment: "Some questions are unanswered."}, f)
	if already.Summary != "Data is incomplete." || already.OverallAssessment != "Some questions are unanswered." {
		t.Errorf("notice should not be duplicated: %+v", already)
	}

	one := Enforce(Draft{}, Facts{Questions: questions(boolPtr(true), nil), Score: 50, MaxScore: 100})
	if !strings.Contains(one.Summary, "one question is unanswered") {
		t.Errorf("unexpected summary %q", one.Summary)
	}
	all := Enforce(Draft{}, Facts{Questions: questions(nil, nil), Score: 50, MaxScore: 100})
	if !strings.Contains(all.Summary, "all questions are unanswered") {
		t.Errorf("unexpected summary %q", all.Summary)
	}
}

func TestEnforceFillsDefaults(t *testing.T) {
	raw := []model.Risk{{ID: "1", Severity: model.SeverityHigh}, {ID: "2", Severity: model.SeverityLow}}
	f := Facts{Questions: questions(boolPtr(true)), Score: 50, MaxScore: 100, Risks: raw}
	out := Enforce(Draft{}, f)
	if out.Summary != DefaultSummary || out.OverallAssessment != DefaultAssessment {
		t.Errorf("unexpected defaults %+v", out)
	}
	if len(out.RiskMatrix.High) != 1 || len(out.RiskMatrix.Low) != 1 {
		t.Errorf("expected matrix from raw risks, got %+v", out.RiskMatrix)
	}
	if out.Recommendations == nil {
		t.Error("expected non-nil recommendations")
	}
}

func TestZeroScoreTemplate(t *testing.T) {
	f := Facts{Questions: questions(boolPtr(false)), Score: 0, MaxScore: 100}
	out := Enforce(Draft{Summary: "All in order.", OverallAssessment: "No problems."}, f)
	if !strings.Contains(out.Summary, "0%") || !strings.Contains(out.OverallAssessment, "0%") {
		t.Errorf("expected 0%% templates, got %+v", out)
	}
	if out.RiskMatrix.High[0].Title != "Critically low block score" {
		t.Errorf("unexpected auto risk %+v", out.RiskMatrix.High[0])
	}
}

func TestHashTracksInputs(t *testing.T) {
	base := Facts{
		Questions: questions(boolPtr(true), nil),
		Risks:     []model.Risk{{ID: "a"}, {ID: "b"}},
		Turns:     []model.Turn{{}, {}},
	}
	h := base.Hash()

	reordered := base
	reordered.Risks = []model.Risk{{ID: "b"}, {ID: "a"}}
	if reordered.Hash() != h {
		t.Error("risk id order should not change the hash")
	}

	moreTurns := base
	moreTurns.Turns = append([]model.Turn{}, base.Turns...)
	moreTurns.Turns = append(moreTurns.Turns, model.Turn{})
	if moreTurns.Hash() == h {
		t.Error("turn count should change the hash")
	}

	answered := base
	answered.Questions = questions(boolPtr(true), boolPtr(false))
	if answered.Hash() == h {
		t.Error("answer vector should change the hash")
	}

	unsetVsFalse := base
	unsetVsFalse.Questions = questions(boolPtr(true), boolPtr(false))
	if unsetVsFalse.Hash() == base.Hash() {
		t.Error("unset and false must hash differently")
	}
}

func TestDefault(t *testing.T) {
	var risks []model.Risk
	for i := 0; i < 7; i++ {
		risks = append(risks, model.Risk{ID: string(rune('a' + i)), Title: "t", Severity: model.SeverityMedium, Suggestion: "fix"})
	}
	out := Default(Facts{DomainName: "Tax", Score: 40, MaxScore: 250, Risks: risks})
	if len(out.Recommendations) != 5 {
		t.Errorf("expected 5 recommendations, got %d", len(out.Recommendations))
	}
	if out.Recommendations[0].Actions[0] != "fix" {
		t.Errorf("unexpected recommendation %+v", out.Recommendations[0])
	}
	if len(out.RiskMatrix.Medium) != 7 {
		t.Errorf("expected 7 medium risks, got %d", len(out.RiskMatrix.Medium))
	}
	if !strings.Contains(out.Summary, "7 risks") || out.OverallAssessment != "Score: 40/250. Attention to the identified risks is required." {
		t.Errorf("unexpected text %+v", out)
	}
}

func TestParseDraft(t *testing.T) {
	d, err := ParseDraft("Result:\n{\"summary\": \"S\", \"riskMatrix\": {\"high\": [{\"id\": \"1\", \"severity\": \"high\"}], \"medium\": [], \"low\": []}, \"recommendations\": [{\"priority\": \"low\", \"title\": \"T\", \"actions\": [\"a\"]}]}\nDone")
	if err != nil {
		t.Fatal(err)
	}
	if d.RiskMatrix == nil || d.RiskMatrix.High[0].Severity != model.SeverityHigh {
		t.Errorf("unexpected matrix %+v", d.RiskMatrix)
	}
	if d.Recommendations[0].Priority != model.SeverityLow {
		t.Errorf("unexpected recommendation %+v", d.Recommendations[0])
	}

	d, _ = ParseDraft(`{"summary": "S"}`)
	if d.RiskMatrix != nil {
		t.Error("missing matrix should stay nil")
	}
	if _, err := ParseDraft("no json here"); err != ErrNoJSON {
		t.Errorf("expected ErrNoJSON, got %v", err)
	}
	if _, err := ParseDraft("{broken"); err == nil {
		t.Error("expected error")
	}
}

func TestBuildContext(t *testing.T) {
	f := Facts{
		Questions: questions(boolPtr(true), boolPtr(false), nil),
		Score:     10,
		MaxScore:  100,
		Risks:     []model.Risk{{ID: "r", Title: "Late salary", Description: "paid monthly", Severity: model.SeverityHigh}},
		Turns:     []model.Turn{{Role: model.RoleUser, Content: strings.Repeat("contract text ", 30)}},
	}
	ctx := BuildContext(f, model.Profile{Name: "Anna", Company: "Acme", Employees: "25"})

	for _, want := range []string{
		"Score: 10/100 (10%)",
		"- Company: Acme",
		"- Employees: 25",
		"1 of 3 audit questions are unanswered",
		"CRITICAL",
		"2. Question B - Answer: No",
		"3. Question C - Answer: Unanswered",
		"Documents in chat (1)",
		"1. [HIGH] Late salary: paid monthly",
	} {
		if !strings.Contains(ctx, want) {
			t.Errorf("context missing %q:\n%s", want, ctx)
		}
	}
}

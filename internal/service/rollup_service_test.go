package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"legalflow/internal/llm"
	"legalflow/internal/model"
	"legalflow/internal/store"
)

const allClearRollup = `{"summary": "No risks found, all in order.", "riskMatrix": {"high": [], "medium": [], "low": []},
 "recommendations": [], "overallAssessment": "The company meets all requirements."}`

func TestFinalAnalysisEnforcesAndCaches(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.audit.Answer(ctx, "a@b.c", "hr_jungle", "contracts_signed", true)
	f.audit.Answer(ctx, "a@b.c", "hr_jungle", "no_civil_substitution", false)
	f.completer.set(allClearRollup, nil)

	out, err := f.rollup.FinalAnalysis(ctx, "a@b.c", "hr_jungle")
	if err != nil {
		t.Fatalf("FinalAnalysis: %v", err)
	}
	if out.RiskMatrix.Empty() {
		t.Error("a no answer must produce at least one risk")
	}
	if strings.Contains(strings.ToLower(out.Summary), "all in order") {
		t.Errorf("summary still claims all clear: %q", out.Summary)
	}
	if f.completer.opts[0].MaxTokens != 3000 {
		t.Errorf("expected rollup token limit, got %+v", f.completer.opts[0])
	}
	if !strings.Contains(f.completer.lastPrompt(), "HR Jungle") {
		t.Error("rollup prompt should name the domain")
	}

	again, err := f.rollup.FinalAnalysis(ctx, "a@b.c", "hr_jungle")
	if err != nil {
		t.Fatal(err)
	}
	if f.completer.calls() != 1 {
		t.Errorf("unchanged inputs should hit the cache, got %d calls", f.completer.calls())
	}
	if again.Summary != out.Summary {
		t.Error("cached analysis differs")
	}

	f.audit.Answer(ctx, "a@b.c", "hr_jungle", "salary_on_time", true)
	if _, err := f.rollup.FinalAnalysis(ctx, "a@b.c", "hr_jungle"); err != nil {
		t.Fatal(err)
	}
	if f.completer.calls() != 2 {
		t.Errorf("a new answer should invalidate the cache, got %d calls", f.completer.calls())
	}
}

func TestFinalAnalysisForcesAllClear(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	for _, q := range []string{"regime_fits", "counterparty_check", "reporting_on_time", "primary_documents", "cash_register", "reconciliation"} {
		if _, err := f.audit.Answer(ctx, "a@b.c", "tax_labyrinth", q, true); err != nil {
			t.Fatal(err)
		}
	}
	f.completer.set(`{"summary": "Several risks were found.", "riskMatrix": {"high": [{"id": "x", "severity": "HIGH"}], "medium": [], "low": []}}`, nil)

	out, err := f.rollup.FinalAnalysis(ctx, "a@b.c", "tax_labyrinth")
	if err != nil {
		t.Fatal(err)
	}
	if !out.RiskMatrix.Empty() || len(out.Recommendations) != 1 || out.Recommendations[0].Priority != model.SeverityLow {
		t.Errorf("expected forced all-clear, got %+v", out)
	}
}

func TestFinalAnalysisFallsBackWithoutCaching(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.audit.Answer(ctx, "a@b.c", "hr_jungle", "contracts_signed", false)
	f.completer.set("", llm.ErrTimeout)

	out, err := f.rollup.FinalAnalysis(ctx, "a@b.c", "hr_jungle")
	if err != nil {
		t.Fatalf("fallback should not fail: %v", err)
	}
	if len(out.RiskMatrix.High) != 1 {
		t.Errorf("expected the synthesized risk, got %+v", out.RiskMatrix)
	}
	if !strings.Contains(out.Summary, "unanswered") {
		t.Errorf("expected incomplete notice, got %q", out.Summary)
	}

	f.completer.set("no json at all", nil)
	if _, err := f.rollup.FinalAnalysis(ctx, "a@b.c", "hr_jungle"); err != nil {
		t.Fatal(err)
	}
	if f.completer.calls() != 2 {
		t.Errorf("fallback results must not be cached, got %d calls", f.completer.calls())
	}
}

func TestFinalAnalysisUsesProfile(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.users.Create(ctx, &model.User{Email: "a@b.c", Profile: model.Profile{Company: "Acme Ltd"}})
	f.completer.set(allClearRollup, nil)

	if _, err := f.rollup.FinalAnalysis(ctx, "a@b.c", "judicial_fortress"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(f.completer.lastPrompt(), "Acme Ltd") {
		t.Error("rollup prompt should include the profile")
	}
}

func TestFinalAnalysisUnknownDomain(t *testing.T) {
	f := newFixture(t, nil)
	if _, err := f.rollup.FinalAnalysis(context.Background(), "a@b.c", "nowhere"); !errors.Is(err, ErrUnknownDomain) {
		t.Errorf("expected ErrUnknownDomain, got %v", err)
	}
}

func TestFactsGathersLocalState(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.audit.Answer(ctx, "a@b.c", "hr_jungle", "contracts_signed", true)
	f.completer.set(dangerResponse, nil)
	f.audit.SendMessage(ctx, "a@b.c", "hr_jungle", "Our contracts have no probation clause")

	facts, err := f.rollup.Facts(ctx, "hr_jungle")
	if err != nil {
		t.Fatalf("Facts: %v", err)
	}
	if facts.DomainName != "HR Jungle" || facts.MaxScore != 250 {
		t.Errorf("unexpected domain facts %+v", facts)
	}
	if facts.Score != 30 {
		t.Errorf("expected score 30, got %d", facts.Score)
	}
	if len(facts.Questions) != 6 || len(facts.Turns) != 2 || len(facts.Risks) != 1 {
		t.Errorf("unexpected facts: %d questions, %d turns, %d risks", len(facts.Questions), len(facts.Turns), len(facts.Risks))
	}
}

func TestFactsReturnsReadErrors(t *testing.T) {
	f := newFixtureOn(t, nil, unreadableStore{Store: store.NewMemory(), prefix: "turns:"})
	if _, err := f.rollup.Facts(context.Background(), "hr_jungle"); err == nil {
		t.Error("expected the conversation read error")
	}
	if _, err := f.rollup.FinalAnalysis(context.Background(), "a@b.c", "hr_jungle"); err == nil {
		t.Error("FinalAnalysis should not analyze without the conversation")
	}
}

package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"legalflow/internal/catalog"
	"legalflow/internal/model"
	"legalflow/internal/repository"
	"legalflow/internal/store"
)

const testCatalog = `
domains:
  - id: d
    name: Test
    maxPoints: 100
    questions:
      - {id: q30, points: 30}
      - {id: q50, points: 50}
      - {id: q20, points: 20}
  - id: small
    name: Small
    maxPoints: 40
    questions:
      - {id: q, points: 40}
`

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	c, err := catalog.Load([]byte(testCatalog))
	if err != nil {
		t.Fatal(err)
	}
	s := store.NewMemory()
	return New(c, repository.NewAnswerRepo(s), repository.NewScoreRepo(s))
}

func boolPtr(b bool) *bool { return &b }

func TestAnswerDeltaTable(t *testing.T) {
	tests := []struct {
		name string
		old  *bool
		new  bool
		want int
	}{
		{"true to true", boolPtr(true), true, 0},
		{"true to false", boolPtr(true), false, -30},
		{"false to true", boolPtr(false), true, 30},
		{"false to false", boolPtr(false), false, 0},
		{"unset to true", nil, true, 30},
		{"unset to false", nil, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AnswerDelta(tt.old, tt.new, 30); got != tt.want {
				t.Errorf("AnswerDelta = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEndToEndScenario(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)

	score, err := l.ApplyAnswerChange(ctx, "d", "q30", true)
	if err != nil || score != 30 {
		t.Fatalf("after yes: score=%d err=%v, want 30", score, err)
	}
	score, _ = l.ApplyAnswerChange(ctx, "d", "q30", false)
	if score != 0 {
		t.Fatalf("after no: score=%d, want 0", score)
	}
	score, _ = l.ApplyHealthImpact(ctx, "d", 10)
	if score != 20 {
		t.Fatalf("after impact +10: score=%d, want 20", score)
	}
}

func TestReapplyingSameAnswerIsIdempotent(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)

	first, _ := l.ApplyAnswerChange(ctx, "d", "q50", true)
	second, _ := l.ApplyAnswerChange(ctx, "d", "q50", true)
	if first != 50 || second != 50 {
		t.Errorf("expected 50 twice, got %d then %d", first, second)
	}

	l.ApplyAnswerChange(ctx, "d", "q20", false)
	again, _ := l.ApplyAnswerChange(ctx, "d", "q20", false)
	if again != 50 {
		t.Errorf("expected repeated no to keep 50, got %d", again)
	}
}

func TestAnswerSequenceMatchesDeltaSum(t *testing.T) {
	ctx := context.Background()
	sequence := []bool{true, true, false, false, true, false, true}

	l := newTestLedger(t)
	var old *bool
	expected := 0
	for _, a := range sequence {
		expected = Clamp(expected+AnswerDelta(old, a, 30), 0, 100)
		old = boolPtr(a)
		got, err := l.ApplyAnswerChange(ctx, "d", "q30", a)
		if err != nil {
			t.Fatal(err)
		}
		if got != expected {
			t.Fatalf("after %v: got %d, want %d", a, got, expected)
		}
	}
}

func TestHealthImpactStaysInBounds(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)

	impacts := []int{50, 50, 1000, -7, -50, -50, -50, -999, 3, 50}
	for _, imp := range impacts {
		score, err := l.ApplyHealthImpact(ctx, "small", imp)
		if err != nil {
			t.Fatal(err)
		}
		if score < 0 || score > 40 {
			t.Fatalf("impact %d left score %d outside [0, 40]", imp, score)
		}
	}

	// 1000 is clamped to 50 before scaling.
	l2 := newTestLedger(t)
	if got, _ := l2.ApplyHealthImpact(ctx, "d", 1000); got != 100 {
		t.Errorf("expected clamp to 100, got %d", got)
	}
	if got, _ := l2.ApplyHealthImpact(ctx, "d", -20); got != 60 {
		t.Errorf("expected 60 after -20, got %d", got)
	}
}

func TestUnknownEntriesAreNoOps(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	l.ApplyAnswerChange(ctx, "d", "q20", true)

	score, err := l.ApplyAnswerChange(ctx, "d", "missing", true)
	if err != nil || score != 20 {
		t.Errorf("unknown question: score=%d err=%v, want 20", score, err)
	}
	if score, err := l.ApplyAnswerChange(ctx, "nope", "q", true); err != nil || score != 0 {
		t.Errorf("unknown domain: score=%d err=%v, want 0", score, err)
	}
	if score, err := l.ApplyHealthImpact(ctx, "nope", 10); err != nil || score != 0 {
		t.Errorf("unknown domain: score=%d err=%v, want 0", score, err)
	}
	total, _ := l.TotalScore(ctx)
	if total != 20 {
		t.Errorf("expected total 20, got %d", total)
	}
}

func TestTotalScoreHasNoCrossDomainClamp(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	l.ApplyHealthImpact(ctx, "d", 50)
	l.ApplyHealthImpact(ctx, "small", 50)

	total, err := l.TotalScore(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if total != 140 {
		t.Errorf("expected 140, got %d", total)
	}
	scores, _ := l.Scores(ctx)
	if len(scores) != 2 {
		t.Errorf("expected every domain in Scores, got %v", scores)
	}
}

func TestAnswersAreTriState(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	l.ApplyAnswerChange(ctx, "d", "q30", true)
	l.ApplyAnswerChange(ctx, "d", "q50", false)

	statuses, err := l.Answers(ctx, "d")
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(statuses))
	}
	if statuses[0].Answer == nil || !*statuses[0].Answer {
		t.Error("expected q30 answered yes")
	}
	if statuses[1].Answer == nil || *statuses[1].Answer {
		t.Error("expected q50 answered no")
	}
	if statuses[2].Answer != nil {
		t.Error("expected q20 unanswered")
	}
}

func TestConcurrentMutationsKeepBounds(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			impact := 50
			if i%2 == 0 {
				impact = -50
			}
			l.ApplyHealthImpact(ctx, "small", impact)
			l.ApplyAnswerChange(ctx, "small", "q", i%3 == 0)
		}(i)
	}
	wg.Wait()

	score, _ := l.Score(ctx, "small")
	if score < 0 || score > 40 {
		t.Errorf("score %d escaped [0, 40]", score)
	}
}

type failingScores struct{ repository.ScoreRepo }

func (failingScores) Get(context.Context, string) (int, error) { return 0, errors.New("store down") }

func TestStorageErrorsAreReturned(t *testing.T) {
	c, _ := catalog.Load([]byte(testCatalog))
	s := store.NewMemory()
	l := New(c, repository.NewAnswerRepo(s), failingScores{repository.NewScoreRepo(s)})

	if _, err := l.ApplyAnswerChange(context.Background(), "d", "q30", true); err == nil {
		t.Error("expected storage error")
	}
	if _, err := l.ApplyHealthImpact(context.Background(), "d", 5); err == nil {
		t.Error("expected storage error")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		score, min, max, want int
	}{
		{5, 0, 10, 5},
		{-3, 0, 10, 0},
		{11, 0, 10, 10},
		{-60, -50, 50, -50},
		{60, -50, 50, 50},
		{-20, -50, 50, -20},
		{0, 0, 0, 0},
	}
	for _, tt := range tests {
		if got := Clamp(tt.score, tt.min, tt.max); got != tt.want {
			t.Errorf("Clamp(%d, %d, %d) = %d, want %d", tt.score, tt.min, tt.max, got, tt.want)
		}
	}
}

// flakyScores fails the next failSets calls to Set.
type flakyScores struct {
	repository.ScoreRepo
	failSets int
}

func (f *flakyScores) Set(ctx context.Context, domainID string, score int) error {
	if f.failSets > 0 {
		f.failSets--
		return errors.New("disk full")
	}
	return f.ScoreRepo.Set(ctx, domainID, score)
}

// flakyAnswers fails the next failSaves calls to Save.
type flakyAnswers struct {
	repository.AnswerRepo
	failSaves int
}

func (f *flakyAnswers) Save(ctx context.Context, a *model.Answer) error {
	if f.failSaves > 0 {
		f.failSaves--
		return errors.New("disk full")
	}
	return f.AnswerRepo.Save(ctx, a)
}

func TestFailedScoreWriteKeepsAnswerUnset(t *testing.T) {
	ctx := context.Background()
	c, _ := catalog.Load([]byte(testCatalog))
	s := store.NewMemory()
	scores := &flakyScores{ScoreRepo: repository.NewScoreRepo(s), failSets: 1}
	l := New(c, repository.NewAnswerRepo(s), scores)

	if _, err := l.ApplyAnswerChange(ctx, "d", "q50", true); err == nil {
		t.Fatal("expected storage error")
	}
	answers, _ := l.Answers(ctx, "d")
	for _, a := range answers {
		if a.Answer != nil {
			t.Errorf("answer %s saved although its score was not", a.ID)
		}
	}

	score, err := l.ApplyAnswerChange(ctx, "d", "q50", true)
	if err != nil || score != 50 {
		t.Errorf("retry: got %d, %v; want 50", score, err)
	}
}

func TestFailedAnswerWriteRestoresScore(t *testing.T) {
	ctx := context.Background()
	c, _ := catalog.Load([]byte(testCatalog))
	s := store.NewMemory()
	answers := &flakyAnswers{AnswerRepo: repository.NewAnswerRepo(s), failSaves: 1}
	l := New(c, answers, repository.NewScoreRepo(s))

	if _, err := l.ApplyAnswerChange(ctx, "d", "q30", true); err == nil {
		t.Fatal("expected storage error")
	}
	if score, _ := l.Score(ctx, "d"); score != 0 {
		t.Errorf("score should be restored to 0, got %d", score)
	}

	score, err := l.ApplyAnswerChange(ctx, "d", "q30", true)
	if err != nil || score != 30 {
		t.Errorf("retry: got %d, %v; want 30", score, err)
	}
}

func TestZoneOf(t *testing.T) {
	if ZoneOf(90, 100) != catalog.ZoneHealthy || ZoneOf(50, 100) != catalog.ZoneWarning || ZoneOf(10, 100) != catalog.ZoneCritical {
		t.Error("unexpected zones")
	}
}

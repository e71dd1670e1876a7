package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"legalflow/internal/model"
	"legalflow/internal/store"
)

func TestAnswerRepo(t *testing.T) {
	ctx := context.Background()
	r := NewAnswerRepo(store.NewMemory())

	a, err := r.Get(ctx, "d", "q1")
	if err != nil || a != nil {
		t.Fatalf("expected unset answer, got %v err=%v", a, err)
	}
	if err := r.Save(ctx, &model.Answer{DomainID: "d", QuestionID: "q1", Value: false}); err != nil {
		t.Fatal(err)
	}
	a, _ = r.Get(ctx, "d", "q1")
	if a == nil || a.Value {
		t.Fatalf("expected explicit false, got %v", a)
	}
	r.Save(ctx, &model.Answer{DomainID: "d", QuestionID: "q2", Value: true})
	all, _ := r.ListByDomain(ctx, "d")
	if len(all) != 2 {
		t.Errorf("expected 2 answers, got %d", len(all))
	}
	other, _ := r.ListByDomain(ctx, "other")
	if len(other) != 0 {
		t.Errorf("expected no answers in other domain, got %d", len(other))
	}
}

func TestScoreRepo(t *testing.T) {
	ctx := context.Background()
	r := NewScoreRepo(store.NewMemory())

	if s, _ := r.Get(ctx, "d"); s != 0 {
		t.Errorf("expected zero default, got %d", s)
	}
	r.Set(ctx, "d", 40)
	r.Set(ctx, "e", 10)
	all, err := r.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if all["d"] != 40 || all["e"] != 10 {
		t.Errorf("unexpected scores %v", all)
	}
}

func TestTurnRepoKeepsOrder(t *testing.T) {
	ctx := context.Background()
	r := NewTurnRepo(store.NewMemory())

	for _, c := range []string{"first", "second", "third"} {
		if err := r.Append(ctx, &model.Turn{DomainID: "d", Role: model.RoleUser, Content: c}); err != nil {
			t.Fatal(err)
		}
	}
	turns, _ := r.ListByDomain(ctx, "d")
	if len(turns) != 3 || turns[0].Content != "first" || turns[2].Content != "third" {
		t.Errorf("unexpected turns %+v", turns)
	}
}

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepo(store.NewMemory())

	u := &model.User{Email: " Anna@Example.com ", Password: "pw", RegisteredAt: time.Now()}
	if err := r.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	if err := r.Create(ctx, &model.User{Email: "anna@example.com"}); !errors.Is(err, ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}
	got, _ := r.GetByEmail(ctx, "ANNA@example.com")
	if got == nil || got.Password != "pw" {
		t.Fatalf("expected user, got %v", got)
	}
	got.Profile.Company = "Acme"
	r.Update(ctx, got)
	got, _ = r.GetByEmail(ctx, "anna@example.com")
	if got.Profile.Company != "Acme" {
		t.Errorf("expected profile update, got %+v", got.Profile)
	}
	if missing, _ := r.GetByEmail(ctx, "nobody@example.com"); missing != nil {
		t.Error("expected nil for unknown email")
	}
}

func TestSessionRepo(t *testing.T) {
	ctx := context.Background()
	r := NewSessionRepo(store.NewMemory())

	if cur, _ := r.Current(ctx); cur != "" {
		t.Errorf("expected no session, got %q", cur)
	}
	r.SetCurrent(ctx, "A@B.c")
	if cur, _ := r.Current(ctx); cur != "a@b.c" {
		t.Errorf("expected a@b.c, got %q", cur)
	}
	r.Clear(ctx)
	if cur, _ := r.Current(ctx); cur != "" {
		t.Errorf("expected cleared session, got %q", cur)
	}
}

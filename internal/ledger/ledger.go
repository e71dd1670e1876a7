// Package ledger maintains one bounded score per audit domain.
package ledger

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"legalflow/internal/catalog"
	"legalflow/internal/model"
	"legalflow/internal/repository"
)

const (
	// MaxHealthImpact bounds the impact an analysis may report, in both directions.
	MaxHealthImpact = 50

	// HealthImpactScale converts a reported health impact into score points,
	// so ±50 moves a domain by up to ±100. The calibration of this factor is
	// not documented anywhere; it is kept because existing scores depend on it.
	HealthImpactScale = 2
)

// Catalog is the part of the question catalog the ledger reads.
type Catalog interface {
	Domain(id string) (model.Domain, bool)
	Question(domainID, questionID string) (model.Question, bool)
	Domains() []model.Domain
}

// Ledger applies answer changes and health impacts to domain scores.
// Every mutation of a domain is a read-modify-write done under that domain's lock.
type Ledger struct {
	catalog Catalog
	answers repository.AnswerRepo
	scores  repository.ScoreRepo
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(c Catalog, answers repository.AnswerRepo, scores repository.ScoreRepo) *Ledger {
	return &Ledger{
		catalog: c,
		answers: answers,
		scores:  scores,
		now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (l *Ledger) lock(domainID string) func() {
	l.mu.Lock()
	m, ok := l.locks[domainID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[domainID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// AnswerDelta is the score change for moving a question from old to new.
// A nil old means the question was unanswered.
func AnswerDelta(old *bool, newAnswer bool, points int) int {
	switch {
	case old == nil:
		if newAnswer {
			return points
		}
		return 0
	case *old == newAnswer:
		return 0
	case newAnswer:
		return points
	default:
		return -points
	}
}

// Clamp bounds score to [min, max].
func Clamp(score, min, max int) int {
	if score < min {
		return min
	}
	if score > max {
		return max
	}
	return score
}

// ApplyAnswerChange records newAnswer for the question and returns the domain's new score.
// Unknown domains or questions leave everything unchanged. For an unknown domain the
// returned score is 0 and means nothing; for an unknown question it is the current score.
// The score is written before the answer, and restored if the answer cannot be saved.
func (l *Ledger) ApplyAnswerChange(ctx context.Context, domainID, questionID string, newAnswer bool) (int, error) {
	domain, ok := l.catalog.Domain(domainID)
	if !ok {
		log.Printf("[Ledger] unknown domain %q, answer ignored", domainID)
		return 0, nil
	}
	unlock := l.lock(domainID)
	defer unlock()

	current, err := l.scores.Get(ctx, domainID)
	if err != nil {
		return 0, fmt.Errorf("loading score of %s: %w", domainID, err)
	}
	question, ok := l.catalog.Question(domainID, questionID)
	if !ok {
		log.Printf("[Ledger] unknown question %s/%s, answer ignored", domainID, questionID)
		return current, nil
	}

	prev, err := l.answers.Get(ctx, domainID, questionID)
	if err != nil {
		return current, fmt.Errorf("loading answer %s/%s: %w", domainID, questionID, err)
	}
	var old *bool
	if prev != nil {
		old = &prev.Value
	}

	delta := AnswerDelta(old, newAnswer, question.Points)
	next := Clamp(current+delta, 0, domain.MaxPoints)

	if next != current {
		if err := l.scores.Set(ctx, domainID, next); err != nil {
			return current, fmt.Errorf("saving score of %s: %w", domainID, err)
		}
	}
	if err := l.answers.Save(ctx, &model.Answer{
		DomainID:   domainID,
		QuestionID: questionID,
		Value:      newAnswer,
		AnsweredAt: l.now(),
	}); err != nil {
		if next != current {
			if rerr := l.scores.Set(ctx, domainID, current); rerr != nil {
				log.Printf("[Ledger] ERROR: restoring score of %s after failed answer save: %v", domainID, rerr)
			}
		}
		return current, fmt.Errorf("saving answer %s/%s: %w", domainID, questionID, err)
	}
	return next, nil
}

// ApplyHealthImpact moves the domain score by rawImpact × HealthImpactScale.
// rawImpact outside ±MaxHealthImpact is clamped first. For an unknown domain nothing
// changes and the returned 0 is not a score.
func (l *Ledger) ApplyHealthImpact(ctx context.Context, domainID string, rawImpact int) (int, error) {
	domain, ok := l.catalog.Domain(domainID)
	if !ok {
		log.Printf("[Ledger] unknown domain %q, health impact ignored", domainID)
		return 0, nil
	}
	unlock := l.lock(domainID)
	defer unlock()

	current, err := l.scores.Get(ctx, domainID)
	if err != nil {
		return 0, fmt.Errorf("loading score of %s: %w", domainID, err)
	}
	impact := Clamp(rawImpact, -MaxHealthImpact, MaxHealthImpact)
	next := Clamp(current+impact*HealthImpactScale, 0, domain.MaxPoints)
	if next == current {
		return current, nil
	}
	if err := l.scores.Set(ctx, domainID, next); err != nil {
		return current, fmt.Errorf("saving score of %s: %w", domainID, err)
	}
	return next, nil
}

// Score returns the current score of one domain.
func (l *Ledger) Score(ctx context.Context, domainID string) (int, error) {
	return l.scores.Get(ctx, domainID)
}

// Scores returns the score of every catalog domain, including untouched ones.
func (l *Ledger) Scores(ctx context.Context) (map[string]int, error) {
	stored, err := l.scores.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int)
	for _, d := range l.catalog.Domains() {
		out[d.ID] = stored[d.ID]
	}
	return out, nil
}

// TotalScore sums every domain score. Domains are bounded independently.
func (l *Ledger) TotalScore(ctx context.Context) (int, error) {
	scores, err := l.Scores(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, s := range scores {
		total += s
	}
	return total, nil
}

// Answers returns every question of the domain with its tri-state answer.
func (l *Ledger) Answers(ctx context.Context, domainID string) ([]model.QuestionStatus, error) {
	domain, ok := l.catalog.Domain(domainID)
	if !ok {
		return nil, nil
	}
	stored, err := l.answers.ListByDomain(ctx, domainID)
	if err != nil {
		return nil, err
	}
	out := make([]model.QuestionStatus, 0, len(domain.Questions))
	for _, q := range domain.Questions {
		qs := model.QuestionStatus{Question: q}
		if a, ok := stored[q.ID]; ok {
			v := a.Value
			qs.Answer = &v
		}
		out = append(out, qs)
	}
	return out, nil
}

// ZoneOf maps a score out of max onto its display band.
func ZoneOf(score, max int) catalog.Zone {
	return catalog.ZoneOf(score, max)
}

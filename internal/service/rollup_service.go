package service

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"legalflow/internal/analysis"
	"legalflow/internal/cache"
	"legalflow/internal/catalog"
	"legalflow/internal/config"
	"legalflow/internal/ledger"
	"legalflow/internal/llm"
	"legalflow/internal/model"
	"legalflow/internal/repository"
	"legalflow/internal/telemetry"
)

// Where a final analysis came from, as reported to telemetry.
const (
	sourceCache    = "cache"
	sourceModel    = "model"
	sourceFallback = "fallback"
)

// RollupService produces the final analysis of a domain
type RollupService struct {
	catalog   *catalog.Catalog
	ledger    *ledger.Ledger
	turns     repository.TurnRepo
	users     repository.UserRepo
	cache     cache.AnalysisCache
	completer llm.Completer
	ai        *config.AIConfig
	recorder  telemetry.Recorder
}

// NewRollupService creates a new rollup service
func NewRollupService(
	c *catalog.Catalog,
	l *ledger.Ledger,
	turns repository.TurnRepo,
	users repository.UserRepo,
	analysisCache cache.AnalysisCache,
	completer llm.Completer,
	ai *config.AIConfig,
) *RollupService {
	return &RollupService{
		catalog:   c,
		ledger:    l,
		turns:     turns,
		users:     users,
		cache:     analysisCache,
		completer: completer,
		ai:        ai,
		recorder:  telemetry.Noop{},
	}
}

// SetRecorder sets the telemetry recorder
func (s *RollupService) SetRecorder(r telemetry.Recorder) {
	s.recorder = r
}

// Facts gathers what is known locally about a domain
func (s *RollupService) Facts(ctx context.Context, domainID string) (analysis.Facts, error) {
	domain, ok := s.catalog.Domain(domainID)
	if !ok {
		return analysis.Facts{}, ErrUnknownDomain
	}

	var (
		questions []model.QuestionStatus
		score     int
		turns     []model.Turn
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		questions, err = s.ledger.Answers(gctx, domainID)
		return err
	})
	g.Go(func() error {
		var err error
		score, err = s.ledger.Score(gctx, domainID)
		return err
	})
	g.Go(func() error {
		var err error
		turns, err = s.turns.ListByDomain(gctx, domainID)
		return err
	})
	if err := g.Wait(); err != nil {
		return analysis.Facts{}, err
	}

	return analysis.Facts{
		DomainID:   domainID,
		DomainName: domain.Name,
		Questions:  questions,
		Score:      score,
		MaxScore:   domain.MaxPoints,
		Risks:      analysis.AggregateRisks(turns),
		Turns:      turns,
	}, nil
}

// FinalAnalysis returns the cached rollup when its inputs are unchanged, and
// otherwise asks the model for a new one. Whatever the model says, the result
// never contradicts the answers and the score.
func (s *RollupService) FinalAnalysis(ctx context.Context, email, domainID string) (*model.FinalAnalysis, error) {
	f, err := s.Facts(ctx, domainID)
	if err != nil {
		return nil, err
	}
	hash := f.Hash()

	cached, err := s.cache.Lookup(ctx, domainID, hash)
	if err != nil {
		log.Printf("[Rollup] WARNING: cache lookup for %s failed: %v", domainID, err)
	}
	if cached != nil {
		log.Printf("[Rollup] Using cached analysis for %s", domainID)
		s.recorder.RollupSource(ctx, domainID, sourceCache)
		return cached, nil
	}

	var profile model.Profile
	if user, err := s.users.GetByEmail(ctx, email); err == nil && user != nil {
		profile = user.Profile
	}

	prompt := buildRollupPrompt(f.DomainName, analysis.BuildContext(f, profile), len(f.Risks))
	completion, err := s.completer.Complete(ctx, prompt, llm.CallOptions{
		MaxTokens: s.ai.RollupMaxTokens,
		Timeout:   s.ai.RollupTimeout,
	})
	if err != nil {
		log.Printf("[Rollup] ERROR: completion for %s failed, using local analysis: %v", domainID, err)
		return s.fallback(ctx, f), nil
	}
	draft, err := analysis.ParseDraft(completion.Content)
	if err != nil {
		log.Printf("[Rollup] ERROR: could not parse rollup for %s, using local analysis: %v", domainID, err)
		return s.fallback(ctx, f), nil
	}

	out := analysis.Enforce(draft, f)
	if err := s.cache.Put(ctx, domainID, hash, out); err != nil {
		log.Printf("[Rollup] WARNING: caching analysis for %s failed: %v", domainID, err)
	}
	s.recorder.RollupSource(ctx, domainID, sourceModel)
	return &out, nil
}

// fallback is not cached so the next request retries the model.
func (s *RollupService) fallback(ctx context.Context, f analysis.Facts) *model.FinalAnalysis {
	d := analysis.Default(f)
	out := analysis.Enforce(analysis.Draft{
		Summary:           d.Summary,
		RiskMatrix:        &d.RiskMatrix,
		Recommendations:   d.Recommendations,
		OverallAssessment: d.OverallAssessment,
	}, f)
	s.recorder.RollupSource(ctx, f.DomainID, sourceFallback)
	return &out
}

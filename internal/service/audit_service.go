package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"legalflow/internal/analysis"
	"legalflow/internal/catalog"
	"legalflow/internal/config"
	"legalflow/internal/extract"
	"legalflow/internal/ledger"
	"legalflow/internal/llm"
	"legalflow/internal/model"
	"legalflow/internal/rag"
	"legalflow/internal/reconciler"
	"legalflow/internal/repository"
	"legalflow/internal/telemetry"
)

var (
	ErrUnknownDomain    = errors.New("unknown domain")
	ErrUnknownQuestion  = errors.New("unknown question")
	ErrEmptyText        = errors.New("text is empty")
	ErrAnalysisInFlight = errors.New("an analysis is already running for this domain")
)

// Analysis outcomes reported to telemetry.
const (
	outcomeOK       = "ok"
	outcomeFailed   = "failed"
	outcomeRejected = "rejected"
)

// AuditService handles answers, chat messages and document uploads of the audit domains
type AuditService struct {
	catalog     *catalog.Catalog
	ledger      *ledger.Ledger
	turns       repository.TurnRepo
	completer   llm.Completer
	retriever   rag.Retriever
	extractor   *extract.Extractor
	ai          *config.AIConfig
	ragLimit    int
	recorder    telemetry.Recorder
	broadcaster Broadcaster
	now         func() time.Time
	newID       func() string

	mu       sync.Mutex
	inFlight map[string]bool
	states   map[string]model.AvatarState
}

// NewAuditService creates a new audit service
func NewAuditService(
	c *catalog.Catalog,
	l *ledger.Ledger,
	turns repository.TurnRepo,
	completer llm.Completer,
	retriever rag.Retriever,
	extractor *extract.Extractor,
	ai *config.AIConfig,
	ragLimit int,
) *AuditService {
	return &AuditService{
		catalog:     c,
		ledger:      l,
		turns:       turns,
		completer:   completer,
		retriever:   retriever,
		extractor:   extractor,
		ai:          ai,
		ragLimit:    ragLimit,
		recorder:    telemetry.Noop{},
		broadcaster: nopBroadcaster{},
		now:         time.Now,
		newID:       uuid.NewString,
		inFlight:    make(map[string]bool),
		states:      make(map[string]model.AvatarState),
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *AuditService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetRecorder sets the telemetry recorder
func (s *AuditService) SetRecorder(r telemetry.Recorder) {
	s.recorder = r
}

// Domains returns the audit catalog
func (s *AuditService) Domains() []model.Domain {
	return s.catalog.Domains()
}

// Domain returns one domain with its answers, score and assistant state
func (s *AuditService) Domain(ctx context.Context, domainID string) (*model.DomainView, error) {
	domain, ok := s.catalog.Domain(domainID)
	if !ok {
		return nil, ErrUnknownDomain
	}
	answers, err := s.ledger.Answers(ctx, domainID)
	if err != nil {
		return nil, err
	}
	score, err := s.ledger.Score(ctx, domainID)
	if err != nil {
		return nil, err
	}
	return &model.DomainView{
		Domain:  domain,
		Answers: answers,
		Score:   score,
		Zone:    string(ledger.ZoneOf(score, domain.MaxPoints)),
		State:   s.State(domainID),
	}, nil
}

// Scores returns every domain score and the total
func (s *AuditService) Scores(ctx context.Context) (map[string]int, int, error) {
	scores, err := s.ledger.Scores(ctx)
	if err != nil {
		return nil, 0, err
	}
	total := 0
	for _, v := range scores {
		total += v
	}
	return scores, total, nil
}

// State returns the assistant state of a domain; IDLE until something happens
func (s *AuditService) State(domainID string) model.AvatarState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[domainID]; ok {
		return st
	}
	return model.StateIdle
}

func (s *AuditService) setState(email, domainID string, st model.AvatarState) {
	s.mu.Lock()
	s.states[domainID] = st
	s.mu.Unlock()
	s.broadcaster.BroadcastToUser(email, EventStateChanged, StatePayload{DomainID: domainID, State: string(st)})
}

// Answer records a yes/no answer and returns the new domain score
func (s *AuditService) Answer(ctx context.Context, email, domainID, questionID string, value bool) (*model.AnswerResponse, error) {
	domain, ok := s.catalog.Domain(domainID)
	if !ok {
		return nil, ErrUnknownDomain
	}
	if _, ok := s.catalog.Question(domainID, questionID); !ok {
		return nil, ErrUnknownQuestion
	}

	before, err := s.ledger.Score(ctx, domainID)
	if err != nil {
		return nil, err
	}
	score, err := s.ledger.ApplyAnswerChange(ctx, domainID, questionID, value)
	if err != nil {
		log.Printf("[Audit] ERROR: answer %s/%s: %v", domainID, questionID, err)
		return nil, err
	}
	s.recorder.ScoreChanged(ctx, domainID, "answer", score-before)

	resp, err := s.scoreResponse(ctx, domain, score)
	if err != nil {
		return nil, err
	}
	s.broadcastScore(email, resp)
	return resp, nil
}

func (s *AuditService) scoreResponse(ctx context.Context, domain model.Domain, score int) (*model.AnswerResponse, error) {
	total, err := s.ledger.TotalScore(ctx)
	if err != nil {
		return nil, err
	}
	return &model.AnswerResponse{
		DomainID: domain.ID,
		Score:    score,
		Max:      domain.MaxPoints,
		Zone:     string(ledger.ZoneOf(score, domain.MaxPoints)),
		Total:    total,
	}, nil
}

func (s *AuditService) broadcastScore(email string, r *model.AnswerResponse) {
	s.broadcaster.BroadcastToUser(email, EventScoreUpdated, ScorePayload{
		DomainID: r.DomainID,
		Score:    r.Score,
		Max:      r.Max,
		Zone:     r.Zone,
		Total:    r.Total,
	})
}

// Conversation returns the turns of a domain in order
func (s *AuditService) Conversation(ctx context.Context, domainID string) ([]model.Turn, error) {
	if _, ok := s.catalog.Domain(domainID); !ok {
		return nil, ErrUnknownDomain
	}
	return s.turns.ListByDomain(ctx, domainID)
}

// Risks returns the deduplicated risks reported in a domain, most severe first
func (s *AuditService) Risks(ctx context.Context, domainID string) ([]model.Risk, error) {
	turns, err := s.Conversation(ctx, domainID)
	if err != nil {
		return nil, err
	}
	return analysis.AggregateRisks(turns), nil
}

// begin claims the domain for one analysis. Overlapping submissions are rejected.
func (s *AuditService) begin(domainID string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[domainID] {
		return nil, ErrAnalysisInFlight
	}
	s.inFlight[domainID] = true
	return func() {
		s.mu.Lock()
		delete(s.inFlight, domainID)
		s.mu.Unlock()
	}, nil
}

// SendMessage appends the user's text to the domain chat and analyzes it
func (s *AuditService) SendMessage(ctx context.Context, email, domainID, text string) (*model.MessageResponse, error) {
	domain, ok := s.catalog.Domain(domainID)
	if !ok {
		return nil, ErrUnknownDomain
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	done, err := s.begin(domainID)
	if err != nil {
		s.recorder.AnalysisOutcome(ctx, domainID, outcomeRejected)
		return nil, err
	}
	defer done()

	if err := s.appendTurn(ctx, email, s.userTurn(domainID, text)); err != nil {
		return s.abort(ctx, email, domainID, err)
	}
	return s.analyze(ctx, email, domain, text)
}

// Upload extracts the text of a document and analyzes it like a message
func (s *AuditService) Upload(ctx context.Context, email, domainID string, u extract.Upload) (*model.MessageResponse, error) {
	domain, ok := s.catalog.Domain(domainID)
	if !ok {
		return nil, ErrUnknownDomain
	}
	done, err := s.begin(domainID)
	if err != nil {
		s.recorder.AnalysisOutcome(ctx, domainID, outcomeRejected)
		return nil, err
	}
	defer done()

	s.setState(email, domainID, model.StateAnalyzing)
	text, err := s.extractor.Extract(ctx, u)
	if err != nil {
		return s.fail(ctx, email, domainID, fmt.Sprintf("❌ Could not process %s: %v. Try saving the document as .txt or pasting its text.", u.Filename, err), err)
	}
	if strings.TrimSpace(text) == "" {
		return s.fail(ctx, email, domainID, "⚠️ No text could be extracted from the file. Try uploading it in another format (.txt, .md).", extract.ErrExtraction)
	}

	content := fmt.Sprintf("Uploaded document: %s\n\n%s", u.Filename, text)
	if err := s.appendTurn(ctx, email, s.userTurn(domainID, content)); err != nil {
		return s.abort(ctx, email, domainID, err)
	}
	return s.analyze(ctx, email, domain, text)
}

func (s *AuditService) userTurn(domainID, content string) *model.Turn {
	return &model.Turn{
		ID:        s.newID(),
		DomainID:  domainID,
		Role:      model.RoleUser,
		Content:   content,
		CreatedAt: s.now(),
	}
}

func (s *AuditService) appendTurn(ctx context.Context, email string, t *model.Turn) error {
	if err := s.turns.Append(ctx, t); err != nil {
		return fmt.Errorf("appending turn to %s: %w", t.DomainID, err)
	}
	s.broadcaster.BroadcastToUser(email, EventTurnAppended, t)
	return nil
}

// analyze runs retrieval, completion and reconciliation for text, then applies
// the reported health impact to the domain score.
func (s *AuditService) analyze(ctx context.Context, email string, domain model.Domain, text string) (*model.MessageResponse, error) {
	s.setState(email, domain.ID, model.StateAnalyzing)

	retrieved := s.retriever.Retrieve(ctx, ragQuery(domain.Description, text))
	ragContext := ""
	if rag.Relevant(text, domain.Description, retrieved.Context) {
		ragContext = truncateRunes(retrieved.Context, s.ragLimit)
	} else if retrieved.Context != "" {
		log.Printf("[Audit] Retrieved context is not relevant to %s, skipping it", domain.ID)
	}

	prompt := buildAnalysisPrompt(domain.Description, text, ragContext)
	completion, err := s.completer.Complete(ctx, prompt, llm.CallOptions{
		MaxTokens: s.ai.AnalysisMaxTokens,
		Timeout:   s.ai.AnalysisTimeout,
	})
	if err != nil {
		log.Printf("[Audit] ERROR: completion for %s failed: %v", domain.ID, err)
		return s.fail(ctx, email, domain.ID, "❌ Analysis failed: "+llm.Diagnostic(err), err)
	}

	result := reconciler.Reconcile(completion.Content, reconciler.Options{
		PromptEcho:        prompt,
		DomainDescription: domain.Description,
		NewID:             s.newID,
	})
	s.recorder.ReconcileStage(ctx, string(result.Stage))
	log.Printf("[Audit] %s analyzed via %s: state=%s impact=%d risks=%d", domain.ID, result.Stage, result.Record.State, result.Record.HealthImpact, len(result.Record.Risks))

	record := result.Record
	if ragContext != "" {
		record.Sources = retrieved.Sources
	}
	state := record.State
	turn := &model.Turn{
		ID:          s.newID(),
		DomainID:    domain.ID,
		Role:        model.RoleAssistant,
		Content:     record.Commentary,
		Risks:       record.Risks,
		StateChange: &state,
		Sources:     record.Sources,
		CreatedAt:   s.now(),
	}
	if err := s.appendTurn(ctx, email, turn); err != nil {
		return s.abort(ctx, email, domain.ID, err)
	}

	before, err := s.ledger.Score(ctx, domain.ID)
	if err != nil {
		return s.abort(ctx, email, domain.ID, err)
	}
	score, err := s.ledger.ApplyHealthImpact(ctx, domain.ID, record.HealthImpact)
	if err != nil {
		return s.abort(ctx, email, domain.ID, err)
	}
	s.recorder.ScoreChanged(ctx, domain.ID, "health_impact", score-before)
	if resp, err := s.scoreResponse(ctx, domain, score); err == nil {
		s.broadcastScore(email, resp)
	}

	s.setState(email, domain.ID, state)
	s.recorder.AnalysisOutcome(ctx, domain.ID, outcomeOK)
	return &model.MessageResponse{Turn: turn, State: state, Score: score, Stage: string(result.Stage)}, nil
}

// fail records a diagnostic assistant turn and returns the domain to IDLE.
func (s *AuditService) fail(ctx context.Context, email, domainID, message string, cause error) (*model.MessageResponse, error) {
	s.recorder.AnalysisOutcome(ctx, domainID, outcomeFailed)
	turn := &model.Turn{
		ID:        s.newID(),
		DomainID:  domainID,
		Role:      model.RoleAssistant,
		Content:   message,
		CreatedAt: s.now(),
	}
	if err := s.appendTurn(ctx, email, turn); err != nil {
		log.Printf("[Audit] ERROR: could not record failure for %s: %v", domainID, err)
	}
	s.setState(email, domainID, model.StateIdle)

	score, _ := s.ledger.Score(ctx, domainID)
	return &model.MessageResponse{Turn: turn, State: model.StateIdle, Score: score, Error: cause.Error()}, nil
}

// abort handles a storage failure during an analysis. The store cannot take a
// diagnostic turn, so the error is returned after the domain is back to IDLE.
func (s *AuditService) abort(ctx context.Context, email, domainID string, err error) (*model.MessageResponse, error) {
	log.Printf("[Audit] ERROR: analysis of %s aborted: %v", domainID, err)
	s.recorder.AnalysisOutcome(ctx, domainID, outcomeFailed)
	s.setState(email, domainID, model.StateIdle)
	return nil, err
}

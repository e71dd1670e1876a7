package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"legalflow/internal/cache"
	"legalflow/internal/catalog"
	"legalflow/internal/config"
	"legalflow/internal/extract"
	"legalflow/internal/ledger"
	"legalflow/internal/llm"
	"legalflow/internal/rag"
	"legalflow/internal/repository"
	"legalflow/internal/store"
)

type fakeCompleter struct {
	mu      sync.Mutex
	content string
	err     error
	prompts []string
	opts    []llm.CallOptions
	entered chan struct{}
	release chan struct{}
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, opts llm.CallOptions) (llm.Completion, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opts)
	content, err, entered, release := f.content, f.err, f.entered, f.release
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if release != nil {
		<-release
	}
	if err != nil {
		return llm.Completion{}, err
	}
	return llm.Completion{Content: content, FinishReason: "stop"}, nil
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeCompleter) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func (f *fakeCompleter) set(content string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content, f.err = content, err
}

type fakeRetriever struct {
	result rag.Result
}

func (f fakeRetriever) Retrieve(context.Context, string) rag.Result { return f.result }

type event struct {
	email   string
	kind    string
	payload interface{}
}

type recordingBroadcaster struct {
	mu           sync.Mutex
	events       []event
	disconnected []string
}

func (b *recordingBroadcaster) BroadcastToUser(email, kind string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event{email, kind, payload})
}

func (b *recordingBroadcaster) DisconnectUser(email string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disconnected = append(b.disconnected, email)
}

func (b *recordingBroadcaster) states() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, e := range b.events {
		if e.kind == EventStateChanged {
			out = append(out, e.payload.(StatePayload).State)
		}
	}
	return out
}

func (b *recordingBroadcaster) count(kind string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.kind == kind {
			n++
		}
	}
	return n
}

type fixture struct {
	audit       *AuditService
	rollup      *RollupService
	ledger      *ledger.Ledger
	turns       repository.TurnRepo
	users       repository.UserRepo
	completer   *fakeCompleter
	broadcaster *recordingBroadcaster
}

func newFixture(t *testing.T, retriever rag.Retriever) *fixture {
	t.Helper()
	return newFixtureOn(t, retriever, store.NewMemory())
}

func newFixtureOn(t *testing.T, retriever rag.Retriever, st store.Store) *fixture {
	t.Helper()
	cat := catalog.Default()
	turns := repository.NewTurnRepo(st)
	users := repository.NewUserRepo(st)
	l := ledger.New(cat, repository.NewAnswerRepo(st), repository.NewScoreRepo(st))
	ai := &config.AIConfig{
		AnalysisTimeout:   time.Second,
		AnalysisMaxTokens: 4000,
		RollupTimeout:     time.Second,
		RollupMaxTokens:   3000,
	}
	if retriever == nil {
		retriever = rag.Nop{}
	}
	completer := &fakeCompleter{}
	bc := &recordingBroadcaster{}

	audit := NewAuditService(cat, l, turns, completer, retriever, extract.New(nil, 8000), ai, 1500)
	audit.SetBroadcaster(bc)
	n := 0
	audit.newID = func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}

	rollup := NewRollupService(cat, l, turns, users, cache.NewAnalysisCache(st, 0), completer, ai)

	return &fixture{
		audit:       audit,
		rollup:      rollup,
		ledger:      l,
		turns:       turns,
		users:       users,
		completer:   completer,
		broadcaster: bc,
	}
}

// brokenStore rejects writes to keys that start with prefix.
type brokenStore struct {
	store.Store
	prefix string
}

func (b brokenStore) Save(ctx context.Context, key, value string) error {
	if strings.HasPrefix(key, b.prefix) {
		return errors.New("store unavailable")
	}
	return b.Store.Save(ctx, key, value)
}

// unreadableStore rejects reads of keys that start with prefix.
type unreadableStore struct {
	store.Store
	prefix string
}

func (u unreadableStore) Load(ctx context.Context, key string) (string, bool, error) {
	if strings.HasPrefix(key, u.prefix) {
		return "", false, errors.New("store unavailable")
	}
	return u.Store.Load(ctx, key)
}

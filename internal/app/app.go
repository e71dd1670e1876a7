// Package app wires configuration, storage, collaborators and services together.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"legalflow/internal/cache"
	"legalflow/internal/catalog"
	"legalflow/internal/config"
	"legalflow/internal/export"
	"legalflow/internal/extract"
	"legalflow/internal/ledger"
	"legalflow/internal/llm"
	"legalflow/internal/rag"
	"legalflow/internal/repository"
	"legalflow/internal/service"
	"legalflow/internal/store"
	"legalflow/internal/telemetry"
	"legalflow/internal/transport/rest"
	"legalflow/internal/transport/ws"
)

const pingTimeout = 5 * time.Second

// App holds every long-lived dependency of the server
type App struct {
	Config   *config.Config
	Catalog  *catalog.Catalog
	Ledger   *ledger.Ledger
	Auth     *service.AuthService
	Profiles *service.ProfileService
	Audit    *service.AuditService
	Rollup   *service.RollupService
	Hub      *ws.Hub
	Recorder telemetry.Recorder

	ai      *llm.Client // nil when AI analysis is disabled
	closers []func(context.Context) error
}

// New connects the configured backends and builds the services
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, Catalog: catalog.Default()}

	st, err := a.openStore(ctx)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	sink, err := a.openExport(ctx)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.Recorder = telemetry.Noop{}
	if cfg.Telemetry.Enabled {
		metrics, err := telemetry.NewExporter(ctx, cfg.Telemetry)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.Recorder = metrics
		a.closers = append(a.closers, metrics.Close)
		log.Printf("[App] Exporting metrics to %s", cfg.Telemetry.Endpoint)
	}

	var completer llm.Completer = llm.Mock{}
	if cfg.AI.IsEnabled() {
		a.ai = llm.NewClient(&cfg.AI)
		completer = a.ai
		log.Printf("[App] AI analysis: %s via %s", cfg.AI.Model, cfg.AI.BaseURL)
	} else {
		log.Println("[App] AI analysis: LLM_API_KEY NOT SET (using mock)")
	}

	var retriever rag.Retriever = rag.Nop{}
	if cfg.RAG.IsEnabled() {
		retriever = rag.NewClient(&cfg.RAG)
		log.Printf("[App] Context retrieval: %s", cfg.RAG.URL)
	}

	var ocr extract.OCR
	tesseract := extract.Tesseract{Bin: cfg.Extract.TesseractBin, Languages: cfg.Extract.OCRLanguages}
	if tesseract.Available() {
		ocr = tesseract
	} else {
		log.Printf("[App] OCR disabled: %s not found", cfg.Extract.TesseractBin)
	}

	users := repository.NewUserRepo(st)
	turns := repository.NewTurnRepo(st)
	a.Ledger = ledger.New(a.Catalog, repository.NewAnswerRepo(st), repository.NewScoreRepo(st))
	a.Hub = ws.NewHub()

	dispatcher := export.NewDispatcher(sink, cfg.Export.Timeout)

	a.Auth = service.NewAuthService(users, repository.NewSessionRepo(st), cfg.Server.JWTSecret, cfg.Server.SessionTTL)
	a.Auth.SetExporter(dispatcher)
	a.Auth.SetBroadcaster(a.Hub)

	a.Profiles = service.NewProfileService(users)
	a.Profiles.SetExporter(dispatcher)

	a.Audit = service.NewAuditService(a.Catalog, a.Ledger, turns, completer, retriever,
		extract.New(ocr, cfg.Extract.MaxChars), &cfg.AI, cfg.RAG.MaxContext)
	a.Audit.SetBroadcaster(a.Hub)
	a.Audit.SetRecorder(a.Recorder)

	a.Rollup = service.NewRollupService(a.Catalog, a.Ledger, turns, users,
		cache.NewAnalysisCache(st, cfg.Store.CacheTTL), completer, &cfg.AI)
	a.Rollup.SetRecorder(a.Recorder)

	return a, nil
}

func (a *App) openStore(ctx context.Context) (store.Store, error) {
	switch a.Config.Store.Driver {
	case "memory", "":
		log.Println("[App] Store: memory")
		return store.NewMemory(), nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: a.Config.Store.RedisAddr()})
		a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })

		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if _, err := rdb.Ping(pingCtx).Result(); err != nil {
			return nil, fmt.Errorf("pinging redis: %w", err)
		}
		log.Println("[App] Store: connected to Redis")
		return store.NewRedis(rdb, a.Config.Store.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", a.Config.Store.Driver)
	}
}

func (a *App) openExport(ctx context.Context) (export.Sink, error) {
	cfg := a.Config.Export
	switch cfg.Driver {
	case "none", "":
		return export.Noop{}, nil
	case "disk":
		if cfg.DiskToken == "" {
			log.Println("[App] Warning: DISK_OAUTH_TOKEN not set, registrations will not be exported")
			return export.Noop{}, nil
		}
		log.Printf("[App] Export: %s/%s on cloud disk", cfg.DiskFolder, cfg.DiskFile)
		return export.NewDiskSink(cfg.DiskBaseURL, cfg.DiskToken, cfg.DiskFolder, cfg.DiskFile), nil
	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("connecting to mongodb: %w", err)
		}
		a.closers = append(a.closers, client.Disconnect)

		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			return nil, fmt.Errorf("pinging mongodb: %w", err)
		}
		log.Printf("[App] Export: MongoDB database %s", cfg.MongoDB)
		return export.NewMongoSink(client.Database(cfg.MongoDB)), nil
	default:
		return nil, fmt.Errorf("unknown export driver %q", cfg.Driver)
	}
}

// Router builds the HTTP handler
func (a *App) Router() http.Handler {
	c := &rest.Container{
		AuthService:    a.Auth,
		ProfileService: a.Profiles,
		AuditService:   a.Audit,
		RollupService:  a.Rollup,
		WSHub:          a.Hub,
		AllowedOrigins: a.Config.Server.AllowedOrigins,
		MaxUploadBytes: a.Config.Server.MaxUploadBytes,
	}
	if a.ai != nil {
		c.AI = a.ai
	}
	return rest.NewRouter(c)
}

// Close releases connections in reverse order of opening
func (a *App) Close(ctx context.Context) error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Server holds HTTP listener and session settings.
type Server struct {
	Port           string        `envconfig:"PORT" default:"8080"`
	JWTSecret      string        `envconfig:"JWT_SECRET" default:"super-secret-key-change-in-production"`
	SessionTTL     time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	AllowedOrigins string        `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	MaxUploadBytes int64         `envconfig:"MAX_UPLOAD_BYTES" default:"20971520"`
}

// Store selects the key-value backend.
type Store struct {
	Driver   string        `envconfig:"STORE_DRIVER" default:"memory"`
	RedisURI string        `envconfig:"REDIS_URI" default:"localhost:6379"`
	Prefix   string        `envconfig:"STORE_PREFIX" default:"legalflow:"`
	CacheTTL time.Duration `envconfig:"ANALYSIS_CACHE_TTL" default:"0s"`
}

// RedisAddr strips an optional redis:// scheme.
func (s Store) RedisAddr() string {
	return strings.TrimPrefix(s.RedisURI, "redis://")
}

// Export configures where registration rows are appended.
type Export struct {
	Driver      string        `envconfig:"EXPORT_DRIVER" default:"none"`
	DiskToken   string        `envconfig:"DISK_OAUTH_TOKEN"`
	DiskBaseURL string        `envconfig:"DISK_API_URL" default:"https://cloud-api.yandex.net/v1/disk"`
	DiskFolder  string        `envconfig:"DISK_FOLDER" default:"/LegalFlow"`
	DiskFile    string        `envconfig:"DISK_FILE" default:"registrations.csv"`
	MongoURI    string        `envconfig:"MONGO_URI"`
	MongoDB     string        `envconfig:"MONGO_DB" default:"legalflow"`
	Timeout     time.Duration `envconfig:"EXPORT_TIMEOUT" default:"15s"`
}

// Telemetry configures the OTLP metrics exporter.
type Telemetry struct {
	Enabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	Endpoint string `envconfig:"OTEL_ENDPOINT"`
	Insecure bool   `envconfig:"OTEL_INSECURE" default:"true"`
}

// Extract configures document text extraction.
type Extract struct {
	MaxChars     int    `envconfig:"EXTRACT_MAX_CHARS" default:"8000"`
	TesseractBin string `envconfig:"TESSERACT_BIN" default:"tesseract"`
	OCRLanguages string `envconfig:"OCR_LANGUAGES" default:"rus+eng"`
}

// Config is the full service configuration.
type Config struct {
	Server    Server
	Store     Store
	AI        AIConfig
	RAG       RAGConfig
	Export    Export
	Telemetry Telemetry
	Extract   Extract
}

// Load reads every section from the environment.
func Load() (*Config, error) {
	var cfg Config
	sections := []interface{}{&cfg.Server, &cfg.Store, &cfg.AI, &cfg.RAG, &cfg.Export, &cfg.Telemetry, &cfg.Extract}
	for _, s := range sections {
		if err := envconfig.Process("", s); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}
	return &cfg, nil
}

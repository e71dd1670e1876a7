package config

import "time"

// AIConfig holds all completion-service configuration
type AIConfig struct {
	APIKey  string `envconfig:"LLM_API_KEY" json:"-"` // Never serialize
	BaseURL string `envconfig:"LLM_BASE_URL" default:"https://llmost.ru/api/v1" json:"baseUrl"`
	Model   string `envconfig:"LLM_MODEL" default:"google/gemini-2.5-flash" json:"model"`

	// Analysis is the per-message call; it can produce long commentary
	AnalysisTimeout   time.Duration `envconfig:"LLM_ANALYSIS_TIMEOUT" default:"180s" json:"analysisTimeout"`
	AnalysisMaxTokens int           `envconfig:"LLM_ANALYSIS_MAX_TOKENS" default:"4000" json:"analysisMaxTokens"`

	// Rollup is the end-of-block final analysis
	RollupTimeout   time.Duration `envconfig:"LLM_ROLLUP_TIMEOUT" default:"60s" json:"rollupTimeout"`
	RollupMaxTokens int           `envconfig:"LLM_ROLLUP_MAX_TOKENS" default:"3000" json:"rollupMaxTokens"`

	Temperature float64 `envconfig:"LLM_TEMPERATURE" default:"0.7" json:"temperature"`
	TopP        float64 `envconfig:"LLM_TOP_P" default:"0.9" json:"topP"`
}

// IsEnabled returns true if the completion API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// CompletionsEndpoint returns the chat completions URL
func (c *AIConfig) CompletionsEndpoint() string {
	return c.BaseURL + "/chat/completions"
}

// ModelsEndpoint returns the model listing URL used for health checks
func (c *AIConfig) ModelsEndpoint() string {
	return c.BaseURL + "/models"
}

// RAGConfig points at the optional context-retrieval service
type RAGConfig struct {
	URL        string        `envconfig:"RAG_URL" json:"url"`
	K          int           `envconfig:"RAG_K" default:"3" json:"k"`
	Timeout    time.Duration `envconfig:"RAG_TIMEOUT" default:"10s" json:"timeout"`
	MaxContext int           `envconfig:"RAG_MAX_CONTEXT" default:"1500" json:"maxContext"`
}

// IsEnabled returns true if a retrieval service URL is set
func (c *RAGConfig) IsEnabled() bool {
	return c.URL != ""
}

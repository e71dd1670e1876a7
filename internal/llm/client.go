// Package llm talks to an OpenAI-compatible chat completion service.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"legalflow/internal/config"
)

// Completer produces a completion for a single user prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts CallOptions) (Completion, error)
}

// CallOptions are the per-call limits.
type CallOptions struct {
	MaxTokens int
	Timeout   time.Duration
}

// Completion is the first choice of a completion response.
type Completion struct {
	Content          string
	FinishReason     string
	CompletionTokens int
}

// Truncated reports whether the service stopped because of the token limit.
func (c Completion) Truncated() bool {
	return c.FinishReason == "length" || c.FinishReason == "max_tokens"
}

// Client calls the completion service. Calls are never retried.
type Client struct {
	config     *config.AIConfig
	httpClient *http.Client
}

// NewClient creates a completion client for cfg.
func NewClient(cfg *config.AIConfig) *Client {
	return &Client{
		config:     cfg,
		httpClient: &http.Client{},
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete sends prompt as a single user message.
func (c *Client) Complete(ctx context.Context, prompt string, opts CallOptions) (Completion, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(completionRequest{
		Model:       c.config.Model,
		Messages:    []message{{Role: "user", Content: prompt}},
		MaxTokens:   opts.MaxTokens,
		Temperature: c.config.Temperature,
		TopP:        c.config.TopP,
	})
	if err != nil {
		return Completion{}, fmt.Errorf("encoding completion request: %w", err)
	}

	endpoint := c.config.CompletionsEndpoint()
	log.Printf("[LLM] POST %s model=%s max_tokens=%d", endpoint, c.config.Model, opts.MaxTokens)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Completion{}, fmt.Errorf("creating completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[LLM] ERROR: request failed: %v", err)
		return Completion{}, classifyTransport(ctx, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Completion{}, classifyTransport(ctx, err)
	}

	if resp.StatusCode >= 400 {
		log.Printf("[LLM] ERROR: API returned %d: %s", resp.StatusCode, string(respBody))
		return Completion{}, &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var parsed completionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Completion{}, fmt.Errorf("decoding completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return Completion{}, ErrEmptyResponse
	}

	out := Completion{
		Content:          parsed.Choices[0].Message.Content,
		FinishReason:     parsed.Choices[0].FinishReason,
		CompletionTokens: parsed.Usage.CompletionTokens,
	}
	if out.Truncated() {
		log.Printf("[LLM] WARNING: response hit the token limit (finish_reason=%s, completion_tokens=%d), content may be truncated", out.FinishReason, out.CompletionTokens)
	}
	log.Printf("[LLM] SUCCESS: %d chars, finish_reason=%s", len(out.Content), out.FinishReason)
	return out, nil
}

// Ping checks that the service answers the model listing endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.ModelsEndpoint(), nil)
	if err != nil {
		return fmt.Errorf("creating ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransport(ctx, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return nil
}

func classifyTransport(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

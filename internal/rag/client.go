// Package rag fetches supporting legal context from the retrieval service.
package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"legalflow/internal/config"
	"legalflow/internal/model"
)

// Retriever looks up context for a query. Failures yield an empty result.
type Retriever interface {
	Retrieve(ctx context.Context, query string) Result
}

// Result is the retrieved context and the documents it came from.
type Result struct {
	Context string         `json:"context"`
	Sources []model.Source `json:"sources"`
}

// Client calls POST {url}/context.
type Client struct {
	config     *config.RAGConfig
	httpClient *http.Client
}

// NewClient creates a retrieval client for cfg.
func NewClient(cfg *config.RAGConfig) *Client {
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type contextRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

// Retrieve never fails; an unreachable or broken service means no context.
func (c *Client) Retrieve(ctx context.Context, query string) Result {
	if !c.config.IsEnabled() {
		return Result{}
	}
	log.Printf("[RAG] Searching context for: %s", preview(query, 100))

	res, err := c.fetch(ctx, query)
	if err != nil {
		log.Printf("[RAG] WARNING: continuing without context: %v", err)
		return Result{}
	}
	log.Printf("[RAG] Got %d chars of context from %d sources", len(res.Context), len(res.Sources))
	return res
}

func (c *Client) fetch(ctx context.Context, query string) (Result, error) {
	body, err := json.Marshal(contextRequest{Query: query, K: c.config.K})
	if err != nil {
		return Result{}, err
	}
	url := strings.TrimRight(c.config.URL, "/") + "/context"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("retrieval service returned %d", resp.StatusCode)
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Result{}, fmt.Errorf("decoding retrieval response: %w", err)
	}
	if res.Sources == nil {
		res.Sources = []model.Source{}
	}
	return res, nil
}

// Nop is used when no retrieval service is configured.
type Nop struct{}

func (Nop) Retrieve(context.Context, string) Result { return Result{} }

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

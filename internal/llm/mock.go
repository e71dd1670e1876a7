package llm

import (
	"context"
	"encoding/json"
)

// Mock answers every prompt locally. It is used when no API key is configured.
type Mock struct{}

// Complete returns a neutral analysis object.
func (Mock) Complete(ctx context.Context, prompt string, opts CallOptions) (Completion, error) {
	if err := ctx.Err(); err != nil {
		return Completion{}, err
	}
	body, _ := json.Marshal(map[string]interface{}{
		"commentary":   "AI analysis is not configured, so this text was not reviewed. Set LLM_API_KEY to enable it.",
		"state":        "IDLE",
		"healthImpact": 0,
		"risks":        []interface{}{},
	})
	return Completion{Content: string(body), FinishReason: "stop"}, nil
}

package model

import "time"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one append-only entry of a domain conversation.
type Turn struct {
	ID          string       `json:"id"`
	DomainID    string       `json:"domainId"`
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	Risks       []Risk       `json:"risks,omitempty"`
	StateChange *AvatarState `json:"stateChange,omitempty"`
	Sources     []Source     `json:"sources,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// MessageRequest is the body of POST /domains/{domain}/messages
type MessageRequest struct {
	Text string `json:"text"`
}

// MessageResponse carries the assistant turn and the resulting score.
// Error is set when the analysis failed; Turn then carries the diagnostic.
type MessageResponse struct {
	Turn  *Turn       `json:"turn"`
	State AvatarState `json:"state"`
	Score int         `json:"score"`
	Stage string      `json:"stage,omitempty"`
	Error string      `json:"error,omitempty"`
}

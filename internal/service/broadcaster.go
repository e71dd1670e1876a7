package service

// Events pushed to the connected client.
const (
	EventStateChanged = "state_changed"
	EventTurnAppended = "turn_appended"
	EventScoreUpdated = "score_updated"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToUser(email string, msgType string, payload interface{})
	DisconnectUser(email string)
}

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastToUser(string, string, interface{}) {}
func (nopBroadcaster) DisconnectUser(string) {}

// StatePayload is the body of a state_changed event.
type StatePayload struct {
	DomainID string `json:"domainId"`
	State    string `json:"state"`
}

// ScorePayload is the body of a score_updated event.
type ScorePayload struct {
	DomainID string `json:"domainId"`
	Score    int    `json:"score"`
	Max      int    `json:"max"`
	Zone     string `json:"zone"`
	Total    int    `json:"total"`
}

package models

// GameCommand captures one player command against a session. The payload is
// kept loose because different command types carry different fields (card id,
// target suit, joker mode); each handler validates what it needs.
type GameCommand struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

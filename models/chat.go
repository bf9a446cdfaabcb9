package models

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn in a chat session transcript. Assistant turns
// carry the sources that backed the answer.
type ChatMessage struct {
	Role      string   `json:"role"`
	Content   string   `json:"content"`
	Sources   []Source `json:"sources,omitempty"`
	Timestamp string   `json:"timestamp"`
}

// SessionHistoryResponse is the transcript returned by GET /sessions/:id.
type SessionHistoryResponse struct {
	SessionID string        `json:"sessionID"`
	Messages  []ChatMessage `json:"messages"`
}

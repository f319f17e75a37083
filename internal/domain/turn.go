package domain

import "time"

// Role attributes a transcript line.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one line of session history.
type ChatMessage struct {
	Role Role
	Text string
	At   time.Time
}

// Turn is a fully processed exchange: the user line, the generated reply,
// the affect snapshot that paced it, and the actions that delivered it.
type Turn struct {
	ID        string
	SessionID string
	UserText  string
	ReplyText string
	Affect    AffectState
	Actions   ActionSequence
	CreatedAt time.Time
}

// AffectSample is a persisted snapshot of a session's emotional state.
type AffectSample struct {
	SessionID string
	State     AffectState
	Dopamine  float64
	Cortisol  float64
	CreatedAt time.Time
}

package session

import "time"

// Role of a message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Part types. A message is an ordered list of typed parts.
const (
	PartText       = "text"
	PartReasoning  = "reasoning"
	PartToolCall   = "tool_call"
	PartToolResult = "tool_result"
)

// Part is one typed segment of a message.
type Part struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	ToolName   string `json:"tool_name,omitempty"`
	ToolArgs   string `json:"tool_args,omitempty"`
	ToolResult string `json:"tool_result,omitempty"`
}

// Message is immutable once appended. IDs are either uuids (normal
// turns) or deterministically derived from content (background
// completions); within a session an ID appears at most once.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Parts     []Part    `json:"parts"`
	CreatedAt time.Time `json:"created_at"`
}

// TextMessage builds a single-part text message.
func TextMessage(id string, role Role, text string) Message {
	return Message{ID: id, Role: role, Parts: []Part{{Type: PartText, Text: text}}}
}

// Profile is the derived interest summary produced by background
// analysis. A session holds at most one, keyed by subject,
// last-write-wins.
type Profile struct {
	Subject       string    `json:"subject"`
	Topics        []string  `json:"topics"`
	Summary       string    `json:"summary"`
	ItemsAnalyzed int       `json:"items_analyzed"`
	UpdatedAt     time.Time `json:"updated_at"`
}

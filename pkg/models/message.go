// Package models defines the shared data model for duet simulations:
// messages, sampling parameters, turn results, and log entries.
package models

// Role identifies the author of a message in a conversation history.
type Role string

const (
	// RoleSystem is the fixed instruction message at the head of a history.
	RoleSystem Role = "system"
	// RoleUser is an inbound message the agent is replying to.
	RoleUser Role = "user"
	// RoleAssistant is a message generated by the agent's model.
	RoleAssistant Role = "assistant"
)

// Valid returns true if the role is a known value.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Message is a single entry in an agent's conversation history.
// Messages are immutable once appended; histories are append-only and
// never reordered or pruned.
type Message struct {
	// Role is the author of the message.
	Role Role `json:"role"`
	// Content is the message text.
	Content string `json:"content"`
}

// SystemMessage returns a system message with the given content.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage returns a user message with the given content.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage returns an assistant message with the given content.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

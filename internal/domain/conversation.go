package domain

import "time"

// MessageRole identifies who authored a chat message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single turn in a conversation.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// Conversation is a persisted chat exchange. Saving the same id again
// overwrites the stored message list rather than appending to it.
type Conversation struct {
	ID        string
	Author    string
	Messages  []Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StreamEvent is one element of a token stream. Either Token carries the
// next piece of generated text, or Err reports why the stream stopped
// early. The producer closes the channel after the final event.
type StreamEvent struct {
	Token string
	Err   error
}

// LastUserMessage returns the content of the most recent user turn, or
// the empty string when there is none.
func LastUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

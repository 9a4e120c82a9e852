package domain

import (
	"time"
)

// Role identifies the author of a chat message.
type Role string

const (
	// RoleUser marks messages typed by the person using the chat.
	RoleUser Role = "user"
	// RoleAssistant marks canned replies and error notices.
	RoleAssistant Role = "assistant"
)

// ChatMessage is a single entry in an in-memory chat transcript.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatReply is the wire payload of the chat action, for both success and error responses.
type ChatReply struct {
	Message string `json:"message"`
}

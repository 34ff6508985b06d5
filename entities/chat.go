package entities

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatSession is the persisted conversation for one anonymous session id.
type ChatSession struct {
	SessionID string        `gorm:"primaryKey;size:128" json:"sessionId"`
	Messages  []ChatMessage `gorm:"serializer:json" json:"messages"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

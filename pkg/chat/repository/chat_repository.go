package repository

import (
	"context"

	"cropdoc/entities"
)

// ChatHistoryRepository keeps one message list per anonymous session id.
// Save overwrites the list; concurrent writers to one session race and the
// last one wins.
type ChatHistoryRepository interface {
	// Load returns nil and no error for an unknown session.
	Load(ctx context.Context, sessionID string) ([]entities.ChatMessage, error)
	Save(ctx context.Context, sessionID string, msgs []entities.ChatMessage) error
}

package service

import (
	"context"

	"cropdoc/entities"
)

type ChatInput struct {
	Messages []entities.ChatMessage
	// Language is en, hi, te or ta. Anything else means en.
	Language string
	// SessionID correlates anonymous turns. It is not an identity.
	SessionID string
}

type ChatService interface {
	Reply(ctx context.Context, in ChatInput) (string, error)
}

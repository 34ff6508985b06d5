// pkg/ai/client.go

package ai

import "context"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Image is an inline picture attached to a message. Data is base64 without
// any data-URL prefix.
type Image struct {
	MimeType string
	Data     string
}

type Message struct {
	Role    string
	Content string
	Image   *Image
}

// Request is one non-streaming completion. System is sent ahead of Messages.
// JSON asks providers that support it for a bare JSON reply.
type Request struct {
	Model     string
	System    string
	Messages  []Message
	MaxTokens int
	JSON      bool
}

// Client is the model gateway. Implementations make exactly one upstream
// call per Complete and never retry.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ClientFunc adapts a plain function to Client.
type ClientFunc func(ctx context.Context, req Request) (string, error)

func (f ClientFunc) Complete(ctx context.Context, req Request) (string, error) { return f(ctx, req) }

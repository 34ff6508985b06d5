package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"cropdoc/pkg/ai/gemini"
)

type geminiClient struct {
	c *gemini.Client
}

// NewGemini serves Requests through the native Gemini REST API. baseURL may
// be empty for the public endpoint.
func NewGemini(baseURL, key string, httpc *http.Client) (Client, error) {
	c, err := gemini.NewClient(
		gemini.WithAPIKey(key),
		gemini.WithBaseURL(baseURL),
		gemini.WithHTTPClient(httpc),
	)
	if err != nil {
		return nil, err
	}
	return &geminiClient{c: c}, nil
}

func (g *geminiClient) Complete(ctx context.Context, req Request) (string, error) {
	contents := make([]gemini.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := gemini.RoleUser
		if m.Role == RoleAssistant {
			role = gemini.RoleModel
		}
		parts := []gemini.Part{{Text: m.Content}}
		if m.Image != nil {
			parts = append(parts, gemini.Part{InlineData: &gemini.InlineData{MimeType: m.Image.MimeType, Data: m.Image.Data}})
		}
		contents = append(contents, gemini.Content{Role: role, Parts: parts})
	}

	opts := &gemini.GenerateOptions{
		Model:             strings.TrimPrefix(req.Model, "google/"),
		SystemInstruction: req.System,
	}
	if req.MaxTokens > 0 {
		n := req.MaxTokens
		opts.MaxOutputTokens = &n
	}
	if req.JSON {
		opts.ResponseMimeType = "application/json"
	}

	text, err := g.c.Generate(ctx, contents, opts)
	if err != nil {
		var apiErr *gemini.APIError
		if errors.As(err, &apiErr) {
			return "", &StatusError{Code: apiErr.StatusCode, Body: apiErr.Message}
		}
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyReply
	}
	return strings.TrimSpace(text), nil
}

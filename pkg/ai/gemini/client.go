package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultModel   = "gemini-2.5-flash"
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	requestPathFmt = "%s/v1beta/models/%s:generateContent?key=%s"

	RoleUser  = "user"
	RoleModel = "model"
)

// Client wraps the Gemini generateContent REST endpoint.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client instance.
type Option func(*Client)

func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL changes the base URL used for API calls. Primarily intended for testing.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = base
		}
	}
}

func NewClient(opts ...Option) (*Client, error) {
	client := &Client{
		model:   defaultModel,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.apiKey == "" {
		return nil, errors.New("gemini: API key not provided")
	}
	return client, nil
}

// GenerateOptions tunes the behaviour of Generate requests.
type GenerateOptions struct {
	Model             string
	SystemInstruction string
	MaxOutputTokens   *int
	// ResponseMimeType "application/json" switches Gemini to JSON mode.
	ResponseMimeType string
}

// Content is one conversation turn.
type Content struct {
	Role  string
	Parts []Part
}

// Part represents a single prompt component that can include text or inline binary data.
type Part struct {
	Text       string
	InlineData *InlineData
}

// InlineData holds base64-encoded binary payloads that Gemini can interpret, such as images.
type InlineData struct {
	MimeType string
	Data     string
}

// APIError is returned for any non-200 response.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini: API error %s (%d): %s", e.Status, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gemini: unexpected status %d: %s", e.StatusCode, e.Message)
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	MaxOutputTokens  *int   `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
	Error      *apiError   `json:"error"`
}

type candidate struct {
	Content content `json:"content"`
}

type apiError struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Generate sends a multi-turn, optionally multimodal conversation and
// returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, contents []Content, opts *GenerateOptions) (string, error) {
	if len(contents) == 0 {
		return "", errors.New("gemini: at least one content is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := buildRequest(contents, opts)
	if err != nil {
		return "", err
	}
	model := c.model
	if opts != nil && opts.Model != "" {
		model = opts.Model
	}
	return c.doGenerate(ctx, model, req)
}

func buildRequest(contents []Content, opts *GenerateOptions) (*generateRequest, error) {
	req := &generateRequest{Contents: make([]content, 0, len(contents))}
	for ci, ct := range contents {
		parts, err := buildParts(ci, ct.Parts)
		if err != nil {
			return nil, err
		}
		role := ct.Role
		if role == "" {
			role = RoleUser
		}
		req.Contents = append(req.Contents, content{Role: role, Parts: parts})
	}

	if opts == nil {
		return req, nil
	}
	if opts.SystemInstruction != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: opts.SystemInstruction}}}
	}
	if opts.MaxOutputTokens != nil || opts.ResponseMimeType != "" {
		req.GenerationConfig = &generationConfig{
			MaxOutputTokens:  opts.MaxOutputTokens,
			ResponseMimeType: opts.ResponseMimeType,
		}
	}
	return req, nil
}

func buildParts(ci int, parts []Part) ([]part, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("gemini: content %d has no parts", ci)
	}
	out := make([]part, 0, len(parts))
	for idx, p := range parts {
		rp := part{}
		if strings.TrimSpace(p.Text) != "" {
			rp.Text = p.Text
		}
		if p.InlineData != nil {
			if p.InlineData.MimeType == "" {
				return nil, fmt.Errorf("gemini: content %d part %d inline data missing mime type", ci, idx)
			}
			if p.InlineData.Data == "" {
				return nil, fmt.Errorf("gemini: content %d part %d inline data missing data", ci, idx)
			}
			rp.InlineData = &inlineData{MimeType: p.InlineData.MimeType, Data: p.InlineData.Data}
		}
		if rp.Text == "" && rp.InlineData == nil {
			return nil, fmt.Errorf("gemini: content %d part %d contained no usable data", ci, idx)
		}
		out = append(out, rp)
	}
	return out, nil
}

func extractText(resp generateResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", errors.New("gemini: response contained no candidates")
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(part.Text)
		}
	}
	if builder.Len() == 0 {
		return "", errors.New("gemini: candidate did not contain text parts")
	}
	return builder.String(), nil
}

func (c *Client) endpoint(model string) string {
	base := strings.TrimSuffix(c.baseURL, "/")
	return fmt.Sprintf(requestPathFmt, base, url.PathEscape(model), url.QueryEscape(c.apiKey))
}

func (c *Client) doGenerate(ctx context.Context, model string, reqPayload *generateRequest) (string, error) {
	body, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(model), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gemini: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini: http call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gemini: read response: %w", err)
	}

	var apiResp generateResponse
	decodeErr := json.Unmarshal(respBody, &apiResp)

	if resp.StatusCode != http.StatusOK {
		e := &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
		if decodeErr == nil && apiResp.Error != nil {
			e.Status, e.Message = apiResp.Error.Status, apiResp.Error.Message
		}
		return "", e
	}
	if decodeErr != nil {
		return "", fmt.Errorf("gemini: decode response: %w", decodeErr)
	}
	if apiResp.Error != nil {
		return "", &APIError{StatusCode: apiResp.Error.Code, Status: apiResp.Error.Status, Message: apiResp.Error.Message}
	}
	return extractText(apiResp)
}

package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"cropdoc/entities"
)

const (
	headerUserID = "X-User-Id"

	// analyze waits on the model, so the default is generous.
	defaultTimeout = 90 * time.Second
)

// codec copies decoded strings out of the pooled response buffer.
var codec = sonic.ConfigStd

// APIClient talks to a running cropdoc server over a Hertz client.
type APIClient struct {
	client *client.Client
	server string
	userID string
}

// CropSummary is one row of the crop listing.
type CropSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ScientificName string `json:"scientificName"`
	DiseaseCount   int    `json:"diseaseCount"`
}

// Error is a non-2xx answer from the server.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// NewAPIClient creates a client for server. userID is sent as X-User-Id when set.
func NewAPIClient(server, userID string) (*APIClient, error) {
	normalized, err := normalizeServerURL(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	c, err := client.NewClient(
		client.WithDialTimeout(10*time.Second),
		client.WithMaxIdleConnDuration(60*time.Second),
		client.WithDialer(standard.NewDialer()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return &APIClient{
		client: c,
		server: normalized,
		userID: userID,
	}, nil
}

// normalizeServerURL returns scheme://host with no path and no trailing slash.
func normalizeServerURL(server string) (string, error) {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}
	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL %q", server)
	}
	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}

func (c *APIClient) Crops(ctx context.Context) ([]CropSummary, error) {
	var out struct {
		Crops []CropSummary `json:"crops"`
	}
	if err := c.do(ctx, consts.MethodGet, endpointCrops, nil, &out); err != nil {
		return nil, err
	}
	return out.Crops, nil
}

func (c *APIClient) Diseases(ctx context.Context, crop string) ([]entities.DiseaseInfo, error) {
	var out struct {
		Diseases []entities.DiseaseInfo `json:"diseases"`
	}
	path := fmt.Sprintf(endpointCropDiseases, url.PathEscape(crop))
	if err := c.do(ctx, consts.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Diseases, nil
}

func (c *APIClient) Search(ctx context.Context, q string) ([]entities.DiseaseInfo, error) {
	var out struct {
		Diseases []entities.DiseaseInfo `json:"diseases"`
	}
	path := endpointDiseaseSearch + "?q=" + url.QueryEscape(q)
	if err := c.do(ctx, consts.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Diseases, nil
}

// Analyze submits an image (data URL or bare base64) for diagnosis.
func (c *APIClient) Analyze(ctx context.Context, image, cropType string) (*entities.DiagnosisResult, error) {
	body := map[string]string{"image": image, "cropType": cropType}
	var out struct {
		Result entities.DiagnosisResult `json:"result"`
	}
	if err := c.do(ctx, consts.MethodPost, endpointAnalyze, body, &out); err != nil {
		return nil, err
	}
	return &out.Result, nil
}

func (c *APIClient) Chat(ctx context.Context, messages []entities.ChatMessage, language, sessionID string) (string, error) {
	body := map[string]any{"messages": messages, "language": language}
	if sessionID != "" {
		body["sessionId"] = sessionID
	}
	var out struct {
		Response string `json:"response"`
	}
	if err := c.do(ctx, consts.MethodPost, endpointChat, body, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

func (c *APIClient) History(ctx context.Context) ([]entities.DiagnosisRecord, error) {
	var out struct {
		History []entities.DiagnosisRecord `json:"history"`
	}
	if err := c.do(ctx, consts.MethodGet, endpointHistory, nil, &out); err != nil {
		return nil, err
	}
	return out.History, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, in, out any) error {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(method)
	req.SetRequestURI(c.server + path)
	if in != nil {
		b, err := codec.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		req.Header.SetContentTypeBytes([]byte("application/json"))
		req.SetBody(b)
	}
	if c.userID != "" {
		req.Header.Set(headerUserID, c.userID)
	}

	var err error
	if dl, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(ctx, req, resp, dl)
	} else {
		err = c.client.DoTimeout(ctx, req, resp, defaultTimeout)
	}
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = codec.Unmarshal(resp.Body(), &e)
		return &Error{StatusCode: status, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := codec.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

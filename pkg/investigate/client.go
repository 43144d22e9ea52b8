package investigate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/pkg/utils/json"
)

// TokenSource supplies the bearer token attached to investigator requests.
// Invalidate is called when the backend rejects the credential, so the
// source can force re-authentication.
type TokenSource interface {
	Token() (string, error)
	Invalidate()
}

// StaticTokenSource wraps a fixed token.
type StaticTokenSource struct {
	mu    sync.Mutex
	token string
}

// NewStaticTokenSource creates a token source holding token.
func NewStaticTokenSource(token string) *StaticTokenSource {
	return &StaticTokenSource{token: token}
}

// Token returns the stored token, or an error after invalidation.
func (s *StaticTokenSource) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", fmt.Errorf("no credential available, re-authentication required")
	}
	return s.token, nil
}

// Invalidate clears the stored token.
func (s *StaticTokenSource) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

// PromptSet carries the three data-source prompts of one investigation.
type PromptSet struct {
	GitHub     string `json:"GITHUB_AGENT_PROMPT"`
	Slack      string `json:"SLACK_AGENT_PROMPT"`
	CloudWatch string `json:"AWS_CLOUDWATCH_AGENT_PROMPT"`
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the transport. The default client has no overall
// timeout so long-lived streams are not cut off.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource attaches bearer authentication.
func WithTokenSource(ts TokenSource) ClientOption {
	return func(c *Client) { c.tokens = ts }
}

// Client talks to the investigator backend: health probe, blocking
// invocation, and the event stream consumed by a Stream instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// NewClient creates a client for the investigator backend at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    trimTrailingSlash(baseURL),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// Health probes the backend liveness endpoint. A nil return means the
// backend is up and a stream may be opened.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health_incident_iq", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

// InvokeResult is the blocking endpoint's response.
type InvokeResult struct {
	DataResults         []map[string]any `json:"data_results"`
	InvestigationResult map[string]any   `json:"investigation_result"`
}

// Invoke runs a full investigation without streaming and returns the final
// results.
func (c *Client) Invoke(ctx context.Context, prompts PromptSet) (*InvokeResult, error) {
	resp, err := c.post(ctx, "/Investigator-Agent", prompts)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var result InvokeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode invoke response: %w", err)
	}
	return &result, nil
}

// Start opens the streaming endpoint and returns a Stream ready to Run.
// Errors before the stream is established (request construction, transport
// failure, non-2xx status) are returned directly; once Start succeeds, all
// subsequent failures are delivered through the error callback.
func (c *Client) Start(ctx context.Context, prompts PromptSet, cb Callbacks) (*Stream, error) {
	resp, err := c.post(ctx, "/Investigator-Agent/stream", prompts)
	if err != nil {
		return nil, err
	}

	if err := c.checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	if resp.Body == nil {
		return nil, fmt.Errorf("stream response has no body")
	}
	return NewStream(resp.Body, cb), nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	return resp, nil
}

// checkStatus maps a non-2xx response to an error. A 401 additionally
// invalidates the stored credential.
func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil {
		c.tokens.Invalidate()
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
}

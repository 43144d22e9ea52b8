// Package archestra implements the client for the Archestra multi-agent
// backend: conversation creation plus chat streaming over server-sent
// events.
package archestra

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kart-io/logger"

	archestraopts "github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/pkg/options/archestra"
	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/pkg/sse"
	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/pkg/utils/json"
)

// Upstream event types on the chat stream.
const (
	TypeTextStart  = "text-start"
	TypeTextDelta  = "text-delta"
	TypeTextEnd    = "text-end"
	TypeToolInput  = "tool-input-available"
	TypeToolOutput = "tool-output-available"
	TypeToolError  = "tool-output-error"
)

// Event is one decoded upstream chat event. Fields are populated per Type;
// Output and Input may be arbitrary JSON values.
type Event struct {
	Type       string `json:"type"`
	Delta      string `json:"delta"`
	ToolName   string `json:"toolName"`
	Input      any    `json:"input"`
	ToolCallID string `json:"toolCallId"`
	Output     any    `json:"output"`
	ErrorText  string `json:"errorText"`
}

// Client talks to one Archestra backend.
type Client struct {
	opts       *archestraopts.Options
	httpClient *http.Client
}

// New creates a client from options. The HTTP client timeout covers
// conversation creation only; streaming requests run without an overall
// deadline and rely on ctx.
func New(opts *archestraopts.Options) *Client {
	return &Client{
		opts:       opts,
		httpClient: &http.Client{},
	}
}

type conversationRequest struct {
	AgentID          string `json:"agentId"`
	Title            string `json:"title"`
	SelectedModel    string `json:"selectedModel"`
	SelectedProvider string `json:"selectedProvider"`
	ChatAPIKeyID     string `json:"chatApiKeyId"`
}

type conversationResponse struct {
	ID string `json:"id"`
}

// CreateConversation opens a conversation with an agent and returns its ID.
// Transient failures are retried up to the configured limit.
func (c *Client) CreateConversation(ctx context.Context, agentID, title string) (string, error) {
	payload := conversationRequest{
		AgentID:          agentID,
		Title:            title,
		SelectedModel:    c.opts.Model,
		SelectedProvider: c.opts.Provider,
		ChatAPIKeyID:     c.opts.ChatAPIKeyID,
	}

	resp, err := c.doWithRetry(ctx, "/api/chat/conversations", payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var conv conversationResponse
	if err := json.NewDecoder(resp.Body).Decode(&conv); err != nil {
		return "", fmt.Errorf("failed to decode conversation response: %w", err)
	}
	if conv.ID == "" {
		return "", errors.New("conversation response has no id")
	}
	return conv.ID, nil
}

type chatMessage struct {
	ID      string        `json:"id"`
	Role    string        `json:"role"`
	Content string        `json:"content"`
	Parts   []messagePart `json:"parts"`
}

type messagePart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type chatRequest struct {
	ID       string        `json:"id"`
	Messages []chatMessage `json:"messages"`
	Trigger  string        `json:"trigger"`
}

// StreamChat sends one user message on a conversation and invokes fn for
// every decoded event until the stream ends. Malformed events are logged
// and skipped. A non-nil error from fn aborts the stream.
func (c *Client) StreamChat(ctx context.Context, conversationID, message string, fn func(Event) error) error {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	payload := chatRequest{
		ID: conversationID,
		Messages: []chatMessage{{
			ID:      "msg-" + randomHex(4),
			Role:    "user",
			Content: message,
			Parts:   []messagePart{{Type: "text", Text: message}},
		}},
		Trigger: "submit-message",
	}

	resp, err := c.post(ctx, "/api/chat", payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(resp)
	}

	return consumeStream(resp.Body, fn)
}

func consumeStream(body io.Reader, fn func(Event) error) error {
	var reader sse.LineReader
	buf := make([]byte, 4096)

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			for _, line := range reader.Feed(buf[:n]) {
				done, err := dispatchLine(line, fn)
				if err != nil || done {
					return err
				}
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				if tail, ok := reader.Flush(); ok {
					if _, err := dispatchLine(tail, fn); err != nil {
						return err
					}
				}
				return nil
			}
			return fmt.Errorf("chat stream read failed: %w", readErr)
		}
	}
}

func dispatchLine(line string, fn func(Event) error) (done bool, err error) {
	switch f := sse.Classify(line); f.Kind {
	case sse.FrameDone:
		return true, nil
	case sse.FrameData:
		var ev Event
		if err := json.Unmarshal([]byte(f.Data), &ev); err != nil {
			logger.Warnw("Dropping malformed chat event", "error", err)
			return false, nil
		}
		return false, fn(ev)
	default:
		return false, nil
	}
}

func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.opts.APIKey != "" {
		req.Header.Set("Authorization", c.opts.APIKey)
	}

	return c.httpClient.Do(req)
}

// doWithRetry posts with exponential backoff on transport errors and 5xx
// responses.
func (c *Client) doWithRetry(ctx context.Context, path string, payload any) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			logger.Infow("Retrying archestra request", "path", path, "attempt", attempt)
		}

		resp, err := c.post(ctx, path, payload)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = c.statusError(resp)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, c.statusError(resp)
		}
		return resp, nil
	}
	return nil, fmt.Errorf("request to %s failed after %d attempts: %w", path, c.opts.MaxRetries+1, lastErr)
}

func (c *Client) statusError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	resp.Body.Close()
	return fmt.Errorf("archestra returned status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "00000000"[:n*2]
	}
	return hex.EncodeToString(b)
}

// Package reasoning talks to the remote language-model service that answers
// chat messages, and synthesises deterministic replies when it cannot.
package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a whole reasoning call.
const DefaultTimeout = 10 * time.Second

const maxErrorBody = 512

// ErrEmptyReply is returned when the service answers 2xx without usable text.
var ErrEmptyReply = errors.New("reasoning: empty reply")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("reasoning: unexpected status %d: %s", e.Status, e.Body)
}

// Asker answers a chat message.
type Asker interface {
	Ask(ctx context.Context, req Request) (Response, error)
}

// Client posts requests to the reasoning endpoint.
type Client struct {
	url        string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a client for the given endpoint. A non-positive timeout
// uses DefaultTimeout.
func NewClient(url, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:        strings.TrimRight(url, "/"),
		apiKey:     apiKey,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// Ask sends one request. The call is cut off after the client timeout even
// when ctx has no deadline. There are no retries.
func (c *Client) Ask(ctx context.Context, req Request) (Response, error) {
	if n := len(req.Context.ConversationHistory); n > MaxHistory {
		req.Context.ConversationHistory = req.Context.ConversationHistory[n-MaxHistory:]
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Response{}, &StatusError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrEmptyReply, err)
	}
	out.Text = strings.TrimSpace(out.Text)
	if out.Text == "" {
		return Response{}, ErrEmptyReply
	}
	if out.Suggestion != nil {
		out.Suggestion.Confidence = clamp01(out.Suggestion.Confidence)
		if len(out.Suggestion.Fields) == 0 {
			out.Suggestion = nil
		}
	}
	return out, nil
}

// Cause classifies an Ask error for metrics labels.
func Cause(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &se):
		return "status"
	case errors.Is(err, ErrEmptyReply):
		return "empty"
	default:
		return "transport"
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

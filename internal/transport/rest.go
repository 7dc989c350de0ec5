package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/floatchat/floatchat-go/internal/domain"
)

// ClientConfig holds configuration for the REST client.
type ClientConfig struct {
	BaseURL         string
	Timeout         time.Duration
	SecurityHeaders bool
}

// DefaultClientConfig returns default configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL: "http://localhost:5001",
		Timeout: 30 * time.Second,
	}
}

// Client calls the chat backend's REST endpoints. Every request carries a
// fresh X-Request-ID for tracing and is bounded by the configured timeout; a
// timeout surfaces as an ordinary request error.
type Client struct {
	baseURL         string
	timeout         time.Duration
	securityHeaders bool
	httpClient      *http.Client
	logger          *slog.Logger
}

// NewClient creates a REST client for the chat backend.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultClientConfig().Timeout
	}
	return &Client{
		baseURL:         cfg.BaseURL,
		timeout:         cfg.Timeout,
		securityHeaders: cfg.SecurityHeaders,
		httpClient:      &http.Client{},
		logger:          logger,
	}
}

// postMessageRequest is the body for the message endpoint.
type postMessageRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// HistoryMessage is one entry of the persisted-history response. Timestamp
// is epoch milliseconds and may be absent.
type HistoryMessage struct {
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

type messagesResponse struct {
	Messages []HistoryMessage `json:"messages"`
}

type sessionsResponse struct {
	Sessions []domain.Session `json:"sessions"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// PostMessage sends a user message and returns the backend's raw reply for
// the response formatter to interpret.
func (c *Client) PostMessage(ctx context.Context, sessionID, message string) (json.RawMessage, error) {
	body := postMessageRequest{SessionID: sessionID, Message: message}
	return c.do(ctx, http.MethodPost, "/chat/message", body)
}

// Messages fetches the persisted history for a session.
func (c *Client) Messages(ctx context.Context, sessionID string) ([]HistoryMessage, error) {
	raw, err := c.do(ctx, http.MethodGet, "/chat/messages/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, err
	}

	var resp messagesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return resp.Messages, nil
}

// Sessions lists the sessions known to the backend for a user.
func (c *Client) Sessions(ctx context.Context, userID string) ([]domain.Session, error) {
	raw, err := c.do(ctx, http.MethodGet, "/chat/sessions?user_id="+url.QueryEscape(userID), nil)
	if err != nil {
		return nil, err
	}

	var resp sessionsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	return resp.Sessions, nil
}

// Health probes the backend liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	raw, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}

	var resp healthResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("decode health: %w", err)
	}
	if resp.Status != "healthy" {
		return fmt.Errorf("backend reported status %q", resp.Status)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.securityHeaders {
		req.Header.Set("X-Content-Type-Options", "nosniff")
		req.Header.Set("X-Frame-Options", "DENY")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("Failed to close response body", "path", path, "error", closeErr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("request %s: unexpected status %d", path, resp.StatusCode)
	}
	return raw, nil
}

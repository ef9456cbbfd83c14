// Package client provides an API client for a remote counter server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"grimm.is/sincelast/internal/brand"
)

// CountResponse mirrors the API count payload.
// Defined locally to avoid importing the heavy internal/api package.
type CountResponse struct {
	Epoch int64 `json:"epoch"`
}

// ResetRequest mirrors the API reset payload.
type ResetRequest struct {
	Epoch int64 `json:"epoch"`
}

// ServerInfo mirrors the API ServerInfo response.
type ServerInfo struct {
	Status       string `json:"status"`
	Uptime       string `json:"uptime"`
	StartTime    string `json:"start_time"`
	Version      string `json:"version"`
	Epoch        int64  `json:"epoch"`
	Elapsed      string `json:"elapsed"`
	StateVersion uint64 `json:"state_version"`
}

// APIClient defines the interface for interacting with a remote counter
// server. The TUI runs against this interface so tests can substitute a
// fake.
type APIClient interface {
	GetCount(fallback int64) (int64, error)
	ResetCount(epoch int64) (int64, error)
	GetStatus() (*ServerInfo, error)
	WatchResets(ctx context.Context, onReset func(epoch int64)) error
}

// HTTPClient is an HTTP-based implementation of APIClient.
type HTTPClient struct {
	baseURL    string
	language   string
	httpClient *http.Client
}

// ClientOption configures the HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.httpClient.Timeout = d
	}
}

// WithLanguage sets the Accept-Language header for all requests.
func WithLanguage(lang string) ClientOption {
	return func(c *HTTPClient) {
		c.language = lang
	}
}

// NewHTTPClient creates a new HTTPClient for the given base URL.
func NewHTTPClient(baseURL string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doRequest performs an HTTP request and decodes the JSON response.
func (c *HTTPClient) doRequest(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", brand.UserAgent(brand.Version))
	if c.language != "" {
		req.Header.Set("Accept-Language", c.language)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// GetCount retrieves the persisted reset epoch. The fallback is the
// epoch to initialize an empty store to, typically the caller's current
// time.
func (c *HTTPClient) GetCount(fallback int64) (int64, error) {
	var out CountResponse
	path := fmt.Sprintf("/api/count?fallback=%d", fallback)
	if err := c.doRequest(http.MethodGet, path, nil, &out); err != nil {
		return 0, err
	}
	return out.Epoch, nil
}

// ResetCount persists a new reset epoch and returns the stored value.
func (c *HTTPClient) ResetCount(epoch int64) (int64, error) {
	var out CountResponse
	if err := c.doRequest(http.MethodPost, "/api/reset", ResetRequest{Epoch: epoch}, &out); err != nil {
		return 0, err
	}
	return out.Epoch, nil
}

// GetStatus retrieves the server status.
func (c *HTTPClient) GetStatus() (*ServerInfo, error) {
	var info ServerInfo
	if err := c.doRequest(http.MethodGet, "/api/status", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// WatchResets connects to the WebSocket endpoint and invokes onReset
// for every reset pushed by the server. It blocks until the connection
// closes or ctx is cancelled; a nil error means ctx ended the watch.
func (c *HTTPClient) WatchResets(ctx context.Context, onReset func(epoch int64)) error {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/api/ws"

	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 45 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial websocket: %w", err)
	}
	defer conn.Close()

	// Unblock the read loop when the context ends.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		}

		var msg struct {
			Topic string          `json:"topic"`
			Data  json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(message, &msg); err != nil {
			continue // Skip malformed
		}

		if msg.Topic == "reset" {
			var payload CountResponse
			if err := json.Unmarshal(msg.Data, &payload); err != nil {
				continue
			}
			onReset(payload.Epoch)
		}
	}
}

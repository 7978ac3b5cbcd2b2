package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/shinjunhee/portfolio-chatbot/web/internal/config"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/logger"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/model/chat"
)

// Chatter sends one user message to the chat backend.
type Chatter interface {
	Chat(ctx context.Context, req chat.Request) (chat.Response, error)
}

// StatusError reports a non-2xx reply from the backend.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("chat backend returned status %d", e.Code)
	}
	return fmt.Sprintf("chat backend returned status %d: %s", e.Code, e.Body)
}

// Client talks to the backend's POST /chat endpoint.
type Client struct {
	url  string
	http *http.Client
	log  zerolog.Logger
}

// NewClient builds a Client for the configured backend.
func NewClient(cfg config.BackendConfig) *Client {
	return NewClientWithHTTP(cfg.ChatURL(), &http.Client{Timeout: cfg.Timeout})
}

// NewClientWithHTTP builds a Client posting to chatURL with the given http.Client.
func NewClientWithHTTP(chatURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		url:  chatURL,
		http: httpClient,
		log:  logger.Component("backend"),
	}
}

// Chat posts req and decodes the reply. Any non-2xx status is an error, whatever the body says.
func (c *Client) Chat(ctx context.Context, req chat.Request) (chat.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return chat.Response{}, fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return chat.Response{}, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return chat.Response{}, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return chat.Response{}, &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	}

	var out chat.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return chat.Response{}, fmt.Errorf("decode chat response: %w", err)
	}

	c.log.Debug().
		Dur("elapsed", time.Since(start)).
		Str("session", out.SessionID).
		Str("company", out.DetectedCompany).
		Strs("actions", out.AgentActions).
		Msg("chat backend replied")

	return out, nil
}

// Package transport is the HTTP client for the shop backend's chat and order
// endpoints.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/interlux/shopchat/pkg/logger"
)

// Version is reported in the User-Agent header. Overridden at build time.
var Version = "dev"

const maxResponseBody = 4 << 20

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = "shopchat/" + Version
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: ua,
		client:    hc,
	}
}

// SendMessage posts one user message. userID may be empty before the backend
// has assigned one.
func (c *Client) SendMessage(ctx context.Context, text, userID string) (*ChatReply, error) {
	form := url.Values{}
	form.Set("message", text)
	form.Set("user_id", userID)

	endpoint := c.baseURL + "/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var reply ChatReply
	if err := c.do(req, "send message", &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// FetchOrders returns the order list for userID. A non-2xx answer is a
// *ServerError; callers treat it as "no orders".
func (c *Client) FetchOrders(ctx context.Context, userID string) ([]Order, error) {
	endpoint := c.baseURL + "/orders/" + url.PathEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build orders request: %w", err)
	}

	var out ordersResponse
	if err := c.do(req, "fetch orders", &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (c *Client) do(req *http.Request, op string, into interface{}) error {
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	endpoint := req.URL.String()
	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		return &NetworkError{Op: op, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return &NetworkError{Op: op, URL: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}

	logger.DebugCF("transport", "Backend request finished", map[string]interface{}{
		"op":          op,
		"status":      resp.StatusCode,
		"request_id":  requestID,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServerError{Op: op, URL: endpoint, StatusCode: resp.StatusCode, Body: snippet(body)}
	}

	if err := json.Unmarshal(body, into); err != nil {
		return &ServerError{
			Op:         op,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       snippet(body),
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}

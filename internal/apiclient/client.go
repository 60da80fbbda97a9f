// Package apiclient is the storefront's HTTP client for the café API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/types"
)

const defaultTimeout = 15 * time.Second

// Error is a non-2xx API response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// PublicMessage is the server-provided message, if any.
func (e *Error) PublicMessage() string {
	return e.Message
}

// Client talks to the /api/v1 surface. Cookies (the browser session carrying
// the edit flag) are kept in a jar for the client's lifetime.
type Client struct {
	baseURL *url.URL
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its Jar is kept if set.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the bearer access token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New builds a client for baseURL, e.g. http://localhost:8080/api/v1.
func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: parsed,
		http:    &http.Client{Timeout: defaultTimeout, Jar: jar},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		c.http.Jar = jar
	}
	return c, nil
}

// SetToken swaps the bearer token, e.g. after login or refresh.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Cookies returns the cookies stored for the API host.
func (c *Client) Cookies() []*http.Cookie {
	return c.http.Jar.Cookies(c.baseURL)
}

// SetCookies seeds the jar, e.g. with a persisted session cookie.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	c.http.Jar.SetCookies(c.baseURL, cookies)
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + "/" + strings.TrimLeft(path, "/")
}

// Do sends body as JSON and decodes the data envelope into out (when non-nil).
func (c *Client) Do(ctx context.Context, method, path string, body, out any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		var envelope types.ErrorEnvelope
		if json.Unmarshal(raw, &envelope) == nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
			apiErr.Details = envelope.Error.Details
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// Update sends a content write and returns the stored record.
func (c *Client) Update(ctx context.Context, method, path string, body map[string]any) (map[string]any, error) {
	var out map[string]any
	if err := c.Do(ctx, method, path, body, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRecord fetches a singleton content resource.
func (c *Client) GetRecord(ctx context.Context, path string) (map[string]any, error) {
	var out map[string]any
	if err := c.Do(ctx, http.MethodGet, path, nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// List fetches a collection content resource.
func (c *Client) List(ctx context.Context, path string) ([]map[string]any, error) {
	var out []map[string]any
	if err := c.Do(ctx, http.MethodGet, path, nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

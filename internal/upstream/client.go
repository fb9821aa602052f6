// Package upstream talks to the remote service's Connect-style RPC API.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pysugar/surfvault/internal/logging"
	"github.com/pysugar/surfvault/internal/util"
)

const (
	DefaultBaseURL      = "https://server.codeium.com"
	DefaultAnalyticsURL = "https://web-backend.windsurf.com"
	DefaultTimeout      = 30 * time.Second

	analyticsPath = "/exa.user_analytics_pb.UserAnalyticsService/GetAnalytics"

	// DefaultUserAgent is sent unless SURFVAULT_USER_AGENT overrides it.
	DefaultUserAgent = "surfvault/1 (+connect-go)"
)

func configuredUserAgent() string {
	if ua := strings.TrimSpace(os.Getenv("SURFVAULT_USER_AGENT")); ua != "" {
		return ua
	}
	return DefaultUserAgent
}

// ErrUnauthenticated marks responses in which the remote side rejected the
// bearer token.
var ErrUnauthenticated = errors.New("unauthenticated")

// APIError is a non-success response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	// RetryAfter is parsed from the Retry-After header when present.
	RetryAfter time.Duration
	auth       bool
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("upstream %d %s: %s", e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("upstream %d: %s", e.StatusCode, msg)
}

// Unwrap exposes ErrUnauthenticated for auth failures.
func (e *APIError) Unwrap() error {
	if e.auth {
		return ErrUnauthenticated
	}
	return nil
}

// IsAuthFailure reports whether err means the token was rejected.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

// Options configures a Client.
type Options struct {
	BaseURL      string
	AnalyticsURL string
	Timeout      time.Duration
	// ProxyURL routes every request through an HTTP proxy when set.
	ProxyURL string
}

// Client handles communication with the remote API
type Client struct {
	httpClient   *http.Client
	baseURL      string
	analyticsURL string
}

// NewClient creates a new upstream client
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.AnalyticsURL == "" {
		opts.AnalyticsURL = DefaultAnalyticsURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	httpClient, err := NewHTTPClient(opts.Timeout, opts.ProxyURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		analyticsURL: strings.TrimRight(opts.AnalyticsURL, "/"),
	}, nil
}

// NewHTTPClient builds an http.Client that honours an optional proxy.
func NewHTTPClient(timeout time.Duration, proxyURL string) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy url %q", proxyURL)
		}
		transport.Proxy = http.ProxyURL(u)
	}
	return &http.Client{Timeout: timeout, Transport: transport}, nil
}

// HTTPClient returns the underlying client so other exchanges share the
// proxy settings.
func (c *Client) HTTPClient() *http.Client { return c.httpClient }

// Invoke calls service/method with a JSON body and decodes the JSON reply
// into out when out is non-nil.
func (c *Client) Invoke(ctx context.Context, service, method, token string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, service, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Connect-Protocol-Version", "1")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	body, err := c.do(ctx, req, method)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}

// GetAnalytics posts an encoded analytics request and returns the raw
// binary reply.
func (c *Client) GetAnalytics(ctx context.Context, apiKey string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.analyticsURL+analyticsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/proto")
	req.Header.Set("Connect-Protocol-Version", "1")
	req.Header.Set("X-Api-Key", apiKey)
	req.Header.Set("X-Auth-Token", apiKey)
	log.Printf("%s📊 GetAnalytics request: %d bytes", logging.Prefix(ctx), len(payload))
	return c.do(ctx, req, "GetAnalytics")
}

func (c *Client) do(ctx context.Context, req *http.Request, method string) ([]byte, error) {
	req.Header.Set("User-Agent", configuredUserAgent())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", method, err)
	}
	if apiErr := classify(resp, body); apiErr != nil {
		log.Printf("%s⚠️ %s returned %d: %s", logging.Prefix(ctx), method, resp.StatusCode, util.TruncateBytes(body))
		return nil, apiErr
	}
	return body, nil
}

type errorBody struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

// classify returns nil for successful responses. A 401 status, a Connect
// "unauthenticated" code or an embedded status_code of 401 all count as
// auth failures, even on a 200 response.
func classify(resp *http.Response, body []byte) *APIError {
	var eb errorBody
	if len(body) > 0 && body[0] == '{' {
		_ = json.Unmarshal(body, &eb)
	}
	auth := resp.StatusCode == http.StatusUnauthorized ||
		strings.EqualFold(eb.Code, "unauthenticated") ||
		eb.StatusCode == http.StatusUnauthorized
	if !auth && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	status := resp.StatusCode
	if auth && status < 300 {
		status = http.StatusUnauthorized
	}
	return &APIError{
		StatusCode: status,
		Code:       eb.Code,
		Message:    eb.Message,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		auth:       auth,
	}
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		return time.Until(t)
	}
	return 0
}

package gateway

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/me/linkshort/pkg/model"
)

// TokenSource supplies the bearer token for outgoing requests. The client
// only reads it; Invalidate is called with the token that was sent when the
// gateway rejects it on an endpoint that requires authentication.
type TokenSource interface {
	Token() string
	Invalidate(ctx context.Context, token string, cause error)
}

// Request describes one gateway call.
type Request struct {
	Method string
	Path   string
	Body   any
	Header http.Header

	// Auth marks endpoints that require a session. A 401 on such a
	// request invalidates the token source.
	Auth bool
}

// Response is a successful gateway response. JSON holds the parsed body
// when it was valid JSON. Location is set when the gateway answered with a
// redirect, which the client never follows.
type Response struct {
	Status   int
	Body     []byte
	JSON     any
	Location string

	isJSON bool
}

// NewResponse builds a Response, parsing body as JSON when possible.
func NewResponse(status int, body []byte) *Response {
	resp := &Response{Status: status, Body: body}
	if err := json.Unmarshal(body, &resp.JSON); err == nil {
		resp.isJSON = true
	}
	return resp
}

// IsJSON reports whether the body parsed as JSON.
func (r *Response) IsJSON() bool {
	return r.isJSON
}

// Text returns the raw body.
func (r *Response) Text() string {
	return string(r.Body)
}

// Value returns the parsed JSON body, or the raw text when it did not parse.
func (r *Response) Value() any {
	if r.isJSON {
		return r.JSON
	}
	return r.Text()
}

// Client calls the gateway.
type Client struct {
	httpClient *http.Client
	config     Config
	tokens     TokenSource
	logger     *slog.Logger
}

// Option configures optional Client dependencies.
type Option func(*Client)

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new gateway client with the given configuration.
func NewClient(config Config, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	c := &Client{
		httpClient: newHTTPClient(config),
		config:     config,
		logger:     logger.With("component", "gateway-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newHTTPClient(config Config) *http.Client {
	hc := &http.Client{
		Timeout: config.Timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	if config.InsecureSkipTLS {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for localhost gateways
		hc.Transport = transport
	}
	return hc
}

// BaseURL returns the configured gateway base.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// Do executes req and returns the response, or a *model.Error describing why
// it failed. Transport errors never escape unwrapped.
func (c *Client) Do(ctx context.Context, op string, req Request) (*Response, error) {
	url := c.config.BaseURL + req.Path
	reqID := uuid.NewString()
	logger := c.logger.With("op", op, "method", req.Method, "url", url, "request_id", reqID)

	var bodyReader io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &model.Error{Kind: model.KindValidation, Op: op, Message: fmt.Sprintf("encode request: %v", err), Err: err}
		}
		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, bodyReader)
	if err != nil {
		return nil, transportError(op, fmt.Errorf("create request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", reqID)
	if c.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	token := c.token()
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	logger.Debug("sending request", "authenticated", token != "")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Debug("request failed", "error", err)
		return nil, transportError(op, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, transportError(op, fmt.Errorf("read response: %w", err))
	}

	location := httpResp.Header.Get("Location")
	isRedirect := httpResp.StatusCode >= 300 && httpResp.StatusCode <= 399 && location != ""

	if !isRedirect && (httpResp.StatusCode < 200 || httpResp.StatusCode > 299) {
		apiErr := statusError(op, httpResp.StatusCode, respBody)
		logger.Debug("gateway error", "status", httpResp.StatusCode, "message", apiErr.Message)

		if apiErr.Status == http.StatusUnauthorized && req.Auth && token != "" && c.tokens != nil {
			logger.Info("gateway rejected session token")
			c.tokens.Invalidate(ctx, token, apiErr)
		}
		return nil, apiErr
	}

	resp := NewResponse(httpResp.StatusCode, respBody)
	if isRedirect {
		resp.Location = location
	}

	logger.Debug("request successful", "status", resp.Status, "json", resp.isJSON)
	return resp, nil
}

// DecodeAs unmarshals a JSON response into T. A body that is not JSON
// (empty or plain text) yields the zero value; a JSON body of the wrong shape
// is an error.
func DecodeAs[T any](op string, resp *Response) (T, error) {
	var result T
	if resp == nil || !resp.isJSON {
		return result, nil
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return result, &model.Error{
			Kind:    model.KindTransport,
			Op:      op,
			Status:  resp.Status,
			Message: fmt.Sprintf("unexpected response: %v", err),
			Err:     err,
		}
	}
	return result, nil
}

package agentapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/xolak-dev/xolak-cli/internal/domain"
	"github.com/xolak-dev/xolak-cli/internal/logger"
	"github.com/xolak-dev/xolak-cli/pkg/httpclient"
)

const (
	queryAgentPath = "/query-agent"
	healthPath     = "/health"
)

var jsonHeaders = map[string]string{
	"Content-Type": "application/json",
	"Accept":       "application/json",
}

// HTTPClient aliases the shared httpclient.Client interface.
type HTTPClient = httpclient.Client

// Logger is the structured logging surface the client writes diagnostics to.
type Logger = logger.Logger

type queryRequest struct {
	Query string `json:"query"`
}

// Client talks to the recommendation agent backend. It is safe for
// concurrent use; calls share no mutable state.
type Client struct {
	baseURL string
	http    HTTPClient
	log     Logger
}

// NewClient builds a client for baseURL, typically the result of
// ResolveBaseURL. A nil httpClient gets a resty client with no timeout.
func NewClient(baseURL string, httpClient HTTPClient, log Logger) *Client {
	if httpClient == nil {
		httpClient = httpclient.NewRestyClient(0)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		log:     log,
	}
}

// BaseURL returns the backend requests go to: the resolved base, or for
// same-origin clients the origin the transport resolves relative paths
// against. It is "" when neither is known.
func (c *Client) BaseURL() string {
	if c.baseURL != "" {
		return c.baseURL
	}
	if b, ok := c.http.(interface{ BaseURL() string }); ok {
		return b.BaseURL()
	}
	return ""
}

func (c *Client) endpoint(path string) string { return c.baseURL + path }

// QueryAgent submits a free-text query and returns the backend's
// recommendations. Failures come back as *StatusError, *TransportError, or
// the underlying error unchanged. No retries are attempted.
func (c *Client) QueryAgent(ctx context.Context, query string) (*domain.QueryResponse, error) {
	apiURL := c.endpoint(queryAgentPath)
	c.log.DebugObj("query-agent request", "query_request", map[string]any{
		"url":   apiURL,
		"query": query,
	})

	resp, err := c.http.Post(ctx, apiURL, jsonHeaders, queryRequest{Query: query})
	if err != nil {
		err = classifyTransportError(c.BaseURL(), err)
		c.log.ErrorObj("query-agent request failed", "query_error", map[string]any{
			"url":   apiURL,
			"error": err.Error(),
		})
		return nil, err
	}

	c.log.DebugObj("query-agent response", "query_response_meta", map[string]any{
		"status":  resp.StatusCode(),
		"headers": flattenHeaders(resp.Header()),
	})

	if !resp.IsSuccess() {
		statusErr := &StatusError{StatusCode: resp.StatusCode(), Body: bodyText(resp.Body())}
		c.log.ErrorObj("query-agent returned error status", "query_error", map[string]any{
			"status": statusErr.StatusCode,
			"body":   statusErr.Body,
		})
		return nil, statusErr
	}

	var out domain.QueryResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		c.log.ErrorObj("query-agent response decode failed", "query_error", err.Error())
		return nil, fmt.Errorf("decode query-agent response: %w", err)
	}
	c.log.DebugObj("query-agent response payload", "query_response", out)
	return &out, nil
}

// CheckHealth reports whether the backend health endpoint answers with a
// 2xx status. Transport failures are logged and reported as false.
func (c *Client) CheckHealth(ctx context.Context) bool {
	healthURL := c.endpoint(healthPath)
	c.log.DebugObj("checking backend health", "health_url", healthURL)

	resp, err := c.http.Get(ctx, healthURL, nil)
	if err != nil {
		c.log.WarnObj("backend health check failed", "health_error", map[string]any{
			"url":   healthURL,
			"error": classifyTransportError(c.BaseURL(), err).Error(),
		})
		return false
	}

	c.log.DebugObj("health check response", "health_status", resp.StatusCode())
	return resp.IsSuccess()
}

func flattenHeaders(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}

package publishers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xolak-dev/xolak-cli/pkg/httpclient"
)

const errorBodyLimit = 512

// requestDoer is the part of httpclient.RestyClient the webhook sink uses.
type requestDoer interface {
	Do(ctx context.Context, method, url string, headers map[string]string, body any) (httpclient.Response, error)
}

// httpPublisher posts each event as JSON to a webhook.
type httpPublisher struct {
	id      string
	target  HTTPPublisherConfig
	headers map[string]string
	client  requestDoer
	log     Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("missing http configuration")
	}

	headers := make(map[string]string, len(cfg.HTTP.Headers)+1)
	for k, v := range cfg.HTTP.Headers {
		headers[k] = v
	}
	headers["Content-Type"] = "application/json"

	return &httpPublisher{
		id:      cfg.ID,
		target:  *cfg.HTTP,
		headers: headers,
		client:  httpclient.NewRestyClient(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second),
		log:     ensureLogger(log),
	}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return TypeHTTP }

func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	resp, err := h.client.Do(ctx, h.target.Method, h.target.URL, h.headers, evt)
	if err != nil {
		return fmt.Errorf("%s %s: %w", h.target.Method, h.target.URL, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%s %s: status %d: %s", h.target.Method, h.target.URL, resp.StatusCode(), truncateBody(resp.Body()))
	}

	h.log.DebugObj("http publisher delivered event", "publisher_http_delivery", map[string]any{
		"publisher_id": h.id,
		"status":       resp.StatusCode(),
	})
	return nil
}

func truncateBody(body []byte) string {
	if len(body) > errorBodyLimit {
		body = body[:errorBodyLimit]
	}
	return strings.TrimSpace(string(body))
}

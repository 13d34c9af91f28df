package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client  *resty.Client
	baseURL string
}

// Options tunes the underlying resty client. The zero value sets no timeout
// and no base URL.
type Options struct {
	// Timeout bounds each request; zero leaves cancellation to the caller's context.
	Timeout time.Duration
	// BaseURL is prepended to relative request paths.
	BaseURL string
}

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return NewRestyClientWithOptions(Options{Timeout: timeout})
}

// NewRestyClientWithOptions creates a RestyClient from opts.
func NewRestyClientWithOptions(opts Options) *RestyClient {
	c := newRestyBaseClient(opts.Timeout)
	if opts.BaseURL != "" {
		c.SetBaseURL(opts.BaseURL)
	}
	return &RestyClient{client: c, baseURL: opts.BaseURL}
}

// BaseURL returns the base relative paths are resolved against, if any.
func (r *RestyClient) BaseURL() string { return r.baseURL }

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c
}

// Get performs an HTTP GET request with the specified context, URL, and headers.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	return r.Do(ctx, http.MethodGet, url, headers, nil)
}

// Post performs an HTTP POST request. body is serialized by resty according
// to its type and the Content-Type header.
func (r *RestyClient) Post(ctx context.Context, url string, headers map[string]string, body any) (Response, error) {
	return r.Do(ctx, http.MethodPost, url, headers, body)
}

// Do performs a request with an arbitrary method. A nil body sends none.
func (r *RestyClient) Do(ctx context.Context, method, url string, headers map[string]string, body any) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }
func (r *restyResponseAdapter) IsSuccess() bool     { return r.resp.IsSuccess() }

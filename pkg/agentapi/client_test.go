package agentapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xolak-dev/xolak-cli/internal/domain"
	"github.com/xolak-dev/xolak-cli/pkg/httpclient"
)

// failingHTTPClient returns err from every call.
type failingHTTPClient struct {
	err error
}

func (f failingHTTPClient) Get(context.Context, string, map[string]string) (httpclient.Response, error) {
	return nil, f.err
}

func (f failingHTTPClient) Post(context.Context, string, map[string]string, any) (httpclient.Response, error) {
	return nil, f.err
}

func TestQueryAgentReturnsPayloadUnchanged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/query-agent", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "beginner go projects", body["query"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"recommendations":[],"message":"ok"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil, nil)
	resp, err := client.QueryAgent(context.Background(), "beginner go projects")
	require.NoError(t, err)
	assert.Equal(t, &domain.QueryResponse{Recommendations: []domain.Repository{}, Message: "ok"}, resp)
}

func TestQueryAgentDecodesRecommendations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"recommendations": [{
				"name": "cobra",
				"url": "https://github.com/spf13/cobra",
				"description": "CLI framework",
				"language": "Go",
				"stars": 38000,
				"difficulty": "beginner",
				"good_first_issues": [{"title": "docs typo", "url": "https://github.com/spf13/cobra/issues/1"}]
			}],
			"message": "found 1",
			"agent_id": "agent-7"
		}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, nil, nil).QueryAgent(context.Background(), "cli")
	require.NoError(t, err)
	require.Len(t, resp.Recommendations, 1)
	repo := resp.Recommendations[0]
	assert.Equal(t, "cobra", repo.Name)
	assert.Equal(t, 38000, repo.Stars)
	assert.Equal(t, []domain.GoodFirstIssue{{Title: "docs typo", URL: "https://github.com/spf13/cobra/issues/1"}}, repo.GoodFirstIssues)
	assert.Equal(t, "agent-7", resp.AgentID)
}

func TestQueryAgentStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`"boom"`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil, nil).QueryAgent(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "boom")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestQueryAgentTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(srv.URL, nil, nil).QueryAgent(ctx, "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, ErrTimeout.Error(), err.Error())
}

func TestQueryAgentCancelledContextIsTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient("http://127.0.0.1:1", nil, nil).QueryAgent(ctx, "q")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestQueryAgentUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := NewClient(base, nil, nil).QueryAgent(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.Equal(t, "cannot connect to backend server at "+base+", please make sure it is running", err.Error())
}

func TestQueryAgentUnreachableSameOriginNamesOrigin(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	origin := srv.URL
	srv.Close()

	hc := httpclient.NewRestyClientWithOptions(httpclient.Options{BaseURL: origin})
	client := NewClient("", hc, nil)
	assert.Equal(t, origin, client.BaseURL())

	_, err := client.QueryAgent(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.Contains(t, err.Error(), "at "+origin+",")
	assert.NotContains(t, err.Error(), queryAgentPath)
}

func TestClientBaseURL(t *testing.T) {
	assert.Equal(t, "http://backend", NewClient("http://backend", nil, nil).BaseURL())
	assert.Equal(t, "", NewClient("", failingHTTPClient{}, nil).BaseURL())
}

func TestQueryAgentPassesThroughUnclassifiedErrors(t *testing.T) {
	weird := errors.New("weird failure")
	_, err := NewClient("http://backend", failingHTTPClient{err: weird}, nil).QueryAgent(context.Background(), "q")
	assert.Same(t, weird, err)
}

func TestQueryAgentDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil, nil).QueryAgent(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode query-agent response")
}

func TestQueryAgentSameOriginUsesRelativePath(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"recommendations":[],"message":"ok"}`))
	}))
	defer srv.Close()

	hc := httpclient.NewRestyClientWithOptions(httpclient.Options{BaseURL: srv.URL})
	client := NewClient("", hc, nil)
	_, err := client.QueryAgent(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "/query-agent", path)
}

func TestCheckHealth(t *testing.T) {
	for _, tc := range []struct {
		status int
		want   bool
	}{
		{status: http.StatusOK, want: true},
		{status: http.StatusNoContent, want: true},
		{status: http.StatusServiceUnavailable, want: false},
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/health", r.URL.Path)
			w.WriteHeader(tc.status)
		}))
		assert.Equal(t, tc.want, NewClient(srv.URL, nil, nil).CheckHealth(context.Background()), "status %d", tc.status)
		srv.Close()
	}
}

func TestCheckHealthSwallowsTransportErrors(t *testing.T) {
	client := NewClient("http://backend", failingHTTPClient{err: errors.New("dial tcp: refused")}, nil)
	assert.False(t, client.CheckHealth(context.Background()))
}

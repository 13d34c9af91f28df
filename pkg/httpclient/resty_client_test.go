package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRestyClientPostSendsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["query"] != "go" {
			t.Fatalf("unexpected body %v", body)
		}
		w.Header().Set("X-Reply", "yes")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewRestyClient(0)
	resp, err := c.Post(context.Background(), srv.URL, map[string]string{"Content-Type": "application/json"}, map[string]string{"query": "go"})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if resp.StatusCode() != http.StatusCreated || !resp.IsSuccess() {
		t.Fatalf("unexpected status %d", resp.StatusCode())
	}
	if got := resp.Header().Get("X-Reply"); got != "yes" {
		t.Fatalf("missing response header, got %q", got)
	}
}

func TestRestyClientResolvesRelativePathsAgainstBaseURL(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewRestyClientWithOptions(Options{BaseURL: srv.URL})
	resp, err := c.Get(context.Background(), "/health", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if path != "/health" {
		t.Fatalf("expected /health, got %q", path)
	}
	if resp.IsSuccess() {
		t.Fatalf("503 must not be reported as success")
	}
}

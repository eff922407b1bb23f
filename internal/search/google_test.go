package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "k", EngineID: "cx", Endpoint: srv.URL})
}

func TestSnippet(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "quantum computing" {
			t.Errorf("query = %q", q.Get("q"))
		}
		if q.Get("num") != "1" {
			t.Errorf("num = %q, want 1", q.Get("num"))
		}
		_, _ = w.Write([]byte(`{"items":[{"title":"QC","snippet":"  Qubits explained.  ","link":"x"}]}`))
	})

	got, err := c.Snippet(context.Background(), "quantum computing")
	if err != nil {
		t.Fatalf("Snippet failed: %v", err)
	}
	if got != "Qubits explained." {
		t.Errorf("got %q", got)
	}
}

func TestSnippetNoResults(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	})

	got, err := c.Snippet(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Snippet failed: %v", err)
	}
	if got != "No results found." {
		t.Errorf("got %q", got)
	}
}

func TestSnippetEmptySnippet(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"title":"T","snippet":""}]}`))
	})

	got, err := c.Snippet(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Snippet failed: %v", err)
	}
	if got != "No snippet available." {
		t.Errorf("got %q", got)
	}
}

func TestSnippetHTTPError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusForbidden)
	})

	if _, err := c.Snippet(context.Background(), "anything"); err == nil {
		t.Fatal("expected error for HTTP 403")
	}
}

func TestSnippetMissingCredentials(t *testing.T) {
	c := NewClient(Config{})
	if c.Configured() {
		t.Error("empty client should not report configured")
	}
	if _, err := c.Snippet(context.Background(), "anything"); err == nil {
		t.Fatal("expected error without credentials")
	}
}

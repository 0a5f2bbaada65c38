package ollama_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wayfinder/internal/services/ollama"
)

func newTestClient(url string) *ollama.Client {
	return ollama.NewClient(url, "test-model", ollama.WithRetries(2, time.Millisecond))
}

func TestGenerateReturnsResponse(t *testing.T) {
	var gotPath string
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"{\"candidates\":[]}"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	output, err := client.Generate(context.Background(), "find places")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if output != `{"candidates":[]}` {
		t.Fatalf("unexpected output: %q", output)
	}
	if gotPath != "/api/generate" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if !strings.Contains(gotBody, `"stream":false`) {
		t.Fatalf("expected non-streaming request, got %s", gotBody)
	}
	if !strings.Contains(gotBody, `"model":"test-model"`) {
		t.Fatalf("expected model in request, got %s", gotBody)
	}
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "overloaded", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	output, err := client.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate failed after retries: %v", err)
	}
	if output != "ok" {
		t.Fatalf("unexpected output: %q", output)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "bad model", http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for 4xx response")
	}
	if attempts != 1 {
		t.Fatalf("expected single attempt, got %d", attempts)
	}
}

func TestGenerateFailsOnAPIError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		_, _ = w.Write([]byte(`{"error":"model not loaded"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Generate(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error when body carries error field")
	}
	if !strings.Contains(err.Error(), "model not loaded") {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected single attempt, got %d", attempts)
	}
}

func TestGenerateRetriesEmptyBody(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusOK)
			return
		}
		_, _ = w.Write([]byte(`{"response":"recovered"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	output, err := client.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if output != "recovered" {
		t.Fatalf("unexpected output: %q", output)
	}
}

func TestGenerateRequiresPrompt(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0")
	if _, err := client.Generate(context.Background(), "   "); err == nil {
		t.Fatal("expected error for blank prompt")
	}
}

func TestNewHTTPClientConfiguresTimeouts(t *testing.T) {
	client := ollama.NewHTTPClient(3*time.Second, 45*time.Second)
	if client.Timeout != 45*time.Second {
		t.Fatalf("request timeout = %v, want 45s", client.Timeout)
	}
	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("transport = %T, want *http.Transport", client.Transport)
	}
	if transport.DialContext == nil {
		t.Fatal("expected a dial timeout on the transport")
	}
	if transport.TLSHandshakeTimeout != 3*time.Second {
		t.Fatalf("TLS handshake timeout = %v, want 3s", transport.TLSHandshakeTimeout)
	}
}

func TestNewHTTPClientDefaults(t *testing.T) {
	client := ollama.NewHTTPClient(0, 0)
	if client.Timeout != 120*time.Second {
		t.Fatalf("request timeout = %v, want 120s", client.Timeout)
	}
	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("transport = %T, want *http.Transport", client.Transport)
	}
	if transport.TLSHandshakeTimeout != 5*time.Second {
		t.Fatalf("TLS handshake timeout = %v, want 5s", transport.TLSHandshakeTimeout)
	}
}

package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/reviewlens/reviewlens-api/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(&config.Config{
		AnalysisAPIURL: srv.URL,
		AnalysisAPIKey: "test-key",
		AnalysisModel:  "test-model",
		AnalysisRPS:    1000, // keep the limiter out of the way
	}, nil)
	return client, srv
}

func TestClientComplete(t *testing.T) {
	var gotAuth, gotBody string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(req.Messages) == 1 {
			gotBody = req.Messages[0].Content
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": `{"sentiment":"positive"}`}},
			},
		})
	})

	content, err := client.Complete(context.Background(), "analyze this")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if content != `{"sentiment":"positive"}` {
		t.Errorf("content = %q", content)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotBody != "analyze this" {
		t.Errorf("prompt = %q", gotBody)
	}
}

func TestClientCompleteRateLimited(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "17")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Complete(context.Background(), "prompt")
	rl, ok := IsRateLimit(err)
	if !ok {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if rl.RetryAfter != 17*time.Second {
		t.Errorf("retry after = %v, want 17s", rl.RetryAfter)
	}
}

func TestClientCompleteErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "empty choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[]}`))
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, tt.handler)
			if _, err := client.Complete(context.Background(), "prompt"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"5", 5 * time.Second},
		{"-3", 0},
		{"Wed, 21 Oct 2015 07:28:00 GMT", 0},
		{"not a date", 0},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(tt.header); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestParseRetryAfterHTTPDate(t *testing.T) {
	header := time.Now().Add(30 * time.Second).UTC().Format(http.TimeFormat)
	got := parseRetryAfter(header)
	if got <= 25*time.Second || got > 30*time.Second {
		t.Errorf("parseRetryAfter(%q) = %v, want ~30s", header, got)
	}
}

package dataflows

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTavilySearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		var req tavilyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.APIKey != "test-key" {
			t.Errorf("api_key = %q, want test-key", req.APIKey)
		}
		if req.Query != "AAPL earnings" {
			t.Errorf("query = %q", req.Query)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(tavilyResponse{
			Answer: "Apple beat estimates.",
			Results: []struct {
				Title   string  `json:"title"`
				URL     string  `json:"url"`
				Content string  `json:"content"`
				Score   float64 `json:"score"`
			}{
				{Title: "Apple Q3", URL: "https://example.com/a", Content: "Earnings up.", Score: 0.9},
			},
		})
	}))
	defer server.Close()

	tc := NewTavilyClient("test-key")
	tc.SetBaseURL(server.URL)

	answer, results, err := tc.Search(context.Background(), "AAPL earnings", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if answer != "Apple beat estimates." {
		t.Errorf("answer = %q", answer)
	}
	if len(results) != 1 || results[0].Title != "Apple Q3" {
		t.Errorf("results = %+v", results)
	}
}

func TestTavilySearchWithoutKey(t *testing.T) {
	tc := NewTavilyClient("")
	if tc.Enabled() {
		t.Error("client without key should not be enabled")
	}
	if _, _, err := tc.Search(context.Background(), "anything", 5); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestTavilySearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	tc := NewTavilyClient("test-key")
	tc.SetBaseURL(server.URL)

	if _, _, err := tc.Search(context.Background(), "anything", 5); err == nil {
		t.Fatal("expected error on HTTP 500")
	}
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/deepagent/deepagent/internal/config"
	"github.com/deepagent/deepagent/internal/graph"
	"github.com/deepagent/deepagent/internal/service"
	"github.com/deepagent/deepagent/internal/storage/sqlite"
)

type stubRunner struct {
	lastQuery string
	result    *service.RunResult
	err       error
}

func (s *stubRunner) Run(ctx context.Context, query string, events chan graph.Event) (*service.RunResult, error) {
	s.lastQuery = query
	if events != nil {
		close(events)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestServer(t *testing.T, runner *stubRunner) (*Server, *sqlite.Store) {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return New(&config.Config{HTTPAddr: ":0"}, runner, store), store
}

func postRun(t *testing.T, handler http.Handler, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/runs", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleRun(t *testing.T) {
	runner := &stubRunner{result: &service.RunResult{SessionID: "sess-1", Report: "# Done"}}
	srv, _ := newTestServer(t, runner)
	handler := srv.Routes()

	rec := postRun(t, handler, `{"messages":[{"content":"analyze AAPL","type":"human"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if runner.lastQuery != "analyze AAPL" {
		t.Errorf("runner got query %q", runner.lastQuery)
	}

	var result service.RunResult
	json.Unmarshal(rec.Body.Bytes(), &result)
	if result.SessionID != "sess-1" || result.Report != "# Done" {
		t.Errorf("result = %+v", result)
	}
}

func TestHandleRunRejectsBadPayloads(t *testing.T) {
	srv, _ := newTestServer(t, &stubRunner{result: &service.RunResult{}})
	handler := srv.Routes()

	cases := []string{
		`not json`,
		`{"messages":[]}`,
		`{"messages":[{"content":"hi","type":"system"}]}`,
		`{"messages":[{"content":"   ","type":"human"}]}`,
	}
	for _, payload := range cases {
		if rec := postRun(t, handler, payload); rec.Code != http.StatusBadRequest {
			t.Errorf("payload %q: status = %d, want 400", payload, rec.Code)
		}
	}
}

func TestHandleRunUsesLastHumanMessage(t *testing.T) {
	runner := &stubRunner{result: &service.RunResult{}}
	srv, _ := newTestServer(t, runner)

	postRun(t, srv.Routes(), `{"messages":[
		{"content":"first","type":"human"},
		{"content":"ignored","type":"ai"},
		{"content":"second","type":"human"}
	]}`)
	if runner.lastQuery != "second" {
		t.Errorf("query = %q, want second", runner.lastQuery)
	}
}

func TestSessionEndpoints(t *testing.T) {
	srv, store := newTestServer(t, &stubRunner{})
	handler := srv.Routes()
	ctx := context.Background()

	store.CreateSession(ctx, sqlite.SessionRecord{ID: "sess-1", Query: "q", Status: "completed"})
	store.InsertMessage(ctx, sqlite.MessageRecord{ID: "m1", SessionID: "sess-1", Role: "human", Content: "q", Seq: 1})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list sessions status = %d", rec.Code)
	}
	var sessions []sqlite.SessionWithMeta
	json.Unmarshal(rec.Body.Bytes(), &sessions)
	if len(sessions) != 1 || sessions[0].ID != "sess-1" {
		t.Fatalf("sessions = %+v", sessions)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/sess-1/messages", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list messages status = %d", rec.Code)
	}
	var messages []sqlite.MessageWithMeta
	json.Unmarshal(rec.Body.Bytes(), &messages)
	if len(messages) != 1 || messages[0].Content != "q" {
		t.Fatalf("messages = %+v", messages)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/ghost", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing session status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}
	var health map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("healthz body: %v", err)
	}
	for _, key := range []string{"status", "llm_provider", "openai_configured", "tavily_configured"} {
		if _, ok := health[key]; !ok {
			t.Errorf("healthz missing %q: %v", key, health)
		}
	}
}

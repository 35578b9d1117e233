package tracing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"

	"github.com/deepagent/deepagent/internal/config"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]interface{}
}

func newTestTracer(t *testing.T) (*Tracer, chan recordedRequest) {
	t.Helper()

	requests := make(chan recordedRequest, 10)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		requests <- recordedRequest{Method: r.Method, Path: r.URL.Path, Body: body}
	}))
	t.Cleanup(server.Close)

	cfg := &config.Config{
		TracingEnabled:  true,
		TracingAPIKey:   "test-key",
		TracingProject:  "test-project",
		TracingEndpoint: server.URL,
	}
	return NewTracer(cfg), requests
}

func waitForRequest(t *testing.T, requests chan recordedRequest) recordedRequest {
	t.Helper()
	select {
	case req := <-requests:
		return req
	case <-time.After(2 * time.Second):
		t.Fatal("no tracing request received")
		return recordedRequest{}
	}
}

func TestTracerDisabledWithoutKey(t *testing.T) {
	tr := NewTracer(&config.Config{TracingEnabled: true})
	if tr.Enabled() {
		t.Error("tracer must be disabled without an API key")
	}

	// Callbacks on a disabled tracer must be no-ops.
	ctx := tr.OnStart(context.Background(), nil, nil)
	tr.OnEnd(ctx, nil, nil)
}

func TestTracerExportsRunTree(t *testing.T) {
	tr, requests := newTestTracer(t)
	if !tr.Enabled() {
		t.Fatal("tracer should be enabled")
	}

	info := &callbacks.RunInfo{Name: "determine_type", Component: components.Component("Lambda")}
	ctx := tr.OnStart(context.Background(), info, "analyze AAPL")

	created := waitForRequest(t, requests)
	if created.Method != http.MethodPost || created.Path != "/runs" {
		t.Fatalf("unexpected request %s %s", created.Method, created.Path)
	}
	if created.Body["name"] != "determine_type" {
		t.Errorf("run name = %v", created.Body["name"])
	}
	if created.Body["session_name"] != "test-project" {
		t.Errorf("session_name = %v", created.Body["session_name"])
	}
	runID, _ := created.Body["id"].(string)
	if runID == "" {
		t.Fatal("run id missing")
	}

	// A nested start should reference the parent run.
	childInfo := &callbacks.RunInfo{Name: "get_stock_price", Component: components.Component("Tool")}
	childCtx := tr.OnStart(ctx, childInfo, "AAPL")

	childCreated := waitForRequest(t, requests)
	if childCreated.Body["parent_run_id"] != runID {
		t.Errorf("parent_run_id = %v, want %v", childCreated.Body["parent_run_id"], runID)
	}
	if childCreated.Body["run_type"] != "tool" {
		t.Errorf("child run_type = %v, want tool", childCreated.Body["run_type"])
	}

	tr.OnEnd(childCtx, childInfo, "ok")
	ended := waitForRequest(t, requests)
	if ended.Method != http.MethodPatch {
		t.Errorf("end request method = %s, want PATCH", ended.Method)
	}
	if ended.Body["end_time"] == nil {
		t.Error("end_time missing in update")
	}
}

func TestTracerRecordsErrors(t *testing.T) {
	tr, requests := newTestTracer(t)

	info := &callbacks.RunInfo{Name: "execute_analysis"}
	ctx := tr.OnStart(context.Background(), info, "query")
	waitForRequest(t, requests) // creation

	tr.OnError(ctx, info, context.DeadlineExceeded)
	errored := waitForRequest(t, requests)
	if errored.Method != http.MethodPatch {
		t.Fatalf("error request method = %s", errored.Method)
	}
	if errored.Body["error"] == nil {
		t.Error("error field missing in update")
	}
}

package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := SessionRecord{
		ID:           "sess-1",
		Query:        "analyze AAPL",
		AnalysisType: "stock_analysis",
		Status:       "executing",
	}
	if err := store.CreateSession(ctx, rec); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := store.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got == nil || got.Query != "analyze AAPL" || got.Status != "executing" {
		t.Fatalf("GetSession = %+v", got)
	}

	if err := store.UpdateSessionStatus(ctx, "sess-1", "completed", "# Report"); err != nil {
		t.Fatalf("UpdateSessionStatus: %v", err)
	}
	got, _ = store.GetSession(ctx, "sess-1")
	if got.Status != "completed" || got.Report != "# Report" {
		t.Errorf("after update = %+v", got)
	}

	// Update without report keeps the stored report.
	store.UpdateSessionStatus(ctx, "sess-1", "completed", "")
	got, _ = store.GetSession(ctx, "sess-1")
	if got.Report != "# Report" {
		t.Errorf("report lost on empty update: %+v", got)
	}

	missing, err := store.GetSession(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("missing session = %+v, err %v", missing, err)
	}
}

func TestMessages(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	store.CreateSession(ctx, SessionRecord{ID: "sess-1", Query: "q", Status: "executing"})

	for i, content := range []string{"first", "second"} {
		err := store.InsertMessage(ctx, MessageRecord{
			ID:            "msg-" + content,
			SessionID:     "sess-1",
			Role:          "assistant",
			Agent:         "supervisor",
			Content:       content,
			ToolCallsJSON: `[{"name":"get_stock_price"}]`,
			Seq:           i + 1,
		})
		if err != nil {
			t.Fatalf("InsertMessage: %v", err)
		}
	}

	if err := store.InsertMessage(ctx, MessageRecord{ID: "bad", SessionID: "sess-1", Role: "assistant"}); err == nil {
		t.Error("expected error for non-positive seq")
	}
	if err := store.InsertMessage(ctx, MessageRecord{ID: "bad2", SessionID: "sess-1", Seq: 3}); err == nil {
		t.Error("expected error for empty role")
	}

	messages, err := store.ListMessages(ctx, "sess-1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(messages) != 2 || messages[0].Content != "first" || messages[1].Content != "second" {
		t.Fatalf("messages = %+v", messages)
	}
	if messages[0].ToolCallsJSON != `[{"name":"get_stock_price"}]` {
		t.Errorf("tool calls not persisted: %+v", messages[0])
	}
}

func TestListSessionsPaging(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		store.CreateSession(ctx, SessionRecord{ID: id, Query: "q " + id, Status: "completed"})
	}

	page, err := store.ListSessions(ctx, 0, 2)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(page) != 2 || page[0].ID != "c" || page[1].ID != "b" {
		t.Fatalf("first page = %+v", page)
	}

	next, err := store.ListSessions(ctx, page[1].RowID, 2)
	if err != nil {
		t.Fatalf("ListSessions page 2: %v", err)
	}
	if len(next) != 1 || next[0].ID != "a" {
		t.Fatalf("second page = %+v", next)
	}
}

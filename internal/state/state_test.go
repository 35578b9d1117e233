package state

import (
	"strings"
	"testing"
	"time"

	"github.com/deepagent/deepagent/consts"
)

func newTestSession() *Session {
	return NewSession("analyze AAPL", DefaultLimits())
}

func TestTodoLifecycle(t *testing.T) {
	s := newTestSession()

	first := s.AddTodo("fetch price", consts.PriorityHigh, consts.StockAnalyst, nil)
	second := s.AddTodo("write report", "", "", []string{first.ID})

	if second.Priority != consts.PriorityMedium {
		t.Errorf("default priority = %q, want medium", second.Priority)
	}

	if err := s.UpdateTodoStatus(first.ID, consts.TodoCompleted); err != nil {
		t.Fatalf("UpdateTodoStatus: %v", err)
	}
	if err := s.UpdateTodoStatus("todo_99", consts.TodoCompleted); err == nil {
		t.Error("expected error for unknown todo")
	}

	pending := s.PendingTodos()
	if len(pending) != 1 || pending[0].ID != second.ID {
		t.Fatalf("pending = %+v, want only second todo", pending)
	}
}

func TestPendingTodosPriorityOrder(t *testing.T) {
	s := newTestSession()
	s.AddTodo("low task", consts.PriorityLow, "", nil)
	s.AddTodo("urgent task", consts.PriorityUrgent, "", nil)
	s.AddTodo("high task", consts.PriorityHigh, "", nil)

	pending := s.PendingTodos()
	if len(pending) != 3 {
		t.Fatalf("expected 3 pending todos, got %d", len(pending))
	}
	if pending[0].Content != "urgent task" || pending[1].Content != "high task" {
		t.Errorf("wrong order: %s, %s, %s",
			pending[0].Content, pending[1].Content, pending[2].Content)
	}
}

func TestVirtualFileSystem(t *testing.T) {
	s := newTestSession()

	if err := s.WriteFile("notes.md", "# Research"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	content, err := s.ReadFile("notes.md")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if content != "# Research" {
		t.Errorf("content = %q", content)
	}

	if err := s.EditFile("notes.md", "Research", "Findings"); err != nil {
		t.Fatalf("EditFile: %v", err)
	}
	content, _ = s.ReadFile("notes.md")
	if content != "# Findings" {
		t.Errorf("after edit content = %q", content)
	}

	if err := s.EditFile("notes.md", "missing text", "x"); err == nil {
		t.Error("expected error editing absent text")
	}
	if err := s.EditFile("ghost.md", "a", "b"); err == nil {
		t.Error("expected error editing missing file")
	}
	if _, err := s.ReadFile("ghost.md"); err == nil {
		t.Error("expected error reading missing file")
	}

	files := s.ListFiles()
	if len(files) != 1 || files[0].Path != "notes.md" {
		t.Fatalf("ListFiles = %+v", files)
	}
	if files[0].Content != "" {
		t.Error("listing should not carry file content")
	}
}

func TestFileLimits(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxFiles = 2
	limits.MaxFileSize = 10
	s := NewSession("q", limits)

	if err := s.WriteFile("big.md", strings.Repeat("x", 11)); err == nil {
		t.Error("expected size limit error")
	}

	if err := s.WriteFile("a.md", "1"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := s.WriteFile("b.md", "2"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := s.WriteFile("c.md", "3"); err == nil {
		t.Error("expected file count limit error")
	}
	// Overwriting an existing file stays within the count limit.
	if err := s.WriteFile("a.md", "updated"); err != nil {
		t.Errorf("overwrite failed: %v", err)
	}
}

func TestTouchEnforcesIterationLimit(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxIterations = 2
	s := NewSession("q", limits)

	if err := s.Touch(); err != nil {
		t.Fatalf("first touch: %v", err)
	}
	if err := s.Touch(); err != nil {
		t.Fatalf("second touch: %v", err)
	}
	if err := s.Touch(); err == nil {
		t.Fatal("expected iteration limit error")
	}
}

func TestSessionCache(t *testing.T) {
	s := newTestSession()

	s.CacheData("quote:AAPL", 123.45)
	value, ok := s.CachedData("quote:AAPL")
	if !ok || value.(float64) != 123.45 {
		t.Fatalf("CachedData = %v, %v", value, ok)
	}

	if _, ok := s.CachedData("missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestSessionCacheExpiry(t *testing.T) {
	limits := DefaultLimits()
	limits.CacheTTL = time.Nanosecond
	s := NewSession("q", limits)

	s.CacheData("k", "v")
	time.Sleep(time.Millisecond)
	if _, ok := s.CachedData("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestSubAgentTracking(t *testing.T) {
	s := newTestSession()

	s.RegisterSubAgent(consts.StockAnalyst, "equity analysis", []string{"get_stock_price"}, "analyze AAPL fundamentals")
	if err := s.SetSubAgentStatus(consts.StockAnalyst, consts.AgentCompleted); err != nil {
		t.Fatalf("SetSubAgentStatus: %v", err)
	}
	if err := s.SetSubAgentStatus("nobody", consts.AgentCompleted); err == nil {
		t.Error("expected error for unregistered agent")
	}

	agents := s.SubAgents()
	if len(agents) != 1 || agents[0].Status != consts.AgentCompleted {
		t.Fatalf("SubAgents = %+v", agents)
	}
	if agents[0].CurrentTask != "" {
		t.Error("completed agent should have no current task")
	}
	if agents[0].Description != "equity analysis" || len(agents[0].Tools) != 1 {
		t.Errorf("registration details lost: %+v", agents[0])
	}
}

func TestDelegationHistory(t *testing.T) {
	s := newTestSession()

	s.RegisterSubAgent(consts.StockAnalyst, "equity analysis", nil, "analyze AAPL")
	if err := s.CompleteDelegation(consts.StockAnalyst, "analyze AAPL", "AAPL looks fine", consts.AgentCompleted); err != nil {
		t.Fatalf("CompleteDelegation: %v", err)
	}
	if err := s.CompleteDelegation("nobody", "t", "r", consts.AgentCompleted); err == nil {
		t.Error("expected error for unregistered agent")
	}

	dels := s.Delegations()
	if len(dels) != 1 || dels[0].Result != "AAPL looks fine" {
		t.Fatalf("Delegations = %+v", dels)
	}
	agents := s.SubAgents()
	if len(agents) != 1 || len(agents[0].Results) != 1 {
		t.Fatalf("agent results not recorded: %+v", agents)
	}
}

func TestWatchlistAndPortfolio(t *testing.T) {
	s := newTestSession()

	if n := s.AddToWatchlist("aapl", "MSFT", "AAPL", " "); n != 2 {
		t.Errorf("watchlist size = %d, want 2", n)
	}
	wl := s.Watchlist()
	if len(wl) != 2 || wl[0] != "AAPL" || wl[1] != "MSFT" {
		t.Errorf("Watchlist = %v", wl)
	}

	s.SetPosition("tsla", 10, 250.0)
	s.SetPosition("AAPL", 5, 180.0)
	positions := s.Portfolio()
	if len(positions) != 2 || positions[0].Symbol != "AAPL" {
		t.Fatalf("Portfolio = %+v", positions)
	}

	s.SetPosition("TSLA", 0, 0)
	if len(s.Portfolio()) != 1 {
		t.Error("zero quantity should remove the position")
	}

	s.SetPosition("NEG", -1, 10)
	found := false
	for _, p := range s.Validate() {
		if strings.Contains(p, "negative quantity") {
			found = true
		}
	}
	if !found {
		t.Error("Validate should flag negative quantity positions")
	}

	summary := s.Summary()
	if !strings.Contains(summary, "Watchlist: 2 symbols") {
		t.Errorf("summary missing watchlist line:\n%s", summary)
	}
}

func TestValidate(t *testing.T) {
	s := newTestSession()
	if problems := s.Validate(); len(problems) != 0 {
		t.Fatalf("fresh session should validate, got %v", problems)
	}

	s.AddTodo("depends on phantom", "", "", []string{"todo_42"})
	s.RegisterSubAgent(consts.RiskAssessor, "risk analysis", nil, "assess risk")
	s.SetStatus(consts.SessionCompleted)

	problems := s.Validate()
	if len(problems) != 2 {
		t.Fatalf("expected 2 problems, got %v", problems)
	}
}

func TestSummary(t *testing.T) {
	s := newTestSession()
	s.SetAnalysisType(consts.AnalysisStock)
	s.AddTodo("fetch price", consts.PriorityHigh, "", nil)

	summary := s.Summary()
	for _, want := range []string{"analyze AAPL", "stock_analysis", "1 pending"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}

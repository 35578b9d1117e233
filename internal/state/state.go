package state

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deepagent/deepagent/consts"
)

// TodoItem is a single planned task tracked for the run.
type TodoItem struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	Status       string    `json:"status"`
	Priority     string    `json:"priority"`
	AssignedTo   string            `json:"assigned_to,omitempty"`
	Dependencies []string          `json:"dependencies,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// File is an entry in the session's virtual file system.
type File struct {
	Path      string    `json:"path"`
	Content   string    `json:"content"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CacheEntry holds run-scoped cached data with an expiry.
type CacheEntry struct {
	Value     interface{} `json:"value"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// SubAgentInfo tracks a delegated specialist.
type SubAgentInfo struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Tools       []string  `json:"tools,omitempty"`
	Status      string    `json:"status"`
	CurrentTask string    `json:"current_task,omitempty"`
	Results     []string  `json:"results,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Delegation is one completed or failed hand-off to a specialist.
type Delegation struct {
	Agent       string    `json:"agent"`
	Task        string    `json:"task"`
	Result      string    `json:"result,omitempty"`
	Status      string    `json:"status"`
	CompletedAt time.Time `json:"completed_at"`
}

// Position is one tracked portfolio holding.
type Position struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
	AvgPrice float64 `json:"avg_price"`
}

// Operation is one entry of the session audit log.
type Operation struct {
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
}

// Limits bounds session resource usage.
type Limits struct {
	MaxFiles         int
	MaxFileSize      int
	MaxIterations    int
	MaxExecutionTime time.Duration
	CacheTTL         time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		MaxFiles:         100,
		MaxFileSize:      1 << 20,
		MaxIterations:    50,
		MaxExecutionTime: 300 * time.Second,
		CacheTTL:         15 * time.Minute,
	}
}

// Session is the shared state of one research run. Tools, graph nodes and
// sub-agents all mutate it concurrently, so every accessor locks.
type Session struct {
	mu sync.RWMutex

	ID           string
	Query        string
	AnalysisType string
	Status       string
	Iterations   int
	StartedAt    time.Time

	limits Limits

	todos       []*TodoItem
	files       map[string]*File
	cache       map[string]*CacheEntry
	subAgents   map[string]*SubAgentInfo
	delegations []Delegation
	watchlist   []string
	portfolio   map[string]*Position
	ops         []Operation

	FinalReport string
}

func NewSession(query string, limits Limits) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Query:     query,
		Status:    consts.SessionInitializing,
		StartedAt: time.Now(),
		limits:    limits,
		files:     make(map[string]*File),
		cache:     make(map[string]*CacheEntry),
		subAgents: make(map[string]*SubAgentInfo),
		portfolio: make(map[string]*Position),
	}
}

func (s *Session) logOp(actor, action, detail string) {
	s.ops = append(s.ops, Operation{
		Timestamp: time.Now(),
		Actor:     actor,
		Action:    action,
		Detail:    detail,
	})
}

// SetStatus transitions the session status.
func (s *Session) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = status
	s.logOp("session", "status", status)
}

// SetAnalysisType records the classified analysis type.
func (s *Session) SetAnalysisType(analysisType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AnalysisType = analysisType
	s.logOp("session", "classify", analysisType)
}

// GetStatus returns the current status.
func (s *Session) GetStatus() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// GetAnalysisType returns the classified analysis type.
func (s *Session) GetAnalysisType() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.AnalysisType
}

// Touch increments the iteration counter and errors once the session exceeds
// its iteration or wall-clock budget.
func (s *Session) Touch() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Iterations++
	if s.Iterations > s.limits.MaxIterations {
		return fmt.Errorf("iteration limit exceeded (%d)", s.limits.MaxIterations)
	}
	if elapsed := time.Since(s.StartedAt); elapsed > s.limits.MaxExecutionTime {
		return fmt.Errorf("execution time limit exceeded (%s)", s.limits.MaxExecutionTime)
	}
	return nil
}

// --- Todos ---

// AddTodo appends a planned task and returns it.
func (s *Session) AddTodo(content, priority, assignedTo string, deps []string) *TodoItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	if priority == "" {
		priority = consts.PriorityMedium
	}

	now := time.Now()
	todo := &TodoItem{
		ID:           fmt.Sprintf("todo_%d", len(s.todos)+1),
		Content:      content,
		Status:       consts.TodoPending,
		Priority:     priority,
		AssignedTo:   assignedTo,
		Dependencies: deps,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.todos = append(s.todos, todo)
	s.logOp("planner", "add_todo", content)
	return todo
}

// ReplaceTodos swaps the full todo list, used when the planner rewrites the
// plan.
func (s *Session) ReplaceTodos(todos []*TodoItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.todos = todos
	s.logOp("planner", "replace_todos", fmt.Sprintf("%d items", len(todos)))
}

// UpdateTodoStatus transitions one todo.
func (s *Session) UpdateTodoStatus(id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, todo := range s.todos {
		if todo.ID == id {
			todo.Status = status
			todo.UpdatedAt = time.Now()
			s.logOp("planner", "update_todo", fmt.Sprintf("%s -> %s", id, status))
			return nil
		}
	}
	return fmt.Errorf("todo %s not found", id)
}

// Todos returns a snapshot of all todos.
func (s *Session) Todos() []*TodoItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*TodoItem, len(s.todos))
	for i, todo := range s.todos {
		copied := *todo
		out[i] = &copied
	}
	return out
}

// PendingTodos returns pending items ordered by priority, urgent first.
func (s *Session) PendingTodos() []*TodoItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rank := map[string]int{
		consts.PriorityUrgent: 0,
		consts.PriorityHigh:   1,
		consts.PriorityMedium: 2,
		consts.PriorityLow:    3,
	}

	var pending []*TodoItem
	for _, todo := range s.todos {
		if todo.Status == consts.TodoPending {
			copied := *todo
			pending = append(pending, &copied)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return rank[pending[i].Priority] < rank[pending[j].Priority]
	})
	return pending
}

// --- Virtual file system ---

// WriteFile creates or overwrites a virtual file, enforcing size and count
// limits.
func (s *Session) WriteFile(path, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}
	if len(content) > s.limits.MaxFileSize {
		return fmt.Errorf("file %s exceeds size limit (%d bytes)", path, s.limits.MaxFileSize)
	}
	if _, exists := s.files[path]; !exists && len(s.files) >= s.limits.MaxFiles {
		return fmt.Errorf("file limit reached (%d)", s.limits.MaxFiles)
	}

	now := time.Now()
	if existing, ok := s.files[path]; ok {
		existing.Content = content
		existing.Size = len(content)
		existing.UpdatedAt = now
	} else {
		s.files[path] = &File{
			Path:      path,
			Content:   content,
			Size:      len(content),
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	s.logOp("fs", "write", path)
	return nil
}

// ReadFile returns the content of a virtual file.
func (s *Session) ReadFile(path string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, ok := s.files[path]
	if !ok {
		return "", fmt.Errorf("file %s not found", path)
	}
	return file.Content, nil
}

// EditFile replaces occurrences of oldText in a virtual file. It errors when
// the file is missing or oldText does not occur.
func (s *Session) EditFile(path, oldText, newText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.files[path]
	if !ok {
		return fmt.Errorf("file %s not found", path)
	}
	if !strings.Contains(file.Content, oldText) {
		return fmt.Errorf("text not found in %s", path)
	}

	updated := strings.ReplaceAll(file.Content, oldText, newText)
	if len(updated) > s.limits.MaxFileSize {
		return fmt.Errorf("edit would exceed size limit for %s", path)
	}

	file.Content = updated
	file.Size = len(updated)
	file.UpdatedAt = time.Now()
	s.logOp("fs", "edit", path)
	return nil
}

// ListFiles returns all virtual files sorted by path.
func (s *Session) ListFiles() []*File {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*File, 0, len(s.files))
	for _, file := range s.files {
		copied := *file
		copied.Content = "" // listings carry metadata only
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// --- Run-scoped cache ---

// CacheData stores a value with the session cache TTL.
func (s *Session) CacheData(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = &CacheEntry{
		Value:     value,
		ExpiresAt: time.Now().Add(s.limits.CacheTTL),
	}
}

// CachedData returns a cached value if present and unexpired.
func (s *Session) CachedData(key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cache[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		delete(s.cache, key)
		return nil, false
	}
	return entry.Value, true
}

// --- Sub-agents ---

// RegisterSubAgent records a delegated specialist as working. Description
// and tools are kept from the first registration of each specialist.
func (s *Session) RegisterSubAgent(name, description string, tools []string, task string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if existing, ok := s.subAgents[name]; ok {
		existing.Status = consts.AgentWorking
		existing.CurrentTask = task
		existing.UpdatedAt = now
	} else {
		s.subAgents[name] = &SubAgentInfo{
			Name:        name,
			Description: description,
			Tools:       tools,
			Status:      consts.AgentWorking,
			CurrentTask: task,
			StartedAt:   now,
			UpdatedAt:   now,
		}
	}
	s.logOp("supervisor", "delegate", fmt.Sprintf("%s: %s", name, task))
}

// SetSubAgentStatus transitions a registered specialist.
func (s *Session) SetSubAgentStatus(name, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	agent, ok := s.subAgents[name]
	if !ok {
		return fmt.Errorf("sub-agent %s not registered", name)
	}
	agent.Status = status
	agent.UpdatedAt = time.Now()
	if status != consts.AgentWorking {
		agent.CurrentTask = ""
	}
	s.logOp("supervisor", "agent_status", fmt.Sprintf("%s -> %s", name, status))
	return nil
}

// CompleteDelegation transitions a specialist, stores its result and appends
// one entry to the delegation history.
func (s *Session) CompleteDelegation(name, task, result, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	agent, ok := s.subAgents[name]
	if !ok {
		return fmt.Errorf("sub-agent %s not registered", name)
	}
	agent.Status = status
	agent.CurrentTask = ""
	agent.UpdatedAt = time.Now()
	if result != "" {
		agent.Results = append(agent.Results, result)
	}
	s.delegations = append(s.delegations, Delegation{
		Agent:       name,
		Task:        task,
		Result:      result,
		Status:      status,
		CompletedAt: time.Now(),
	})
	s.logOp("supervisor", "delegation_done", fmt.Sprintf("%s -> %s", name, status))
	return nil
}

// Delegations returns the delegation history in order.
func (s *Session) Delegations() []Delegation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Delegation, len(s.delegations))
	copy(out, s.delegations)
	return out
}

// AddToWatchlist appends symbols not already tracked and returns the new
// watchlist size.
func (s *Session) AddToWatchlist(symbols ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(s.watchlist))
	for _, sym := range s.watchlist {
		seen[sym] = true
	}
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		s.watchlist = append(s.watchlist, sym)
	}
	return len(s.watchlist)
}

// Watchlist returns the tracked symbols in insertion order.
func (s *Session) Watchlist() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.watchlist))
	copy(out, s.watchlist)
	return out
}

// SetPosition records a portfolio holding. A zero quantity removes it.
func (s *Session) SetPosition(symbol string, quantity, avgPrice float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return
	}
	if quantity == 0 {
		delete(s.portfolio, symbol)
		return
	}
	s.portfolio[symbol] = &Position{Symbol: symbol, Quantity: quantity, AvgPrice: avgPrice}
}

// Portfolio returns a snapshot of the tracked holdings.
func (s *Session) Portfolio() []*Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Position, 0, len(s.portfolio))
	for _, pos := range s.portfolio {
		copied := *pos
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// SubAgents returns a snapshot of sub-agent records.
func (s *Session) SubAgents() []*SubAgentInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*SubAgentInfo, 0, len(s.subAgents))
	for _, agent := range s.subAgents {
		copied := *agent
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SetFinalReport stores the compiled report text.
func (s *Session) SetFinalReport(report string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FinalReport = report
	s.logOp("session", "final_report", fmt.Sprintf("%d bytes", len(report)))
}

// GetFinalReport returns the compiled report text.
func (s *Session) GetFinalReport() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.FinalReport
}

// Operations returns the audit log.
func (s *Session) Operations() []Operation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Operation, len(s.ops))
	copy(out, s.ops)
	return out
}

// Summary renders a human-readable status digest used by tools and the CLI.
func (s *Session) Summary() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var completed, pending, inProgress int
	for _, todo := range s.todos {
		switch todo.Status {
		case consts.TodoCompleted:
			completed++
		case consts.TodoPending:
			pending++
		case consts.TodoInProgress:
			inProgress++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session %s [%s]\n", s.ID, s.Status)
	fmt.Fprintf(&b, "Query: %s\n", s.Query)
	if s.AnalysisType != "" {
		fmt.Fprintf(&b, "Analysis type: %s\n", s.AnalysisType)
	}
	fmt.Fprintf(&b, "Todos: %d completed, %d in progress, %d pending\n", completed, inProgress, pending)
	fmt.Fprintf(&b, "Files: %d, Iterations: %d\n", len(s.files), s.Iterations)
	if len(s.watchlist) > 0 || len(s.portfolio) > 0 {
		fmt.Fprintf(&b, "Watchlist: %d symbols, Portfolio: %d positions\n", len(s.watchlist), len(s.portfolio))
	}
	if len(s.delegations) > 0 {
		fmt.Fprintf(&b, "Delegations: %d\n", len(s.delegations))
	}
	for _, agent := range s.subAgents {
		fmt.Fprintf(&b, "Agent %s: %s\n", agent.Name, agent.Status)
	}
	return b.String()
}

// Validate checks session invariants: iteration budget, dependency references
// and sub-agent liveness.
func (s *Session) Validate() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var problems []string

	if s.Iterations > s.limits.MaxIterations {
		problems = append(problems, fmt.Sprintf("iterations %d exceed limit %d", s.Iterations, s.limits.MaxIterations))
	}

	known := make(map[string]bool, len(s.todos))
	for _, todo := range s.todos {
		known[todo.ID] = true
	}
	for _, todo := range s.todos {
		for _, dep := range todo.Dependencies {
			if !known[dep] {
				problems = append(problems, fmt.Sprintf("todo %s depends on unknown todo %s", todo.ID, dep))
			}
		}
	}

	if s.Status == consts.SessionCompleted {
		for _, agent := range s.subAgents {
			if agent.Status == consts.AgentWorking {
				problems = append(problems, fmt.Sprintf("sub-agent %s still working after completion", agent.Name))
			}
		}
	}

	for sym, pos := range s.portfolio {
		if pos.Quantity < 0 {
			problems = append(problems, fmt.Sprintf("portfolio position %s has negative quantity", sym))
		}
	}

	return problems
}

package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/google/uuid"

	"github.com/deepagent/deepagent/consts"
	"github.com/deepagent/deepagent/internal/config"
	"github.com/deepagent/deepagent/internal/dataflows"
	"github.com/deepagent/deepagent/internal/graph"
	"github.com/deepagent/deepagent/internal/report"
	"github.com/deepagent/deepagent/internal/state"
	"github.com/deepagent/deepagent/internal/storage/sqlite"
	"github.com/deepagent/deepagent/internal/tracing"
)

// RunResult is the outcome of one research run.
type RunResult struct {
	SessionID    string `json:"session_id"`
	AnalysisType string `json:"analysis_type"`
	Report       string `json:"report"`
	ReportPath   string `json:"report_path,omitempty"`
	Elapsed      string `json:"elapsed"`
}

// Runner executes research queries end to end: session setup, workflow run,
// persistence and report output. It is shared by the CLI and the dev server.
type Runner struct {
	cfg    *config.Config
	market *dataflows.Service
	store  *sqlite.Store
	tracer *tracing.Tracer
}

func NewRunner(cfg *config.Config) (*Runner, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	return &Runner{
		cfg:    cfg,
		market: dataflows.NewService(cfg),
		store:  store,
		tracer: tracing.NewTracer(cfg),
	}, nil
}

func (r *Runner) Close() error {
	return r.store.Close()
}

// Store exposes the session store for read endpoints.
func (r *Runner) Store() *sqlite.Store {
	return r.store
}

func (r *Runner) limits() state.Limits {
	return state.Limits{
		MaxFiles:         r.cfg.MaxFiles,
		MaxFileSize:      r.cfg.MaxFileSize,
		MaxIterations:    r.cfg.MaxIterations,
		MaxExecutionTime: time.Duration(r.cfg.MaxExecutionSecs) * time.Second,
		CacheTTL:         15 * time.Minute,
	}
}

// Run executes one query. When events is non-nil, workflow progress is
// forwarded to it; the channel is closed when the run finishes.
func (r *Runner) Run(ctx context.Context, query string, events chan graph.Event) (*RunResult, error) {
	return r.RunTyped(ctx, query, "", events)
}

// RunTyped executes one query with an explicit analysis type, skipping
// keyword classification. An empty type falls back to classification.
func (r *Runner) RunTyped(ctx context.Context, query, analysisType string, events chan graph.Event) (*RunResult, error) {
	if events != nil {
		defer close(events)
	}

	start := time.Now()
	session := state.NewSession(query, r.limits())
	if analysisType != "" {
		if !graph.KnownAnalysisType(analysisType) {
			return nil, fmt.Errorf("unknown analysis type %q", analysisType)
		}
		session.SetAnalysisType(analysisType)
	}

	if err := r.store.CreateSession(ctx, sqlite.SessionRecord{
		ID:     session.ID,
		Query:  query,
		Status: consts.SessionInitializing,
	}); err != nil {
		return nil, err
	}
	_ = r.store.InsertMessage(ctx, sqlite.MessageRecord{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      "human",
		Content:   query,
		Seq:       1,
	})

	var handlers []callbacks.Handler
	if events != nil {
		handlers = append(handlers, &graph.EventCallback{Out: events})
	}
	if r.tracer.Enabled() {
		handlers = append(handlers, r.tracer)
	}

	wf, err := graph.NewWorkflow(ctx, r.cfg, session, r.market, graph.WithCallbacks(handlers...))
	if err != nil {
		r.store.UpdateSessionStatus(ctx, session.ID, consts.SessionError, "")
		return nil, err
	}

	answer, err := wf.Run(ctx)
	if err != nil {
		r.store.UpdateSessionStatus(ctx, session.ID, consts.SessionError, "")
		return nil, err
	}

	_ = r.store.InsertMessage(ctx, sqlite.MessageRecord{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      "assistant",
		Agent:     consts.Supervisor,
		Content:   answer,
		Seq:       2,
	})
	r.store.UpdateSessionStatus(ctx, session.ID, consts.SessionCompleted, answer)

	result := &RunResult{
		SessionID:    session.ID,
		AnalysisType: session.GetAnalysisType(),
		Report:       answer,
		Elapsed:      time.Since(start).Round(time.Millisecond).String(),
	}

	if path, err := report.Write(r.cfg.ResultsDir, session.ID, answer); err != nil {
		log.Printf("[Runner] could not save report file: %v", err)
	} else {
		result.ReportPath = path
	}
	return result, nil
}

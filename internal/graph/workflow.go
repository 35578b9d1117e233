package graph

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"

	"github.com/deepagent/deepagent/consts"
	"github.com/deepagent/deepagent/internal/agents"
	"github.com/deepagent/deepagent/internal/config"
	"github.com/deepagent/deepagent/internal/dataflows"
	"github.com/deepagent/deepagent/internal/state"
	"github.com/deepagent/deepagent/internal/tools"
)

// Workflow runs one research session through the orchestration graph:
// determine_type, create_plan, then execute_analysis.
type Workflow struct {
	cfg      *config.Config
	session  *state.Session
	deps     *tools.Deps
	runnable compose.Runnable[string, string]
	handlers []callbacks.Handler
}

type Option func(*Workflow)

// WithCallbacks attaches progress handlers to the run.
func WithCallbacks(handlers ...callbacks.Handler) Option {
	return func(w *Workflow) {
		w.handlers = append(w.handlers, handlers...)
	}
}

// NewWorkflow builds the per-session graph. Tools close over the session, so
// the supervisor and every delegated specialist share one workspace.
func NewWorkflow(ctx context.Context, cfg *config.Config, session *state.Session, market *dataflows.Service, opts ...Option) (*Workflow, error) {
	w := &Workflow{
		cfg:     cfg,
		session: session,
	}
	for _, opt := range opts {
		opt(w)
	}

	researchModel, err := agents.NewChatModel(ctx, cfg, "fast")
	if err != nil {
		return nil, fmt.Errorf("create research model: %w", err)
	}

	deps := &tools.Deps{
		Cfg:     cfg,
		Session: session,
		Market:  market,
		Search:  dataflows.NewTavilyClient(cfg.TavilyAPIKey),
		News:    dataflows.NewNewsClient(),
		Model:   researchModel,
	}
	deps.Delegate = func(ctx context.Context, agentName, task string) (string, error) {
		specialist, err := agents.NewSpecialist(ctx, cfg, agentName, deps)
		if err != nil {
			return "", err
		}

		session.SetStatus(consts.SessionDelegating)
		defer session.SetStatus(consts.SessionExecuting)

		log.Printf("[Workflow] delegating to %s: %s", agentName, task)
		return specialist.Run(ctx, task)
	}
	w.deps = deps

	g := compose.NewGraph[string, string](
		compose.WithGenLocalState(func(ctx context.Context) *state.Session {
			return session
		}),
	)

	_ = g.AddLambdaNode(consts.NodeDetermineType, compose.InvokableLambdaWithOption(w.determineType))
	_ = g.AddLambdaNode(consts.NodeCreatePlan, compose.InvokableLambdaWithOption(w.createPlan))
	_ = g.AddLambdaNode(consts.NodeExecuteAnalysis, compose.InvokableLambdaWithOption(w.executeAnalysis))

	_ = g.AddEdge(compose.START, consts.NodeDetermineType)
	_ = g.AddEdge(consts.NodeDetermineType, consts.NodeCreatePlan)
	_ = g.AddEdge(consts.NodeCreatePlan, consts.NodeExecuteAnalysis)
	_ = g.AddEdge(consts.NodeExecuteAnalysis, compose.END)

	runnable, err := g.Compile(ctx,
		compose.WithGraphName("DeepAgent-Research"),
		compose.WithNodeTriggerMode(compose.AnyPredecessor),
	)
	if err != nil {
		return nil, fmt.Errorf("compile workflow graph: %w", err)
	}
	w.runnable = runnable

	return w, nil
}

// Session returns the session this workflow runs against.
func (w *Workflow) Session() *state.Session {
	return w.session
}

func (w *Workflow) determineType(ctx context.Context, query string, opts ...any) (string, error) {
	// A type set before the run (CLI --type) overrides classification.
	analysisType := w.session.GetAnalysisType()
	if analysisType == "" {
		analysisType = Classify(query)
	}

	err := compose.ProcessState[*state.Session](ctx, func(_ context.Context, s *state.Session) error {
		s.SetAnalysisType(analysisType)
		s.SetStatus(consts.SessionPlanning)
		return nil
	})
	if err != nil {
		return "", err
	}

	log.Printf("[Workflow] classified query as %s", analysisType)
	return query, nil
}

func (w *Workflow) createPlan(ctx context.Context, query string, opts ...any) (string, error) {
	err := compose.ProcessState[*state.Session](ctx, func(_ context.Context, s *state.Session) error {
		if len(s.Todos()) > 0 {
			return nil
		}
		for _, step := range PlanFor(s.GetAnalysisType()) {
			s.AddTodo(step.Content, step.Priority, "", nil)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return query, nil
}

func (w *Workflow) executeAnalysis(ctx context.Context, query string, opts ...any) (string, error) {
	w.session.SetStatus(consts.SessionExecuting)

	supervisor, err := agents.NewSupervisor(ctx, w.cfg, w.deps)
	if err != nil {
		w.session.SetStatus(consts.SessionError)
		return "", err
	}

	msg, err := supervisor.Generate(ctx, query)
	if err != nil {
		w.session.SetStatus(consts.SessionError)
		return "", fmt.Errorf("supervisor run: %w", err)
	}

	w.session.SetStatus(consts.SessionCompleted)
	if report := w.session.GetFinalReport(); report != "" {
		return report, nil
	}
	return msg.Content, nil
}

// Run executes the workflow to completion and returns the final report or
// the supervisor's answer.
func (w *Workflow) Run(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(w.cfg.MaxExecutionSecs)*time.Second)
	defer cancel()

	var opts []compose.Option
	for _, h := range w.handlers {
		opts = append(opts, compose.WithCallbacks(h))
	}

	result, err := w.runnable.Invoke(ctx, w.session.Query, opts...)
	if err != nil {
		w.session.SetStatus(consts.SessionError)
		return "", err
	}

	if problems := w.session.Validate(); len(problems) > 0 {
		log.Printf("[Workflow] session finished with validation warnings: %v", problems)
	}
	return result, nil
}

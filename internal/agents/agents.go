package agents

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"

	"github.com/deepagent/deepagent/consts"
	"github.com/deepagent/deepagent/internal/config"
	"github.com/deepagent/deepagent/internal/tools"
)

const specialistMaxStep = 20

// ToolCallChecker reports whether a streamed model response contains tool
// calls. Some providers put the calls in a late frame, so the whole stream
// is scanned.
func ToolCallChecker(ctx context.Context, sr *schema.StreamReader[*schema.Message]) (bool, error) {
	defer sr.Close()
	for {
		msg, err := sr.Recv()
		if err != nil {
			if err == io.EOF || err.Error() == "EOF" {
				return false, nil
			}
			return false, err
		}
		if len(msg.ToolCalls) > 0 {
			return true, nil
		}
	}
}

// modelTierFor maps a persona to its model tier. The supervisor, stock
// analysis and risk work get the reasoning tier, the rest run on default.
func modelTierFor(name string) string {
	switch name {
	case consts.Supervisor, consts.StockAnalyst, consts.RiskAssessor:
		return "reasoning"
	default:
		return "default"
	}
}

// Specialist is one focused persona agent built on the ReAct loop. It shares
// the session workspace through its tool closures.
type Specialist struct {
	Name   string
	system string
	agent  *react.Agent
}

// NewSpecialist builds a persona agent with its focused toolset.
func NewSpecialist(ctx context.Context, cfg *config.Config, name string, deps *tools.Deps) (*Specialist, error) {
	system, err := LoadPrompt(name)
	if err != nil {
		return nil, err
	}

	chatModel, err := NewChatModel(ctx, cfg, modelTierFor(name))
	if err != nil {
		return nil, fmt.Errorf("create model for %s: %w", name, err)
	}

	ra, err := react.NewAgent(ctx, &react.AgentConfig{
		MaxStep:          specialistMaxStep,
		ToolCallingModel: chatModel,
		ToolsConfig: compose.ToolsNodeConfig{
			Tools: tools.ToolsFor(name, deps),
		},
		StreamToolCallChecker: ToolCallChecker,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s agent: %w", name, err)
	}

	return &Specialist{Name: name, system: system, agent: ra}, nil
}

// Run executes one delegated task and returns the specialist's final answer.
func (s *Specialist) Run(ctx context.Context, task string, opts ...agent.AgentOption) (string, error) {
	msg, err := s.agent.Generate(ctx, []*schema.Message{
		schema.SystemMessage(s.system),
		schema.UserMessage(task),
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%s: %w", s.Name, err)
	}
	return msg.Content, nil
}

// Supervisor is the orchestrating agent. It owns the plan, delegates to
// specialists through the task tool and compiles the final report.
type Supervisor struct {
	agent  *react.Agent
	prompt string
}

// NewSupervisor builds the orchestrating agent.
func NewSupervisor(ctx context.Context, cfg *config.Config, deps *tools.Deps) (*Supervisor, error) {
	prompt, err := LoadPromptWithContext(consts.Supervisor, map[string]string{
		"CurrentDate":  time.Now().Format("2006-01-02"),
		"AnalysisType": deps.Session.GetAnalysisType(),
		"Query":        deps.Session.Query,
	})
	if err != nil {
		return nil, err
	}

	chatModel, err := NewChatModel(ctx, cfg, modelTierFor(consts.Supervisor))
	if err != nil {
		return nil, fmt.Errorf("create supervisor model: %w", err)
	}

	ra, err := react.NewAgent(ctx, &react.AgentConfig{
		MaxStep:          cfg.MaxIterations,
		ToolCallingModel: chatModel,
		ToolsConfig: compose.ToolsNodeConfig{
			Tools: tools.SupervisorTools(deps),
		},
		StreamToolCallChecker: ToolCallChecker,
	})
	if err != nil {
		return nil, fmt.Errorf("create supervisor agent: %w", err)
	}

	return &Supervisor{agent: ra, prompt: prompt}, nil
}

func (s *Supervisor) messages(task string) []*schema.Message {
	return []*schema.Message{
		schema.SystemMessage(s.prompt),
		schema.UserMessage(task),
	}
}

// Generate runs the supervisor to completion and returns its final answer.
func (s *Supervisor) Generate(ctx context.Context, task string, opts ...agent.AgentOption) (*schema.Message, error) {
	return s.agent.Generate(ctx, s.messages(task), opts...)
}

// Stream runs the supervisor and streams its output frames.
func (s *Supervisor) Stream(ctx context.Context, task string, opts ...agent.AgentOption) (*schema.StreamReader[*schema.Message], error) {
	return s.agent.Stream(ctx, s.messages(task), opts...)
}

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/deepagent/deepagent/consts"
)

var specialistNames = []string{
	consts.StockAnalyst,
	consts.PortfolioManager,
	consts.RiskAssessor,
	consts.MarketResearcher,
}

var specialistDescriptions = map[string]string{
	consts.StockAnalyst:     "Individual stock analysis: fundamentals, technicals, valuation",
	consts.PortfolioManager: "Portfolio construction, allocation and performance analysis",
	consts.RiskAssessor:     "Quantitative risk analysis: VaR, beta, drawdown, stress",
	consts.MarketResearcher: "Market trends, sector analysis and economic indicators",
}

func specialistToolNames(agentName string, deps *Deps) []string {
	ts := ToolsFor(agentName, deps)
	names := make([]string, 0, len(ts))
	for _, bt := range ts {
		info, err := bt.Info(context.Background())
		if err != nil {
			continue
		}
		names = append(names, info.Name)
	}
	return names
}

// NewTaskTool lets the supervisor delegate a focused task to a specialist
// sub-agent. The specialist shares the session workspace, so its findings
// land in the same files and todo list.
func NewTaskTool(deps *Deps) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "task",
			Desc: fmt.Sprintf("Delegate a focused task to a specialist agent. Available agents: %s", strings.Join(specialistNames, ", ")),
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"agent_name": {
					Type:     "string",
					Desc:     "Which specialist to run: " + strings.Join(specialistNames, ", "),
					Required: true,
				},
				"task": {
					Type:     "string",
					Desc:     "A complete, self-contained task description for the specialist",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input TaskInput) (*TaskOutput, error) {
			if err := deps.Session.Touch(); err != nil {
				return &TaskOutput{Status: consts.StatusError, Error: err.Error()}, nil
			}

			valid := false
			for _, name := range specialistNames {
				if input.AgentName == name {
					valid = true
					break
				}
			}
			if !valid {
				return &TaskOutput{
					Status: consts.StatusError,
					Error: fmt.Sprintf("unknown agent %q, choose one of: %s",
						input.AgentName, strings.Join(specialistNames, ", ")),
				}, nil
			}
			if strings.TrimSpace(input.Task) == "" {
				return &TaskOutput{Status: consts.StatusError, Error: "task description is empty"}, nil
			}
			if deps.Delegate == nil {
				return &TaskOutput{Status: consts.StatusError, Error: "delegation is not available"}, nil
			}

			deps.Session.RegisterSubAgent(input.AgentName,
				specialistDescriptions[input.AgentName],
				specialistToolNames(input.AgentName, deps),
				input.Task)
			result, err := deps.Delegate(ctx, input.AgentName, input.Task)
			if err != nil {
				deps.Session.CompleteDelegation(input.AgentName, input.Task, "", consts.AgentError)
				return &TaskOutput{Status: statusFromErr(err), Error: err.Error(), Agent: input.AgentName}, nil
			}

			deps.Session.CompleteDelegation(input.AgentName, input.Task, result, consts.AgentCompleted)
			return &TaskOutput{Status: consts.StatusOK, Agent: input.AgentName, Result: result}, nil
		},
	)
}

package tools

import (
	"github.com/cloudwego/eino/components/tool"

	"github.com/deepagent/deepagent/consts"
)

// fsTools are shared by every agent so findings move through the workspace.
func fsTools(deps *Deps) []tool.BaseTool {
	return []tool.BaseTool{
		NewLsTool(deps),
		NewReadFileTool(deps),
		NewWriteFileTool(deps),
		NewEditFileTool(deps),
	}
}

func planningTools(deps *Deps) []tool.BaseTool {
	return []tool.BaseTool{
		NewWriteTodosTool(deps),
		NewUpdateTodoTool(deps),
		NewTodoStatusTool(deps),
	}
}

// financialTools is the full market-data toolset, carried by the supervisor
// for direct oversight between delegations.
func financialTools(deps *Deps) []tool.BaseTool {
	return []tool.BaseTool{
		NewStockPriceTool(deps),
		NewStockHistoryTool(deps),
		NewFinancialStatementsTool(deps),
		NewPortfolioTool(deps),
		NewMarketOverviewTool(deps),
		NewRiskMetricsTool(deps),
	}
}

// SupervisorTools is the toolset of the orchestrating agent: delegation,
// planning, workspace, every financial tool, synthesis and report
// compilation.
func SupervisorTools(deps *Deps) []tool.BaseTool {
	out := []tool.BaseTool{NewTaskTool(deps)}
	out = append(out, planningTools(deps)...)
	out = append(out, fsTools(deps)...)
	out = append(out, financialTools(deps)...)
	out = append(out,
		NewStrategicThinkingTool(deps),
		NewSummarizeTool(deps),
		NewCompileReportTool(deps),
	)
	if deps.Search != nil && deps.Search.Enabled() {
		out = append(out, NewWebSearchTool(deps))
	}
	return out
}

// ToolsFor returns the focused toolset of one specialist agent.
func ToolsFor(agentName string, deps *Deps) []tool.BaseTool {
	base := append(fsTools(deps), NewUpdateTodoTool(deps), NewTodoStatusTool(deps))

	switch agentName {
	case consts.StockAnalyst:
		return append(base,
			NewStockPriceTool(deps),
			NewStockHistoryTool(deps),
			NewFinancialStatementsTool(deps),
			NewRiskMetricsTool(deps),
			NewNewsTool(deps),
		)
	case consts.PortfolioManager:
		return append(base,
			NewPortfolioTool(deps),
			NewStockPriceTool(deps),
			NewRiskMetricsTool(deps),
			NewStockHistoryTool(deps),
		)
	case consts.RiskAssessor:
		return append(base,
			NewRiskMetricsTool(deps),
			NewStockHistoryTool(deps),
			NewPortfolioTool(deps),
			NewMarketOverviewTool(deps),
		)
	case consts.MarketResearcher:
		out := append(base,
			NewMarketOverviewTool(deps),
			NewStockPriceTool(deps),
			NewStockHistoryTool(deps),
			NewNewsTool(deps),
			NewReadArticleTool(deps),
			NewSummarizeTool(deps),
		)
		if deps.Search != nil && deps.Search.Enabled() {
			out = append(out, NewWebSearchTool(deps))
		}
		return out
	default:
		return base
	}
}

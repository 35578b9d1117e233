package graph

import (
	"strings"

	"github.com/deepagent/deepagent/consts"
)

var typeKeywords = []struct {
	analysisType string
	keywords     []string
}{
	{consts.AnalysisPortfolio, []string{
		"portfolio", "holdings", "allocation", "diversif", "rebalanc", "weights",
	}},
	{consts.AnalysisRisk, []string{
		"risk", "volatility", "var", "drawdown", "beta", "hedge", "downside", "exposure",
	}},
	{consts.AnalysisMarket, []string{
		"market", "sector", "industry", "economy", "macro", "trend", "outlook", "fed", "inflation",
	}},
	{consts.AnalysisStock, []string{
		"stock", "share", "ticker", "company", "earnings", "valuation", "price", "buy", "sell", "analyze",
	}},
}

// KnownAnalysisType reports whether t is a supported analysis type.
func KnownAnalysisType(t string) bool {
	switch t {
	case consts.AnalysisStock, consts.AnalysisPortfolio, consts.AnalysisRisk,
		consts.AnalysisMarket, consts.AnalysisGeneral:
		return true
	}
	return false
}

// Classify maps a research query to an analysis type by keyword matching.
// Order matters: portfolio and risk cues win over generic stock words.
func Classify(query string) string {
	q := strings.ToLower(query)
	for _, entry := range typeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(q, kw) {
				return entry.analysisType
			}
		}
	}
	return consts.AnalysisGeneral
}

// PlanFor returns the initial five-step plan for an analysis type. The first
// two steps carry high priority so the supervisor starts with data gathering.
func PlanFor(analysisType string) []planStep {
	var steps []string
	switch analysisType {
	case consts.AnalysisStock:
		steps = []string{
			"Get current stock price and recent price history",
			"Pull financial statements and key fundamentals",
			"Review recent news and analyst sentiment",
			"Assess valuation and technical indicators",
			"Compile the stock analysis report",
		}
	case consts.AnalysisPortfolio:
		steps = []string{
			"Identify the holdings and their weights",
			"Analyze portfolio performance and volatility",
			"Check pairwise correlations and concentration",
			"Evaluate rebalancing opportunities",
			"Compile the portfolio analysis report",
		}
	case consts.AnalysisRisk:
		steps = []string{
			"Compute risk metrics against the benchmark",
			"Review current market stress via VIX and indices",
			"Interpret beta, VaR and drawdown readings",
			"Identify hedging or exposure adjustments",
			"Compile the risk assessment report",
		}
	case consts.AnalysisMarket:
		steps = []string{
			"Get the market overview across the major indices",
			"Gather recent market news and narratives",
			"Identify sector and macro trends",
			"Synthesize implications for investors",
			"Compile the market research report",
		}
	default:
		steps = []string{
			"Clarify the research question and scope",
			"Gather the relevant financial data",
			"Research supporting context and news",
			"Synthesize findings and implications",
			"Compile the research report",
		}
	}

	out := make([]planStep, len(steps))
	for i, content := range steps {
		priority := consts.PriorityMedium
		if i < 2 {
			priority = consts.PriorityHigh
		}
		out[i] = planStep{Content: content, Priority: priority}
	}
	return out
}

type planStep struct {
	Content  string
	Priority string
}

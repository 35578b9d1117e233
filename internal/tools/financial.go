package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/deepagent/deepagent/consts"
	"github.com/deepagent/deepagent/internal/dataflows"
)

// NewStockPriceTool returns the current quote for one symbol.
func NewStockPriceTool(deps *Deps) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_stock_price",
			Desc: "Get the current price, change and volume for a stock symbol",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"symbol": {
					Type:     "string",
					Desc:     "The stock ticker symbol, e.g. AAPL",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input StockPriceInput) (*StockPriceOutput, error) {
			if err := deps.Session.Touch(); err != nil {
				return &StockPriceOutput{Status: consts.StatusError, Error: err.Error()}, nil
			}

			cacheKey := "quote:" + dataflows.NormalizeSymbol(input.Symbol)
			if cached, ok := deps.Session.CachedData(cacheKey); ok {
				if out, ok := cached.(*StockPriceOutput); ok {
					return out, nil
				}
			}

			quote, err := deps.Market.Quote(ctx, input.Symbol)
			if err != nil {
				return &StockPriceOutput{Status: statusFromErr(err), Error: err.Error()}, nil
			}

			out := &StockPriceOutput{
				Status:        consts.StatusOK,
				Symbol:        quote.Symbol,
				Price:         quote.Price.InexactFloat64(),
				PreviousClose: quote.PreviousClose.InexactFloat64(),
				Change:        quote.Change.InexactFloat64(),
				ChangePercent: quote.ChangePercent.InexactFloat64(),
				Volume:        quote.Volume,
				Source:        quote.Source,
			}
			deps.Session.CacheData(cacheKey, out)
			return out, nil
		},
	)
}

// NewStockHistoryTool returns daily history with basic technical indicators.
func NewStockHistoryTool(deps *Deps) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_stock_history",
			Desc: "Get historical daily prices for a symbol with SMA, EMA and RSI indicators",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"symbol": {
					Type:     "string",
					Desc:     "The stock ticker symbol",
					Required: true,
				},
				"days": {
					Type:     "integer",
					Desc:     "Number of calendar days of history (default: 90)",
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input StockHistoryInput) (*StockHistoryOutput, error) {
			if err := deps.Session.Touch(); err != nil {
				return &StockHistoryOutput{Status: consts.StatusError, Error: err.Error()}, nil
			}

			days := input.Days
			if days <= 0 {
				days = 90
			}

			bars, err := deps.Market.Bars(ctx, input.Symbol, days)
			if err != nil {
				return &StockHistoryOutput{Status: statusFromErr(err), Error: err.Error()}, nil
			}
			if len(bars) == 0 {
				return &StockHistoryOutput{
					Status: consts.StatusError,
					Error:  fmt.Sprintf("no history for %s", input.Symbol),
				}, nil
			}

			first := bars[0].Close.InexactFloat64()
			last := bars[len(bars)-1].Close.InexactFloat64()
			periodReturn := 0.0
			if first > 0 {
				periodReturn = last/first - 1
			}

			out := &StockHistoryOutput{
				Status: consts.StatusOK,
				Symbol: dataflows.NormalizeSymbol(input.Symbol),
				Bars:   len(bars),
				First:  bars[0].Date.Format("2006-01-02"),
				Last:   bars[len(bars)-1].Date.Format("2006-01-02"),
				Close:  last,
				Return: periodReturn,
				SMA20:  dataflows.SMA(bars, 20),
				EMA12:  dataflows.EMA(bars, 12),
				RSI14:  dataflows.RSI(bars, 14),
			}
			out.Summary = fmt.Sprintf("%s: %d bars %s..%s, close %.2f, period return %.2f%%",
				out.Symbol, out.Bars, out.First, out.Last, out.Close, out.Return*100)
			return out, nil
		},
	)
}

// NewFinancialStatementsTool fetches income, balance or cashflow statements.
func NewFinancialStatementsTool(deps *Deps) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_financial_statements",
			Desc: "Get the latest annual financial statement line items for a symbol",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"symbol": {
					Type:     "string",
					Desc:     "The stock ticker symbol",
					Required: true,
				},
				"statement_type": {
					Type:     "string",
					Desc:     "One of: income, balance, cashflow (default: income)",
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input StatementsInput) (*StatementsOutput, error) {
			if err := deps.Session.Touch(); err != nil {
				return &StatementsOutput{Status: consts.StatusError, Error: err.Error()}, nil
			}

			statementType := input.StatementType
			if statementType == "" {
				statementType = "income"
			}

			stmt, err := deps.Market.Statements(ctx, input.Symbol, statementType)
			if err != nil {
				return &StatementsOutput{Status: statusFromErr(err), Error: err.Error()}, nil
			}

			return &StatementsOutput{
				Status:        consts.StatusOK,
				Symbol:        stmt.Symbol,
				StatementType: stmt.StatementType,
				ReportDate:    stmt.ReportDate.Format("2006-01-02"),
				Rows:          stmt.Rows,
			}, nil
		},
	)
}

// NewMarketOverviewTool returns major index quotes and a sentiment label.
func NewMarketOverviewTool(deps *Deps) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_market_overview",
			Desc: "Get current quotes for the major market indices and a VIX-based sentiment reading",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"market": {
					Type:     "string",
					Desc:     "Market region (default: US)",
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input MarketOverviewInput) (*MarketOverviewOutput, error) {
			if err := deps.Session.Touch(); err != nil {
				return &MarketOverviewOutput{Status: consts.StatusError, Error: err.Error()}, nil
			}

			overview, err := deps.Market.Overview(ctx)
			if err != nil {
				return &MarketOverviewOutput{Status: statusFromErr(err), Error: err.Error()}, nil
			}

			return &MarketOverviewOutput{
				Status:    consts.StatusOK,
				Market:    overview.Market,
				Indices:   overview.Indices,
				VIX:       overview.VIX,
				Sentiment: overview.Sentiment,
			}, nil
		},
	)
}

// NewRiskMetricsTool computes beta, alpha, Sharpe, VaR and drawdown.
func NewRiskMetricsTool(deps *Deps) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "calculate_risk_metrics",
			Desc: "Calculate risk metrics (beta, alpha, Sharpe ratio, volatility, VaR, max drawdown) for a symbol against a benchmark",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"symbol": {
					Type:     "string",
					Desc:     "The stock ticker symbol",
					Required: true,
				},
				"benchmark": {
					Type:     "string",
					Desc:     "Benchmark index symbol (default: ^GSPC)",
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input RiskMetricsInput) (*RiskMetricsOutput, error) {
			if err := deps.Session.Touch(); err != nil {
				return &RiskMetricsOutput{Status: consts.StatusError, Error: err.Error()}, nil
			}

			metrics, err := deps.Market.RiskMetrics(ctx, input.Symbol, input.Benchmark)
			if err != nil {
				return &RiskMetricsOutput{Status: statusFromErr(err), Error: err.Error()}, nil
			}
			return &RiskMetricsOutput{Status: consts.StatusOK, Metrics: metrics}, nil
		},
	)
}

// NewPortfolioTool analyzes a weighted basket of symbols.
func NewPortfolioTool(deps *Deps) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "analyze_portfolio_performance",
			Desc: "Analyze a portfolio of symbols: weighted return, volatility, Sharpe ratio and pairwise correlations",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"symbols": {
					Type:     "array",
					Desc:     "The ticker symbols held in the portfolio",
					Required: true,
					ElemInfo: &schema.ParameterInfo{Type: "string"},
				},
				"weights": {
					Type:     "array",
					Desc:     "Portfolio weights aligned with symbols; omit for equal weighting",
					Required: false,
					ElemInfo: &schema.ParameterInfo{Type: "number"},
				},
			}),
		},
		func(ctx context.Context, input PortfolioInput) (*PortfolioOutput, error) {
			if err := deps.Session.Touch(); err != nil {
				return &PortfolioOutput{Status: consts.StatusError, Error: err.Error()}, nil
			}

			analysis, err := deps.Market.Portfolio(ctx, input.Symbols, input.Weights)
			if err != nil {
				return &PortfolioOutput{Status: statusFromErr(err), Error: err.Error()}, nil
			}
			return &PortfolioOutput{Status: consts.StatusOK, Analysis: analysis}, nil
		},
	)
}

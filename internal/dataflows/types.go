package dataflows

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketData represents one daily price bar.
type MarketData struct {
	Symbol    string          `json:"symbol"`
	Date      time.Time       `json:"date"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	AdjClose  decimal.Decimal `json:"adj_close"`
	Volume    int64           `json:"volume"`
	Timestamp time.Time       `json:"timestamp"`
}

// QuoteSnapshot is a point-in-time quote for a symbol.
type QuoteSnapshot struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"current_price"`
	PreviousClose decimal.Decimal `json:"previous_close"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	Volume        int64           `json:"volume"`
	MarketCap     int64           `json:"market_cap,omitempty"`
	Source        string          `json:"data_source"`
	LastUpdated   time.Time       `json:"last_updated"`
}

// IndexQuote is a quote for a market index used in the market overview.
type IndexQuote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
}

// MarketOverview aggregates index quotes and a sentiment label.
type MarketOverview struct {
	Market    string       `json:"market"`
	Indices   []IndexQuote `json:"indices"`
	VIX       float64      `json:"vix"`
	Sentiment string       `json:"sentiment"`
	Timestamp time.Time    `json:"timestamp"`
}

// StatementRow is a single line item of a financial statement.
type StatementRow struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// FinancialStatement holds key rows for one reporting period.
type FinancialStatement struct {
	Symbol        string         `json:"symbol"`
	StatementType string         `json:"statement_type"` // income | balance | cashflow
	Period        string         `json:"period"`
	ReportDate    time.Time      `json:"report_date"`
	Rows          []StatementRow `json:"rows"`
}

// RiskMetrics holds quantitative risk measurements for a symbol against a
// benchmark.
type RiskMetrics struct {
	Symbol           string  `json:"symbol"`
	Benchmark        string  `json:"benchmark"`
	Beta             float64 `json:"beta"`
	Alpha            float64 `json:"alpha_annualized"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	AnnualVolatility float64 `json:"annual_volatility"`
	VaR95            float64 `json:"var_95_daily"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	Observations     int     `json:"observations"`
}

// PositionPerformance is per-holding output of a portfolio analysis.
type PositionPerformance struct {
	Symbol           string  `json:"symbol"`
	Weight           float64 `json:"weight"`
	TotalReturn      float64 `json:"total_return"`
	AnnualVolatility float64 `json:"annual_volatility"`
}

// PortfolioAnalysis is the aggregate output of a portfolio analysis.
type PortfolioAnalysis struct {
	Positions        []PositionPerformance `json:"positions"`
	TotalReturn      float64               `json:"total_return"`
	AnnualVolatility float64               `json:"annual_volatility"`
	SharpeRatio      float64               `json:"sharpe_ratio"`
	Correlations     map[string]float64    `json:"correlations"`
	Observations     int                   `json:"observations"`
}

// NewsArticle represents one scraped or syndicated news item.
type NewsArticle struct {
	Title       string    `json:"title"`
	Content     string    `json:"content,omitempty"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// SearchResult is one web search hit.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

package dataflows

import (
	"context"
	"log"
	"time"

	"github.com/deepagent/deepagent/internal/config"
)

// Service is the market data entry point for tools. It fronts the configured
// providers: Longport candlesticks when credentials are present, Yahoo
// Finance otherwise.
type Service struct {
	cfg        *config.Config
	yahoo      *YahooClient
	longport   *LongportClient
	statements *StatementsClient
}

func NewService(cfg *config.Config) *Service {
	svc := &Service{
		cfg:        cfg,
		yahoo:      NewYahooClient(cfg),
		statements: NewStatementsClient(cfg),
	}

	if cfg.Status().LongportConfigured {
		lp, err := NewLongportClient(cfg)
		if err != nil {
			log.Printf("[Dataflows] Longport unavailable, falling back to Yahoo: %v", err)
		} else {
			svc.longport = lp
		}
	}

	return svc
}

// Quote returns a current snapshot for a symbol.
func (s *Service) Quote(ctx context.Context, symbol string) (*QuoteSnapshot, error) {
	return s.yahoo.Quote(symbol)
}

// Bars returns up to days daily bars ending today, preferring Longport when
// configured.
func (s *Service) Bars(ctx context.Context, symbol string, days int) ([]*MarketData, error) {
	if days <= 0 || days > s.cfg.MaxHistoricalDays {
		days = s.cfg.MaxHistoricalDays
	}

	if s.longport != nil {
		bars, err := s.longport.DailyBars(ctx, symbol, days)
		if err == nil && len(bars) > 0 {
			return bars, nil
		}
		if err != nil {
			log.Printf("[Dataflows] Longport bars for %s failed: %v", symbol, err)
		}
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)
	return s.yahoo.Historical(symbol, start, end)
}

// Overview returns the major-index market overview.
func (s *Service) Overview(ctx context.Context) (*MarketOverview, error) {
	return s.yahoo.Overview(s.cfg.DefaultMarket)
}

// Statements returns key statement rows for a symbol.
func (s *Service) Statements(ctx context.Context, symbol, statementType string) (*FinancialStatement, error) {
	return s.statements.Get(ctx, symbol, statementType)
}

// RiskMetrics computes risk measurements for a symbol against a benchmark
// over roughly one year of daily bars.
func (s *Service) RiskMetrics(ctx context.Context, symbol, benchmark string) (*RiskMetrics, error) {
	if benchmark == "" {
		benchmark = "^GSPC"
	}

	symBars, err := s.Bars(ctx, symbol, s.cfg.MaxHistoricalDays)
	if err != nil {
		return nil, err
	}
	benchBars, err := s.Bars(ctx, benchmark, s.cfg.MaxHistoricalDays)
	if err != nil {
		return nil, err
	}

	return ComputeRiskMetrics(symbol, benchmark, symBars, benchBars)
}

// Portfolio analyzes a weighted portfolio over roughly one year of bars.
func (s *Service) Portfolio(ctx context.Context, symbols []string, weights []float64) (*PortfolioAnalysis, error) {
	normalized := make([]string, len(symbols))
	series := make(map[string][]*MarketData, len(symbols))
	for i, sym := range symbols {
		normalized[i] = NormalizeSymbol(sym)
		bars, err := s.Bars(ctx, normalized[i], s.cfg.MaxHistoricalDays)
		if err != nil {
			return nil, err
		}
		series[normalized[i]] = bars
	}
	return AnalyzePortfolio(normalized, weights, series)
}

package dataflows

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func barsFromCloses(symbol string, closes []float64) []*MarketData {
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]*MarketData, len(closes))
	for i, c := range closes {
		d := decimal.NewFromFloat(c)
		bars[i] = &MarketData{
			Symbol:   symbol,
			Date:     start.AddDate(0, 0, i),
			Open:     d,
			High:     d,
			Low:      d,
			Close:    d,
			AdjClose: d,
			Volume:   1000,
		}
	}
	return bars
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestDailyReturns(t *testing.T) {
	bars := barsFromCloses("TEST", []float64{100, 110, 99})

	returns := DailyReturns(bars)
	if len(returns) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(returns))
	}
	if !almostEqual(returns[0], 0.10, 1e-9) {
		t.Errorf("first return = %v, want 0.10", returns[0])
	}
	if !almostEqual(returns[1], -0.10, 1e-9) {
		t.Errorf("second return = %v, want -0.10", returns[1])
	}

	if got := DailyReturns(barsFromCloses("TEST", []float64{100})); got != nil {
		t.Errorf("expected nil returns for single bar, got %v", got)
	}
}

func TestMaxDrawdown(t *testing.T) {
	bars := barsFromCloses("TEST", []float64{100, 120, 90, 110, 80})

	got := MaxDrawdown(bars)
	// Peak 120 to trough 80.
	want := (120.0 - 80.0) / 120.0
	if !almostEqual(got, want, 1e-9) {
		t.Errorf("MaxDrawdown = %v, want %v", got, want)
	}
}

func TestHistoricalVaR95(t *testing.T) {
	returns := make([]float64, 100)
	for i := range returns {
		returns[i] = 0.01
	}
	returns[0] = -0.08
	returns[1] = -0.05
	returns[2] = -0.04
	returns[3] = -0.03
	returns[4] = -0.02
	returns[5] = -0.01

	// 5th percentile of 100 observations lands on the 6th worst return.
	got := HistoricalVaR95(returns)
	if !almostEqual(got, 0.01, 1e-9) {
		t.Errorf("VaR95 = %v, want 0.01", got)
	}

	if got := HistoricalVaR95(nil); got != 0 {
		t.Errorf("VaR95 of empty series = %v, want 0", got)
	}
}

func TestComputeRiskMetricsBetaOne(t *testing.T) {
	closes := []float64{100, 102, 101, 105, 103, 108, 107, 110}
	sym := barsFromCloses("AAPL", closes)
	bench := barsFromCloses("^GSPC", closes)

	metrics, err := ComputeRiskMetrics("AAPL", "^GSPC", sym, bench)
	if err != nil {
		t.Fatalf("ComputeRiskMetrics: %v", err)
	}

	if !almostEqual(metrics.Beta, 1.0, 1e-9) {
		t.Errorf("Beta = %v, want 1.0 for identical series", metrics.Beta)
	}
	if !almostEqual(metrics.Alpha, 0.0, 1e-9) {
		t.Errorf("Alpha = %v, want 0.0 for identical series", metrics.Alpha)
	}
	if metrics.Observations != len(closes)-1 {
		t.Errorf("Observations = %d, want %d", metrics.Observations, len(closes)-1)
	}
	if metrics.AnnualVolatility <= 0 {
		t.Errorf("AnnualVolatility = %v, want > 0", metrics.AnnualVolatility)
	}
}

func TestComputeRiskMetricsInsufficientHistory(t *testing.T) {
	sym := barsFromCloses("AAPL", []float64{100, 101})
	bench := barsFromCloses("^GSPC", []float64{100, 101})

	if _, err := ComputeRiskMetrics("AAPL", "^GSPC", sym, bench); err == nil {
		t.Fatal("expected error for two-bar history")
	}
}

func TestNormalizeWeights(t *testing.T) {
	equal, err := NormalizeWeights([]string{"AAPL", "MSFT"}, nil)
	if err != nil {
		t.Fatalf("NormalizeWeights: %v", err)
	}
	if !almostEqual(equal[0], 0.5, 1e-9) || !almostEqual(equal[1], 0.5, 1e-9) {
		t.Errorf("equal weights = %v, want [0.5 0.5]", equal)
	}

	scaled, err := NormalizeWeights([]string{"AAPL", "MSFT"}, []float64{2, 6})
	if err != nil {
		t.Fatalf("NormalizeWeights: %v", err)
	}
	if !almostEqual(scaled[0], 0.25, 1e-9) || !almostEqual(scaled[1], 0.75, 1e-9) {
		t.Errorf("scaled weights = %v, want [0.25 0.75]", scaled)
	}

	if _, err := NormalizeWeights([]string{"AAPL"}, []float64{1, 2}); err == nil {
		t.Error("expected error for mismatched weight count")
	}
	if _, err := NormalizeWeights([]string{"AAPL"}, []float64{-1}); err == nil {
		t.Error("expected error for negative weight")
	}
	if _, err := NormalizeWeights(nil, nil); err == nil {
		t.Error("expected error for empty symbol list")
	}
}

func TestAnalyzePortfolio(t *testing.T) {
	symbols := []string{"AAPL", "MSFT"}
	// Same return path (+10% then -10%) at different price levels, so the
	// returns vary day to day and the correlation is well defined.
	series := map[string][]*MarketData{
		"AAPL": barsFromCloses("AAPL", []float64{100, 110, 99}),
		"MSFT": barsFromCloses("MSFT", []float64{50, 55, 49.5}),
	}

	analysis, err := AnalyzePortfolio(symbols, nil, series)
	if err != nil {
		t.Fatalf("AnalyzePortfolio: %v", err)
	}

	if len(analysis.Positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(analysis.Positions))
	}
	if !almostEqual(analysis.TotalReturn, -0.01, 1e-9) {
		t.Errorf("TotalReturn = %v, want -0.01", analysis.TotalReturn)
	}
	if corr := analysis.Correlations["AAPL/MSFT"]; !almostEqual(corr, 1.0, 1e-6) {
		t.Errorf("correlation = %v, want 1.0 for identical return paths", corr)
	}
	if analysis.Observations != 2 {
		t.Errorf("Observations = %d, want 2", analysis.Observations)
	}
}

func TestAnalyzePortfolioMissingSeries(t *testing.T) {
	series := map[string][]*MarketData{
		"AAPL": barsFromCloses("AAPL", []float64{100, 110, 121}),
	}
	if _, err := AnalyzePortfolio([]string{"AAPL", "MSFT"}, nil, series); err == nil {
		t.Fatal("expected error when a symbol has no bars")
	}
}

func TestIndicators(t *testing.T) {
	bars := barsFromCloses("TEST", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})

	if got := SMA(bars, 5); !almostEqual(got, 8, 1e-9) {
		t.Errorf("SMA(5) = %v, want 8", got)
	}
	if got := SMA(bars, 20); got != 0 {
		t.Errorf("SMA with short history = %v, want 0", got)
	}

	if got := EMA(bars, 5); got <= SMA(bars, 10) {
		t.Errorf("EMA(5) = %v, expected above full-series mean for rising prices", got)
	}

	// Monotonically rising prices have no losses.
	if got := RSI(bars, 5); got != 100 {
		t.Errorf("RSI = %v, want 100 for all-gain series", got)
	}
	falling := barsFromCloses("TEST", []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1})
	if got := RSI(falling, 5); got != 0 {
		t.Errorf("RSI = %v, want 0 for all-loss series", got)
	}
}

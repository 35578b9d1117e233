package dataflows

import (
	"fmt"
	"math"
	"sort"
)

const (
	tradingDaysPerYear = 252
	riskFreeRateAnnual = 0.05
)

// DailyReturns computes simple day-over-day returns from closing prices.
func DailyReturns(bars []*MarketData) []float64 {
	if len(bars) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close.InexactFloat64()
		cur := bars[i].Close.InexactFloat64()
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, cur/prev-1)
	}
	return returns
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs)-1)
}

func stddev(xs []float64) float64 {
	return math.Sqrt(variance(xs))
}

func covariance(xs, ys []float64) float64 {
	n := len(xs)
	if n != len(ys) || n < 2 {
		return 0
	}
	mx, my := mean(xs), mean(ys)
	var sum float64
	for i := 0; i < n; i++ {
		sum += (xs[i] - mx) * (ys[i] - my)
	}
	return sum / float64(n-1)
}

func correlation(xs, ys []float64) float64 {
	sx, sy := stddev(xs), stddev(ys)
	if sx == 0 || sy == 0 {
		return 0
	}
	return covariance(xs, ys) / (sx * sy)
}

// AnnualizedVolatility scales daily return volatility to a yearly figure.
func AnnualizedVolatility(dailyReturns []float64) float64 {
	return stddev(dailyReturns) * math.Sqrt(tradingDaysPerYear)
}

// SharpeRatio computes the annualized Sharpe ratio from daily returns.
func SharpeRatio(dailyReturns []float64) float64 {
	vol := AnnualizedVolatility(dailyReturns)
	if vol == 0 {
		return 0
	}
	annualReturn := mean(dailyReturns) * tradingDaysPerYear
	return (annualReturn - riskFreeRateAnnual) / vol
}

// HistoricalVaR95 returns the 5th percentile of daily returns, reported as a
// positive loss figure.
func HistoricalVaR95(dailyReturns []float64) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}

	sorted := make([]float64, len(dailyReturns))
	copy(sorted, dailyReturns)
	sort.Float64s(sorted)

	idx := int(math.Floor(0.05 * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return -sorted[idx]
}

// MaxDrawdown returns the largest peak-to-trough decline over the bar series,
// as a positive fraction.
func MaxDrawdown(bars []*MarketData) float64 {
	var peak, maxDD float64
	for _, bar := range bars {
		close := bar.Close.InexactFloat64()
		if close > peak {
			peak = close
		}
		if peak > 0 {
			dd := (peak - close) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// alignReturns truncates both return series to their common trailing length so
// covariance terms line up even when one provider returned fewer bars.
func alignReturns(a, b []float64) ([]float64, []float64) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	return a[len(a)-n:], b[len(b)-n:]
}

// ComputeRiskMetrics derives beta, alpha, Sharpe, volatility, VaR and drawdown
// for a symbol relative to a benchmark index.
func ComputeRiskMetrics(symbol, benchmark string, symBars, benchBars []*MarketData) (*RiskMetrics, error) {
	symReturns := DailyReturns(symBars)
	benchReturns := DailyReturns(benchBars)
	if len(symReturns) < 2 || len(benchReturns) < 2 {
		return nil, fmt.Errorf("insufficient history for %s risk metrics (need at least 3 bars)", symbol)
	}

	symReturns, benchReturns = alignReturns(symReturns, benchReturns)

	benchVar := variance(benchReturns)
	beta := 0.0
	if benchVar > 0 {
		beta = covariance(symReturns, benchReturns) / benchVar
	}

	annualSym := mean(symReturns) * tradingDaysPerYear
	annualBench := mean(benchReturns) * tradingDaysPerYear
	alpha := annualSym - riskFreeRateAnnual - beta*(annualBench-riskFreeRateAnnual)

	return &RiskMetrics{
		Symbol:           symbol,
		Benchmark:        benchmark,
		Beta:             beta,
		Alpha:            alpha,
		SharpeRatio:      SharpeRatio(symReturns),
		AnnualVolatility: AnnualizedVolatility(symReturns),
		VaR95:            HistoricalVaR95(symReturns),
		MaxDrawdown:      MaxDrawdown(symBars),
		Observations:     len(symReturns),
	}, nil
}

// NormalizeWeights validates portfolio weights against the symbol list,
// defaulting to equal weighting and rescaling to sum to 1.
func NormalizeWeights(symbols []string, weights []float64) ([]float64, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols provided")
	}

	if len(weights) == 0 {
		equal := make([]float64, len(symbols))
		for i := range equal {
			equal[i] = 1.0 / float64(len(symbols))
		}
		return equal, nil
	}

	if len(weights) != len(symbols) {
		return nil, fmt.Errorf("got %d weights for %d symbols", len(weights), len(symbols))
	}

	var total float64
	for _, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("negative weight %.4f", w)
		}
		total += w
	}
	if total == 0 {
		return nil, fmt.Errorf("weights sum to zero")
	}

	normalized := make([]float64, len(weights))
	for i, w := range weights {
		normalized[i] = w / total
	}
	return normalized, nil
}

// AnalyzePortfolio computes weighted performance, volatility, Sharpe and
// pairwise correlations for a basket of symbols.
func AnalyzePortfolio(symbols []string, weights []float64, series map[string][]*MarketData) (*PortfolioAnalysis, error) {
	weights, err := NormalizeWeights(symbols, weights)
	if err != nil {
		return nil, err
	}

	returnsBySymbol := make(map[string][]float64, len(symbols))
	minObs := math.MaxInt32
	for _, sym := range symbols {
		bars := series[sym]
		rets := DailyReturns(bars)
		if len(rets) < 2 {
			return nil, fmt.Errorf("insufficient history for %s in portfolio analysis", sym)
		}
		returnsBySymbol[sym] = rets
		if len(rets) < minObs {
			minObs = len(rets)
		}
	}

	// Truncate every series to the common trailing window.
	for sym, rets := range returnsBySymbol {
		returnsBySymbol[sym] = rets[len(rets)-minObs:]
	}

	positions := make([]PositionPerformance, 0, len(symbols))
	portfolioReturns := make([]float64, minObs)
	for i, sym := range symbols {
		rets := returnsBySymbol[sym]

		totalReturn := 1.0
		for _, r := range rets {
			totalReturn *= 1 + r
		}
		totalReturn -= 1

		positions = append(positions, PositionPerformance{
			Symbol:           sym,
			Weight:           weights[i],
			TotalReturn:      totalReturn,
			AnnualVolatility: AnnualizedVolatility(rets),
		})

		for j, r := range rets {
			portfolioReturns[j] += weights[i] * r
		}
	}

	portfolioTotal := 1.0
	for _, r := range portfolioReturns {
		portfolioTotal *= 1 + r
	}
	portfolioTotal -= 1

	correlations := make(map[string]float64)
	for i := 0; i < len(symbols); i++ {
		for j := i + 1; j < len(symbols); j++ {
			key := fmt.Sprintf("%s/%s", symbols[i], symbols[j])
			correlations[key] = correlation(returnsBySymbol[symbols[i]], returnsBySymbol[symbols[j]])
		}
	}

	return &PortfolioAnalysis{
		Positions:        positions,
		TotalReturn:      portfolioTotal,
		AnnualVolatility: AnnualizedVolatility(portfolioReturns),
		SharpeRatio:      SharpeRatio(portfolioReturns),
		Correlations:     correlations,
		Observations:     minObs,
	}, nil
}

// SMA computes a simple moving average of the last period closes.
func SMA(bars []*MarketData, period int) float64 {
	if period <= 0 || len(bars) < period {
		return 0
	}
	var sum float64
	for _, bar := range bars[len(bars)-period:] {
		sum += bar.Close.InexactFloat64()
	}
	return sum / float64(period)
}

// EMA computes an exponential moving average over the full series.
func EMA(bars []*MarketData, period int) float64 {
	if period <= 0 || len(bars) < period {
		return 0
	}

	k := 2.0 / float64(period+1)
	ema := SMA(bars[:period], period)
	for _, bar := range bars[period:] {
		ema = bar.Close.InexactFloat64()*k + ema*(1-k)
	}
	return ema
}

// RSI computes the relative strength index using Wilder smoothing.
func RSI(bars []*MarketData, period int) float64 {
	if period <= 0 || len(bars) <= period {
		return 0
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := bars[i].Close.InexactFloat64() - bars[i-1].Close.InexactFloat64()
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(bars); i++ {
		change := bars[i].Close.InexactFloat64() - bars[i-1].Close.InexactFloat64()
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

package dataflows

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"

	"github.com/deepagent/deepagent/internal/config"
)

// YahooClient fetches quotes and historical bars from Yahoo Finance.
type YahooClient struct {
	cache *CacheManager
	pacer *Pacer
}

func NewYahooClient(cfg *config.Config) *YahooClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "yahoo_finance")
	return &YahooClient{
		cache: NewCacheManager(cacheDir, 15*time.Minute, cfg.CacheEnabled),
		pacer: NewPacer(4),
	}
}

// Quote returns a current quote snapshot for a symbol.
func (yc *YahooClient) Quote(symbol string) (*QuoteSnapshot, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	var cached QuoteSnapshot
	if yc.cache.Get("yahoo", "quote", symbol, &cached) {
		return &cached, nil
	}

	var result *QuoteSnapshot
	err := WithRetry(DefaultRetryConfig(), func() error {
		yc.pacer.Wait()

		q, err := quote.Get(symbol)
		if err != nil {
			return fmt.Errorf("get quote for %s: %w", symbol, err)
		}
		if q == nil {
			return fmt.Errorf("no quote data for %s", symbol)
		}

		price := decimal.NewFromFloat(q.RegularMarketPrice)
		prev := decimal.NewFromFloat(q.RegularMarketPreviousClose)

		result = &QuoteSnapshot{
			Symbol:        symbol,
			Price:         price,
			PreviousClose: prev,
			Change:        decimal.NewFromFloat(q.RegularMarketChange),
			ChangePercent: decimal.NewFromFloat(q.RegularMarketChangePercent),
			Volume:        int64(q.RegularMarketVolume),
			Source:        "yahoo_finance",
			LastUpdated:   time.Now(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	yc.cache.Set("yahoo", "quote", symbol, result)
	return result, nil
}

// Historical returns daily bars for a symbol between start and end.
func (yc *YahooClient) Historical(symbol string, start, end time.Time) ([]*MarketData, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	cacheKey := map[string]interface{}{
		"symbol": symbol,
		"start":  start.Format("2006-01-02"),
		"end":    end.Format("2006-01-02"),
	}

	var cached []*MarketData
	if yc.cache.Get("yahoo", "historical", cacheKey, &cached) {
		return cached, nil
	}

	var result []*MarketData
	err := WithRetry(DefaultRetryConfig(), func() error {
		yc.pacer.Wait()

		params := &chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		}

		iter := chart.Get(params)
		result = result[:0]
		for iter.Next() {
			bar := iter.Bar()
			result = append(result, &MarketData{
				Symbol:    symbol,
				Date:      time.Unix(int64(bar.Timestamp), 0),
				Open:      bar.Open,
				High:      bar.High,
				Low:       bar.Low,
				Close:     bar.Close,
				AdjClose:  bar.AdjClose,
				Volume:    int64(bar.Volume),
				Timestamp: time.Now(),
			})
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("get historical data for %s: %w", symbol, err)
		}
		if len(result) == 0 {
			return fmt.Errorf("no historical data for %s", symbol)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	yc.cache.Set("yahoo", "historical", cacheKey, result)
	return result, nil
}

var indexNames = map[string]string{
	"^GSPC": "S&P 500",
	"^DJI":  "Dow Jones Industrial Average",
	"^IXIC": "NASDAQ Composite",
	"^RUT":  "Russell 2000",
	"^VIX":  "CBOE Volatility Index",
}

// Overview returns quotes for the major US indices plus a VIX-derived
// sentiment label.
func (yc *YahooClient) Overview(market string) (*MarketOverview, error) {
	symbols := []string{"^GSPC", "^DJI", "^IXIC", "^RUT", "^VIX"}

	overview := &MarketOverview{
		Market:    market,
		Timestamp: time.Now(),
	}

	for _, sym := range symbols {
		var q *QuoteSnapshot
		err := WithRetry(DefaultRetryConfig(), func() error {
			yc.pacer.Wait()
			raw, err := quote.Get(sym)
			if err != nil {
				return fmt.Errorf("get index quote %s: %w", sym, err)
			}
			q = &QuoteSnapshot{
				Symbol:        sym,
				Price:         decimal.NewFromFloat(raw.RegularMarketPrice),
				ChangePercent: decimal.NewFromFloat(raw.RegularMarketChangePercent),
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		price, _ := q.Price.Float64()
		changePct, _ := q.ChangePercent.Float64()
		overview.Indices = append(overview.Indices, IndexQuote{
			Symbol:        sym,
			Name:          indexNames[sym],
			Price:         price,
			ChangePercent: changePct,
		})
		if sym == "^VIX" {
			overview.VIX = price
		}
	}

	overview.Sentiment = VIXSentiment(overview.VIX)
	return overview, nil
}

// VIXSentiment maps a VIX level onto a coarse sentiment label.
func VIXSentiment(vix float64) string {
	switch {
	case vix <= 0:
		return "unknown"
	case vix < 15:
		return "calm"
	case vix < 25:
		return "normal"
	default:
		return "stressed"
	}
}

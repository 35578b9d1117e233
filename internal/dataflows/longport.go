package dataflows

import (
	"context"
	"errors"
	"time"

	lpconfig "github.com/longportapp/openapi-go/config"
	lpquote "github.com/longportapp/openapi-go/quote"
	"github.com/shopspring/decimal"

	"github.com/deepagent/deepagent/internal/config"
)

// LongportClient is an alternate candlestick source, used ahead of Yahoo when
// Longport credentials are configured.
type LongportClient struct {
	quoteCtx *lpquote.QuoteContext
}

func NewLongportClient(cfg *config.Config) (*LongportClient, error) {
	if cfg.LongportAppKey == "" || cfg.LongportAppSecret == "" || cfg.LongportAccessToken == "" {
		return nil, errors.New("longport API credentials not configured")
	}

	conf, err := lpconfig.New(lpconfig.WithConfigKey(cfg.LongportAppKey, cfg.LongportAppSecret, cfg.LongportAccessToken))
	if err != nil {
		return nil, err
	}

	quoteCtx, err := lpquote.NewFromCfg(conf)
	if err != nil {
		return nil, err
	}

	return &LongportClient{quoteCtx: quoteCtx}, nil
}

// DailyBars returns up to count daily candlesticks for a symbol.
func (lc *LongportClient) DailyBars(ctx context.Context, symbol string, count int) ([]*MarketData, error) {
	if lc.quoteCtx == nil {
		return nil, errors.New("quote context is nil")
	}

	sticks, err := lc.quoteCtx.Candlesticks(ctx, symbol, lpquote.PeriodDay, int32(count), lpquote.AdjustTypeNo)
	if err != nil {
		return nil, err
	}

	bars := make([]*MarketData, 0, len(sticks))
	for _, stick := range sticks {
		closePrice := derefDecimal(stick.Close)
		bars = append(bars, &MarketData{
			Symbol:    symbol,
			Date:      time.Unix(stick.Timestamp, 0),
			Open:      derefDecimal(stick.Open),
			High:      derefDecimal(stick.High),
			Low:       derefDecimal(stick.Low),
			Close:     closePrice,
			AdjClose:  closePrice,
			Volume:    stick.Volume,
			Timestamp: time.Now(),
		})
	}
	return bars, nil
}

// derefDecimal guards against nil prices in candlestick responses.
func derefDecimal(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

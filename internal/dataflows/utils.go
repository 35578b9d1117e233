package dataflows

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// RetryConfig configures retry behavior for upstream calls.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
	}
}

// WithRetry executes fn with exponential backoff.
func WithRetry(cfg *RetryConfig, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := cfg.BaseDelay
			for i := 1; i < attempt; i++ {
				delay = time.Duration(float64(delay) * cfg.Multiplier)
			}
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
			time.Sleep(delay)
		}

		if err := fn(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// Pacer enforces a minimum interval between upstream calls. Yahoo rate-limits
// aggressively, so providers pace themselves at a few calls per minute.
type Pacer struct {
	mu       sync.Mutex
	last     time.Time
	interval time.Duration
}

// NewPacer creates a pacer allowing callsPerMinute upstream calls.
func NewPacer(callsPerMinute int) *Pacer {
	if callsPerMinute <= 0 {
		callsPerMinute = 4
	}
	return &Pacer{interval: time.Minute / time.Duration(callsPerMinute)}
}

// Wait blocks until the next call is allowed.
func (p *Pacer) Wait() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if wait := p.interval - time.Since(p.last); wait > 0 {
		time.Sleep(wait)
	}
	p.last = time.Now()
}

// ValidateSymbol checks that a ticker symbol has a plausible format.
func ValidateSymbol(symbol string) error {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))
	if len(symbol) == 0 {
		return fmt.Errorf("symbol cannot be empty")
	}
	if len(symbol) > 10 {
		return fmt.Errorf("symbol too long: %s", symbol)
	}
	return nil
}

// NormalizeSymbol converts a symbol to its canonical uppercase form.
func NormalizeSymbol(symbol string) string {
	return strings.TrimSpace(strings.ToUpper(symbol))
}

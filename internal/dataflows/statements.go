package dataflows

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/deepagent/deepagent/internal/config"
)

// StatementsClient fetches financial statements from the Yahoo quoteSummary
// endpoint.
type StatementsClient struct {
	client *resty.Client
	cache  *CacheManager
	pacer  *Pacer
}

var statementModules = map[string]string{
	"income":   "incomeStatementHistory",
	"balance":  "balanceSheetHistory",
	"cashflow": "cashflowStatementHistory",
}

var statementLists = map[string]string{
	"incomeStatementHistory":   "incomeStatementHistory",
	"balanceSheetHistory":      "balanceSheetStatements",
	"cashflowStatementHistory": "cashflowStatements",
}

func NewStatementsClient(cfg *config.Config) *StatementsClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "statements")

	client := resty.New()
	client.SetBaseURL("https://query1.finance.yahoo.com")
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; DeepAgent/1.0)")

	return &StatementsClient{
		client: client,
		cache:  NewCacheManager(cacheDir, 24*time.Hour, cfg.CacheEnabled),
		pacer:  NewPacer(4),
	}
}

// Get returns the most recent annual statement of the requested type.
// statementType is one of income, balance, cashflow.
func (sc *StatementsClient) Get(ctx context.Context, symbol, statementType string) (*FinancialStatement, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	module, ok := statementModules[statementType]
	if !ok {
		return nil, fmt.Errorf("unknown statement type %q (want income, balance or cashflow)", statementType)
	}

	cacheKey := map[string]string{"symbol": symbol, "type": statementType}
	var cached FinancialStatement
	if sc.cache.Get("yahoo", "statements", cacheKey, &cached) {
		return &cached, nil
	}

	var payload struct {
		QuoteSummary struct {
			Result []map[string]map[string][]map[string]interface{} `json:"result"`
			Error  *struct {
				Description string `json:"description"`
			} `json:"error"`
		} `json:"quoteSummary"`
	}

	err := WithRetry(DefaultRetryConfig(), func() error {
		sc.pacer.Wait()

		resp, err := sc.client.R().
			SetContext(ctx).
			SetQueryParam("modules", module).
			SetResult(&payload).
			Get(fmt.Sprintf("/v10/finance/quoteSummary/%s", symbol))
		if err != nil {
			return fmt.Errorf("fetch statements for %s: %w", symbol, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("HTTP %d fetching statements for %s", resp.StatusCode(), symbol)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if payload.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("statements for %s: %s", symbol, payload.QuoteSummary.Error.Description)
	}
	if len(payload.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no statement data for %s", symbol)
	}

	entries := payload.QuoteSummary.Result[0][module][statementLists[module]]
	if len(entries) == 0 {
		return nil, fmt.Errorf("no %s statement entries for %s", statementType, symbol)
	}

	stmt := &FinancialStatement{
		Symbol:        symbol,
		StatementType: statementType,
		Period:        "annual",
	}
	stmt.Rows, stmt.ReportDate = parseStatementEntry(entries[0])

	sc.cache.Set("yahoo", "statements", cacheKey, stmt)
	return stmt, nil
}

// parseStatementEntry flattens one quoteSummary statement object into named
// rows. Yahoo encodes every line item as {"raw": n, "fmt": "..."}.
func parseStatementEntry(entry map[string]interface{}) ([]StatementRow, time.Time) {
	var rows []StatementRow
	var reportDate time.Time

	for name, value := range entry {
		obj, ok := value.(map[string]interface{})
		if !ok {
			continue
		}
		raw, ok := obj["raw"].(float64)
		if !ok {
			continue
		}
		if name == "endDate" {
			reportDate = time.Unix(int64(raw), 0)
			continue
		}
		rows = append(rows, StatementRow{Name: name, Value: raw})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, reportDate
}

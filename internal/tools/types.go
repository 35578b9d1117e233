package tools

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/model"

	"github.com/deepagent/deepagent/consts"
	"github.com/deepagent/deepagent/internal/config"
	"github.com/deepagent/deepagent/internal/dataflows"
	"github.com/deepagent/deepagent/internal/state"
)

// DelegateFunc runs a named sub-agent against a task and returns its answer.
type DelegateFunc func(ctx context.Context, agentName, task string) (string, error)

// Deps carries everything tools need. Tools close over the session directly
// instead of going through graph state, so sub-agent graphs share the same
// virtual file system and todo list as the supervisor.
type Deps struct {
	Cfg      *config.Config
	Session  *state.Session
	Market   *dataflows.Service
	Search   *dataflows.TavilyClient
	News     *dataflows.NewsClient
	Delegate DelegateFunc

	// Model backs the research tools that summarize and reason over text.
	// Nil disables LLM-backed synthesis and falls back to extraction.
	Model model.BaseChatModel
}

// statusFromErr maps an upstream error to the tool status contract. Agents
// are prompted to stop retrying on rate_limited.
func statusFromErr(err error) string {
	if err == nil {
		return consts.StatusOK
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests") {
		return consts.StatusRateLimited
	}
	return consts.StatusError
}

// --- Financial tool IO ---

type StockPriceInput struct {
	Symbol string `json:"symbol"`
}

type StockPriceOutput struct {
	Status        string  `json:"status"`
	Error         string  `json:"error,omitempty"`
	Symbol        string  `json:"symbol,omitempty"`
	Price         float64 `json:"current_price,omitempty"`
	PreviousClose float64 `json:"previous_close,omitempty"`
	Change        float64 `json:"change,omitempty"`
	ChangePercent float64 `json:"change_percent,omitempty"`
	Volume        int64   `json:"volume,omitempty"`
	Source        string  `json:"data_source,omitempty"`
}

type StockHistoryInput struct {
	Symbol string `json:"symbol"`
	Days   int    `json:"days"`
}

type StockHistoryOutput struct {
	Status  string  `json:"status"`
	Error   string  `json:"error,omitempty"`
	Symbol  string  `json:"symbol,omitempty"`
	Bars    int     `json:"bars,omitempty"`
	First   string  `json:"first_date,omitempty"`
	Last    string  `json:"last_date,omitempty"`
	Close   float64 `json:"last_close,omitempty"`
	Return  float64 `json:"period_return,omitempty"`
	SMA20   float64 `json:"sma_20,omitempty"`
	EMA12   float64 `json:"ema_12,omitempty"`
	RSI14   float64 `json:"rsi_14,omitempty"`
	Summary string  `json:"summary,omitempty"`
}

type StatementsInput struct {
	Symbol        string `json:"symbol"`
	StatementType string `json:"statement_type"`
}

type StatementsOutput struct {
	Status        string                    `json:"status"`
	Error         string                    `json:"error,omitempty"`
	Symbol        string                    `json:"symbol,omitempty"`
	StatementType string                    `json:"statement_type,omitempty"`
	ReportDate    string                    `json:"report_date,omitempty"`
	Rows          []dataflows.StatementRow  `json:"rows,omitempty"`
}

type MarketOverviewInput struct {
	Market string `json:"market"`
}

type MarketOverviewOutput struct {
	Status    string                `json:"status"`
	Error     string                `json:"error,omitempty"`
	Market    string                `json:"market,omitempty"`
	Indices   []dataflows.IndexQuote `json:"indices,omitempty"`
	VIX       float64               `json:"vix,omitempty"`
	Sentiment string                `json:"sentiment,omitempty"`
}

type RiskMetricsInput struct {
	Symbol    string `json:"symbol"`
	Benchmark string `json:"benchmark"`
}

type RiskMetricsOutput struct {
	Status  string                 `json:"status"`
	Error   string                 `json:"error,omitempty"`
	Metrics *dataflows.RiskMetrics `json:"metrics,omitempty"`
}

type PortfolioInput struct {
	Symbols []string  `json:"symbols"`
	Weights []float64 `json:"weights"`
}

type PortfolioOutput struct {
	Status   string                       `json:"status"`
	Error    string                       `json:"error,omitempty"`
	Analysis *dataflows.PortfolioAnalysis `json:"analysis,omitempty"`
}

// --- Planning tool IO ---

type WriteTodosInput struct {
	Todos string `json:"todos"`
}

type WriteTodosOutput struct {
	Status  string           `json:"status"`
	Error   string           `json:"error,omitempty"`
	Created int              `json:"created,omitempty"`
	Items   []*state.TodoItem `json:"items,omitempty"`
}

type UpdateTodoInput struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type UpdateTodoOutput struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	ID     string `json:"id,omitempty"`
	New    string `json:"new_status,omitempty"`
}

type TodoStatusInput struct{}

type TodoStatusOutput struct {
	Status  string            `json:"status"`
	Summary string            `json:"summary,omitempty"`
	Items   []*state.TodoItem `json:"items,omitempty"`
}

// --- Virtual file system tool IO ---

type LsInput struct{}

type LsOutput struct {
	Status string        `json:"status"`
	Files  []*state.File `json:"files"`
}

type ReadFileInput struct {
	Path string `json:"path"`
}

type ReadFileOutput struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Path    string `json:"path,omitempty"`
	Content string `json:"content,omitempty"`
}

type WriteFileInput struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type WriteFileOutput struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Path   string `json:"path,omitempty"`
	Size   int    `json:"size,omitempty"`
}

type EditFileInput struct {
	Path    string `json:"path"`
	OldText string `json:"old_text"`
	NewText string `json:"new_text"`
}

type EditFileOutput struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Path   string `json:"path,omitempty"`
}

// --- Research tool IO ---

type SummarizeInput struct {
	Content string `json:"content"`
	Focus   string `json:"focus"`
}

type SummarizeOutput struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Summary string `json:"summary,omitempty"`
}

type ThinkingInput struct {
	Topic   string `json:"topic"`
	Context string `json:"context"`
}

type ThinkingOutput struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Analysis string `json:"analysis,omitempty"`
}

type CompileReportInput struct {
	Title string `json:"title"`
}

type CompileReportOutput struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Path   string `json:"path,omitempty"`
	Report string `json:"report,omitempty"`
}

// --- Search tool IO ---

type WebSearchInput struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type WebSearchOutput struct {
	Status  string                   `json:"status"`
	Error   string                   `json:"error,omitempty"`
	Answer  string                   `json:"answer,omitempty"`
	Results []dataflows.SearchResult `json:"results,omitempty"`
}

type NewsInput struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type NewsOutput struct {
	Status   string                  `json:"status"`
	Error    string                  `json:"error,omitempty"`
	Articles []dataflows.NewsArticle `json:"articles,omitempty"`
}

type ReadArticleInput struct {
	URL      string `json:"url"`
	MaxChars int    `json:"max_chars"`
}

type ReadArticleOutput struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	URL    string `json:"url,omitempty"`
	Text   string `json:"text,omitempty"`
}

// --- Delegation tool IO ---

type TaskInput struct {
	AgentName string `json:"agent_name"`
	Task      string `json:"task"`
}

type TaskOutput struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Agent  string `json:"agent,omitempty"`
	Result string `json:"result,omitempty"`
}

package consts

// Workflow node names
const (
	NodeDetermineType   = "determine_type"
	NodeCreatePlan      = "create_plan"
	NodeExecuteAnalysis = "execute_analysis"
)

// Sub-agent names
const (
	StockAnalyst     = "stock_analyst"
	PortfolioManager = "portfolio_manager"
	RiskAssessor     = "risk_assessor"
	MarketResearcher = "market_researcher"
	Supervisor       = "supervisor"
)

// Analysis types
const (
	AnalysisStock     = "stock_analysis"
	AnalysisPortfolio = "portfolio_analysis"
	AnalysisMarket    = "market_research"
	AnalysisRisk      = "risk_assessment"
	AnalysisGeneral   = "general"
)

// Todo statuses
const (
	TodoPending    = "pending"
	TodoInProgress = "in_progress"
	TodoCompleted  = "completed"
	TodoCancelled  = "cancelled"
)

// Todo priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Session statuses
const (
	SessionInitializing = "initializing"
	SessionPlanning     = "planning"
	SessionExecuting    = "executing"
	SessionDelegating   = "delegating"
	SessionSummarizing  = "summarizing"
	SessionCompleted    = "completed"
	SessionError        = "error"
)

// Sub-agent statuses
const (
	AgentIdle      = "idle"
	AgentWorking   = "working"
	AgentCompleted = "completed"
	AgentError     = "error"
)

// Tool result statuses. Agents are prompted to hard-stop on
// rate_limited and error payloads.
const (
	StatusOK          = "ok"
	StatusError       = "error"
	StatusRateLimited = "rate_limited"
)

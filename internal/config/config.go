package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectDir   string `json:"project_dir"`
	ResultsDir   string `json:"results_dir"`
	DataDir      string `json:"data_dir"`
	DataCacheDir string `json:"data_cache_dir"`
	DBPath       string `json:"db_path"`

	// LLM provider
	LLMProvider    string `json:"llm_provider"` // openai | deepseek
	OpenAIAPIKey   string `json:"openai_api_key"`
	OpenAIBaseURL  string `json:"openai_base_url"`
	DeepSeekAPIKey string `json:"deepseek_api_key"`

	// Web search
	TavilyAPIKey string `json:"tavily_api_key"`

	// Tracing
	TracingEnabled  bool   `json:"tracing_enabled"`
	TracingAPIKey   string `json:"tracing_api_key"`
	TracingProject  string `json:"tracing_project"`
	TracingEndpoint string `json:"tracing_endpoint"`

	// Alternate market data provider
	LongportAppKey      string `json:"longport_app_key"`
	LongportAppSecret   string `json:"longport_app_secret"`
	LongportAccessToken string `json:"longport_access_token"`

	// Market defaults
	DefaultMarket     string `json:"default_market"`
	DefaultCurrency   string `json:"default_currency"`
	MaxHistoricalDays int    `json:"max_historical_days"`

	// Agent limits
	MaxIterations    int `json:"max_iterations"`
	MaxExecutionSecs int `json:"max_execution_secs"`

	// Virtual file system limits
	MaxFiles    int `json:"max_files"`
	MaxFileSize int `json:"max_file_size"`

	// HTTP dev server
	HTTPAddr string `json:"http_addr"`

	// Eino devops debug server
	DebugServerEnabled bool `json:"debug_server_enabled"`
	DebugServerPort    int  `json:"debug_server_port"`

	CacheEnabled bool `json:"cache_enabled"`
	Debug        bool `json:"debug"`
}

// ModelSettings describes a model tier used by agents.
type ModelSettings struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// Status reports which optional integrations are configured.
type Status struct {
	OpenAIConfigured   bool `json:"openai_configured"`
	TavilyConfigured   bool `json:"tavily_configured"`
	TracingConfigured  bool `json:"tracing_configured"`
	TracingEnabled     bool `json:"tracing_enabled"`
	LongportConfigured bool `json:"longport_configured"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := &Config{
		ProjectDir:   currentDir,
		ResultsDir:   filepath.Join(currentDir, "results"),
		DataDir:      filepath.Join(currentDir, "data"),
		DataCacheDir: filepath.Join(currentDir, "data", "cache"),
		DBPath:       filepath.Join(currentDir, "data", "deepagent.db"),

		LLMProvider:   "openai",
		OpenAIBaseURL: "https://api.openai.com/v1",

		TracingProject:  "deepagent-financial-systems",
		TracingEndpoint: "https://api.smith.langchain.com",

		DefaultMarket:     "US",
		DefaultCurrency:   "USD",
		MaxHistoricalDays: 365,

		MaxIterations:    50,
		MaxExecutionSecs: 300,

		MaxFiles:    100,
		MaxFileSize: 1 << 20,

		HTTPAddr: ":8123",

		DebugServerEnabled: false,
		DebugServerPort:    52538,

		CacheEnabled: true,
		Debug:        false,
	}

	_ = godotenv.Load()
	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	setStr := func(dst *string, key string) {
		if val := os.Getenv(key); val != "" {
			*dst = val
		}
	}
	setBool := func(dst *bool, key string) {
		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				*dst = b
			}
		}
	}
	setInt := func(dst *int, key string) {
		if val := os.Getenv(key); val != "" {
			if v, err := strconv.Atoi(val); err == nil {
				*dst = v
			}
		}
	}

	setStr(&c.ProjectDir, "PROJECT_DIR")
	setStr(&c.ResultsDir, "RESULTS_DIR")
	setStr(&c.DataDir, "DATA_DIR")
	setStr(&c.DataCacheDir, "DATA_CACHE_DIR")
	setStr(&c.DBPath, "DEEPAGENT_DB_PATH")

	setStr(&c.LLMProvider, "LLM_PROVIDER")
	setStr(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	setStr(&c.OpenAIBaseURL, "OPENAI_BASE_URL")
	setStr(&c.DeepSeekAPIKey, "DEEPSEEK_API_KEY")

	setStr(&c.TavilyAPIKey, "TAVILY_API_KEY")

	setBool(&c.TracingEnabled, "LANGSMITH_TRACING")
	setStr(&c.TracingAPIKey, "LANGSMITH_API_KEY")
	setStr(&c.TracingProject, "LANGSMITH_PROJECT")
	setStr(&c.TracingEndpoint, "LANGSMITH_ENDPOINT")

	setStr(&c.LongportAppKey, "LONGPORT_APP_KEY")
	setStr(&c.LongportAppSecret, "LONGPORT_APP_SECRET")
	setStr(&c.LongportAccessToken, "LONGPORT_ACCESS_TOKEN")

	setStr(&c.DefaultMarket, "DEFAULT_MARKET")
	setStr(&c.DefaultCurrency, "DEFAULT_CURRENCY")
	setInt(&c.MaxHistoricalDays, "MAX_HISTORICAL_DAYS")

	setInt(&c.MaxIterations, "MAX_ITERATIONS")
	setInt(&c.MaxExecutionSecs, "MAX_EXECUTION_SECS")

	setStr(&c.HTTPAddr, "DEEPAGENT_HTTP_ADDR")

	setBool(&c.DebugServerEnabled, "EINO_DEBUG_ENABLED")
	setInt(&c.DebugServerPort, "EINO_DEBUG_PORT")

	setBool(&c.CacheEnabled, "CACHE_ENABLED")
	setBool(&c.Debug, "DEEPAGENT_DEBUG")
}

// ModelSettings returns the settings for a model tier. Unknown tiers fall
// back to the default tier.
func (c *Config) ModelSettings(tier string) ModelSettings {
	switch tier {
	case "reasoning":
		return ModelSettings{Model: "gpt-4o", Temperature: 0.0, MaxTokens: 8000}
	case "fast":
		return ModelSettings{Model: "gpt-3.5-turbo", Temperature: 0.2, MaxTokens: 2000}
	case "creative":
		return ModelSettings{Model: "gpt-4o-mini", Temperature: 0.7, MaxTokens: 4000}
	default:
		return ModelSettings{Model: "gpt-4o-mini", Temperature: 0.1, MaxTokens: 4000}
	}
}

// Status reports which integrations are available without failing.
func (c *Config) Status() Status {
	return Status{
		OpenAIConfigured:   c.OpenAIAPIKey != "" || (c.LLMProvider == "deepseek" && c.DeepSeekAPIKey != ""),
		TavilyConfigured:   c.TavilyAPIKey != "",
		TracingConfigured:  c.TracingAPIKey != "",
		TracingEnabled:     c.TracingEnabled && c.TracingAPIKey != "",
		LongportConfigured: c.LongportAppKey != "" && c.LongportAppSecret != "" && c.LongportAccessToken != "",
	}
}

// Validate checks that the configured LLM provider is usable.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case "openai", "":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required")
		}
	case "deepseek":
		if c.DeepSeekAPIKey == "" {
			return fmt.Errorf("DEEPSEEK_API_KEY is required when LLM_PROVIDER=deepseek")
		}
	default:
		return fmt.Errorf("unsupported LLM provider: %s", c.LLMProvider)
	}
	return nil
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ResultsDir, c.DataDir, c.DataCacheDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

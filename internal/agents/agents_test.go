package agents

import (
	"strings"
	"testing"

	"github.com/deepagent/deepagent/consts"
)

func TestLoadPromptAllPersonas(t *testing.T) {
	names := []string{
		consts.Supervisor,
		consts.StockAnalyst,
		consts.PortfolioManager,
		consts.RiskAssessor,
		consts.MarketResearcher,
	}

	for _, name := range names {
		prompt, err := LoadPrompt(name)
		if err != nil {
			t.Fatalf("LoadPrompt(%s): %v", name, err)
		}
		if !strings.Contains(prompt, "CRITICAL RATE LIMITING") {
			t.Errorf("prompt %s missing rate limiting instructions", name)
		}
		if !strings.Contains(prompt, `"rate_limited"`) {
			t.Errorf("prompt %s missing rate_limited contract", name)
		}
	}
}

func TestLoadPromptMissing(t *testing.T) {
	if _, err := LoadPrompt("nonexistent_persona"); err == nil {
		t.Fatal("expected error for missing prompt")
	}
}

func TestLoadPromptWithContext(t *testing.T) {
	prompt, err := LoadPromptWithContext(consts.Supervisor, map[string]string{
		"CurrentDate":  "2026-08-30",
		"AnalysisType": consts.AnalysisStock,
		"Query":        "analyze AAPL",
	})
	if err != nil {
		t.Fatalf("LoadPromptWithContext: %v", err)
	}

	for _, want := range []string{"2026-08-30", "stock_analysis", "analyze AAPL"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing substituted value %q", want)
		}
	}
	if strings.Contains(prompt, "{{.") {
		t.Error("prompt still contains unsubstituted placeholders")
	}
}

func TestModelTierFor(t *testing.T) {
	cases := map[string]string{
		consts.Supervisor:       "reasoning",
		consts.StockAnalyst:     "reasoning",
		consts.RiskAssessor:     "reasoning",
		consts.PortfolioManager: "default",
		consts.MarketResearcher: "default",
	}
	for name, want := range cases {
		if got := modelTierFor(name); got != want {
			t.Errorf("%s tier = %q, want %q", name, got, want)
		}
	}
}

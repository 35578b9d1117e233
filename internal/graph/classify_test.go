package graph

import (
	"testing"

	"github.com/deepagent/deepagent/consts"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		query string
		want  string
	}{
		{"Analyze AAPL stock and tell me if I should buy", consts.AnalysisStock},
		{"Review my portfolio allocation across tech holdings", consts.AnalysisPortfolio},
		{"What is the downside risk and VaR of TSLA?", consts.AnalysisRisk},
		{"How is the market doing today? Any sector trends?", consts.AnalysisMarket},
		{"Tell me something interesting", consts.AnalysisGeneral},
		{"Should I rebalance given current volatility?", consts.AnalysisPortfolio},
	}

	for _, tc := range cases {
		if got := Classify(tc.query); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.query, got, tc.want)
		}
	}
}

func TestPlanFor(t *testing.T) {
	types := []string{
		consts.AnalysisStock,
		consts.AnalysisPortfolio,
		consts.AnalysisRisk,
		consts.AnalysisMarket,
		consts.AnalysisGeneral,
	}

	for _, analysisType := range types {
		steps := PlanFor(analysisType)
		if len(steps) != 5 {
			t.Fatalf("PlanFor(%s) returned %d steps, want 5", analysisType, len(steps))
		}
		for i, step := range steps {
			wantPriority := consts.PriorityMedium
			if i < 2 {
				wantPriority = consts.PriorityHigh
			}
			if step.Priority != wantPriority {
				t.Errorf("PlanFor(%s)[%d].Priority = %q, want %q",
					analysisType, i, step.Priority, wantPriority)
			}
			if step.Content == "" {
				t.Errorf("PlanFor(%s)[%d] has empty content", analysisType, i)
			}
		}
	}
}

func TestEventCallbackNonBlocking(t *testing.T) {
	cb := &EventCallback{Out: make(chan Event, 1)}

	cb.push(Event{Type: "node_start", Node: "a"})
	cb.push(Event{Type: "node_start", Node: "b"}) // full channel, must not block

	got := <-cb.Out
	if got.Node != "a" {
		t.Errorf("first event node = %q, want a", got.Node)
	}
	select {
	case e := <-cb.Out:
		t.Errorf("unexpected second event: %+v", e)
	default:
	}
}

func TestKnownAnalysisType(t *testing.T) {
	for _, typ := range []string{
		consts.AnalysisStock, consts.AnalysisPortfolio, consts.AnalysisRisk,
		consts.AnalysisMarket, consts.AnalysisGeneral,
	} {
		if !KnownAnalysisType(typ) {
			t.Errorf("KnownAnalysisType(%q) = false, want true", typ)
		}
	}
	for _, typ := range []string{"", "stocks", "STOCK_ANALYSIS", "technical"} {
		if KnownAnalysisType(typ) {
			t.Errorf("KnownAnalysisType(%q) = true, want false", typ)
		}
	}
}

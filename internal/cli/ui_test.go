package cli

import (
	"strings"
	"testing"

	"github.com/deepagent/deepagent/internal/graph"
)

func TestRenderEvent(t *testing.T) {
	cases := []struct {
		name  string
		event graph.Event
		want  string // substring; empty means no output
	}{
		{"node start", graph.Event{Type: "node_start", Node: "create_plan"}, "create_plan"},
		{"node start without node", graph.Event{Type: "node_start"}, ""},
		{"node end", graph.Event{Type: "node_end", Node: "create_plan"}, ""},
		{"tool call", graph.Event{Type: "tool_call", ToolName: "get_stock_price", ToolArgs: `{"symbol":"AAPL"}`}, "get_stock_price"},
		{"tool result", graph.Event{Type: "tool_result", Content: "price is 210.5"}, "price is 210.5"},
		{"message chunk", graph.Event{Type: "message_chunk", Content: "hello"}, "hello"},
		{"error", graph.Event{Type: "error", Error: "model timed out"}, "model timed out"},
		{"unknown type", graph.Event{Type: "whatever"}, ""},
	}

	for _, tc := range cases {
		got := RenderEvent(tc.event)
		if tc.want == "" {
			if got != "" {
				t.Errorf("%s: RenderEvent = %q, want empty", tc.name, got)
			}
			continue
		}
		if !strings.Contains(got, tc.want) {
			t.Errorf("%s: RenderEvent = %q, want substring %q", tc.name, got, tc.want)
		}
	}
}

func TestRenderEventTruncatesLongToolArgs(t *testing.T) {
	long := strings.Repeat("x", 500)
	got := RenderEvent(graph.Event{Type: "tool_call", ToolName: "write_file", ToolArgs: long})
	if strings.Contains(got, long) {
		t.Error("long tool args were not truncated")
	}
}

func TestBannerContainsVersion(t *testing.T) {
	if !strings.Contains(Banner("1.2.3"), "1.2.3") {
		t.Error("banner does not contain the version")
	}
}

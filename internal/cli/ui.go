package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/deepagent/deepagent/internal/graph"
)

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Padding(0, 1)

	bannerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(1, 2)

	nodeStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3B82F6"))

	toolStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#8B5CF6"))

	okStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#10B981"))

	errStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#EF4444"))

	dimStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))
)

// Banner renders the startup banner.
func Banner(version string) string {
	title := titleStyle.Render("DeepAgent Financial Systems")
	sub := dimStyle.Render(fmt.Sprintf("AI research agents for financial analysis · %s", version))
	return bannerStyle.Render(title + "\n" + sub)
}

// RenderEvent formats one workflow event for terminal output. Empty output
// means the event carries nothing worth printing.
func RenderEvent(e graph.Event) string {
	switch e.Type {
	case "node_start":
		if e.Node == "" {
			return ""
		}
		return nodeStyle.Render("▶ " + e.Node)
	case "node_end":
		return ""
	case "tool_call":
		args := e.ToolArgs
		if len(args) > 120 {
			args = args[:120] + "…"
		}
		return toolStyle.Render(fmt.Sprintf("  ⚙ %s %s", e.ToolName, args))
	case "tool_result":
		content := strings.TrimSpace(e.Content)
		if len(content) > 160 {
			content = content[:160] + "…"
		}
		return dimStyle.Render("    ↳ " + content)
	case "message_chunk":
		return e.Content
	case "error":
		return errStyle.Render("✗ " + e.Error)
	default:
		return ""
	}
}

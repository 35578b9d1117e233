package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/deepagent/deepagent/consts"
)

const maxSummarizeInput = 24000

// generate runs a single-shot completion against the research model.
func generate(ctx context.Context, deps *Deps, system, user string) (string, error) {
	if deps.Model == nil {
		return "", fmt.Errorf("no research model configured")
	}

	msg, err := deps.Model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	})
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

// extractiveSummary keeps the first sentences of the content as a fallback
// when no model is available.
func extractiveSummary(content string, maxSentences int) string {
	var sentences []string
	for _, part := range strings.SplitAfter(content, ". ") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sentences = append(sentences, part)
		if len(sentences) >= maxSentences {
			break
		}
	}
	return strings.Join(sentences, " ")
}

// NewSummarizeTool condenses long content into key findings.
func NewSummarizeTool(deps *Deps) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "summarize_content",
			Desc: "Summarize long text into the key findings relevant to a focus topic",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"content": {
					Type:     "string",
					Desc:     "The text to summarize",
					Required: true,
				},
				"focus": {
					Type:     "string",
					Desc:     "What aspect to focus the summary on",
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input SummarizeInput) (*SummarizeOutput, error) {
			if err := deps.Session.Touch(); err != nil {
				return &SummarizeOutput{Status: consts.StatusError, Error: err.Error()}, nil
			}
			if strings.TrimSpace(input.Content) == "" {
				return &SummarizeOutput{Status: consts.StatusError, Error: "content is empty"}, nil
			}

			content := input.Content
			if len(content) > maxSummarizeInput {
				content = content[:maxSummarizeInput]
			}

			system := "You are a financial research assistant. Summarize the provided content into concise key findings. Use short bullet points."
			user := content
			if input.Focus != "" {
				user = fmt.Sprintf("Focus: %s\n\n%s", input.Focus, content)
			}

			summary, err := generate(ctx, deps, system, user)
			if err != nil {
				summary = extractiveSummary(content, 5)
				if summary == "" {
					return &SummarizeOutput{Status: consts.StatusError, Error: err.Error()}, nil
				}
			}
			return &SummarizeOutput{Status: consts.StatusOK, Summary: summary}, nil
		},
	)
}

// NewStrategicThinkingTool produces a structured reasoning pass on a topic.
func NewStrategicThinkingTool(deps *Deps) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "strategic_thinking",
			Desc: "Reason strategically about a research topic: implications, risks, opportunities and next steps",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"topic": {
					Type:     "string",
					Desc:     "The topic to reason about",
					Required: true,
				},
				"context": {
					Type:     "string",
					Desc:     "Findings gathered so far",
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input ThinkingInput) (*ThinkingOutput, error) {
			if err := deps.Session.Touch(); err != nil {
				return &ThinkingOutput{Status: consts.StatusError, Error: err.Error()}, nil
			}
			if strings.TrimSpace(input.Topic) == "" {
				return &ThinkingOutput{Status: consts.StatusError, Error: "topic is empty"}, nil
			}

			system := "You are a senior investment strategist. Analyze the topic under these headings: Implications, Risks, Opportunities, Recommended next steps. Be specific and concise."
			user := input.Topic
			if input.Context != "" {
				user = fmt.Sprintf("%s\n\nContext:\n%s", input.Topic, input.Context)
			}

			analysis, err := generate(ctx, deps, system, user)
			if err != nil {
				return &ThinkingOutput{Status: statusFromErr(err), Error: err.Error()}, nil
			}
			return &ThinkingOutput{Status: consts.StatusOK, Analysis: analysis}, nil
		},
	)
}

// NewCompileReportTool assembles workspace files and plan progress into the
// final markdown report and stores it on the session.
func NewCompileReportTool(deps *Deps) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "compile_research_report",
			Desc: "Compile all workspace files and completed tasks into the final research report",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"title": {
					Type:     "string",
					Desc:     "Title for the report",
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input CompileReportInput) (*CompileReportOutput, error) {
			if err := deps.Session.Touch(); err != nil {
				return &CompileReportOutput{Status: consts.StatusError, Error: err.Error()}, nil
			}

			title := input.Title
			if title == "" {
				title = "Research Report"
			}

			var b strings.Builder
			fmt.Fprintf(&b, "# %s\n\n", title)
			fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().Format(time.RFC3339))
			fmt.Fprintf(&b, "Query: %s\n\n", deps.Session.Query)

			todos := deps.Session.Todos()
			if len(todos) > 0 {
				b.WriteString("## Task Progress\n\n")
				for _, todo := range todos {
					mark := " "
					if todo.Status == consts.TodoCompleted {
						mark = "x"
					}
					fmt.Fprintf(&b, "- [%s] %s (%s)\n", mark, todo.Content, todo.Status)
				}
				b.WriteString("\n")
			}

			for _, file := range deps.Session.ListFiles() {
				content, err := deps.Session.ReadFile(file.Path)
				if err != nil {
					continue
				}
				fmt.Fprintf(&b, "## %s\n\n%s\n\n", file.Path, content)
			}

			report := b.String()
			deps.Session.SetFinalReport(report)
			// Keep a workspace copy so later tool calls can read it back.
			if err := deps.Session.WriteFile("final_report.md", report); err != nil {
				return &CompileReportOutput{Status: consts.StatusError, Error: err.Error(), Report: report}, nil
			}
			return &CompileReportOutput{
				Status: consts.StatusOK,
				Report: report,
			}, nil
		},
	)
}

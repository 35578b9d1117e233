package tools

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/deepagent/deepagent/consts"
	"github.com/deepagent/deepagent/internal/state"
)

// ParseTodoLine extracts a priority marker from a plan line. Markers are
// [URGENT], [HIGH] and [LOW]; unmarked lines default to medium.
func ParseTodoLine(line string) (content, priority string) {
	content = strings.TrimSpace(line)
	content = strings.TrimLeft(content, "-*0123456789. ")
	priority = consts.PriorityMedium

	for marker, p := range map[string]string{
		"[URGENT]": consts.PriorityUrgent,
		"[HIGH]":   consts.PriorityHigh,
		"[LOW]":    consts.PriorityLow,
	} {
		if idx := strings.Index(strings.ToUpper(content), marker); idx >= 0 {
			priority = p
			content = strings.TrimSpace(content[:idx] + content[idx+len(marker):])
			break
		}
	}
	return content, priority
}

// NewWriteTodosTool replaces the session plan from a newline-separated list.
func NewWriteTodosTool(deps *Deps) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "write_todos",
			Desc: "Replace the task plan. Provide one task per line; mark priority with [URGENT], [HIGH] or [LOW], unmarked tasks are medium priority",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"todos": {
					Type:     "string",
					Desc:     "Newline-separated task list",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input WriteTodosInput) (*WriteTodosOutput, error) {
			if err := deps.Session.Touch(); err != nil {
				return &WriteTodosOutput{Status: consts.StatusError, Error: err.Error()}, nil
			}

			var items []*state.TodoItem
			deps.Session.ReplaceTodos(nil)
			for _, line := range strings.Split(input.Todos, "\n") {
				content, priority := ParseTodoLine(line)
				if content == "" {
					continue
				}
				items = append(items, deps.Session.AddTodo(content, priority, "", nil))
			}

			if len(items) == 0 {
				return &WriteTodosOutput{
					Status: consts.StatusError,
					Error:  "no tasks found in input",
				}, nil
			}
			return &WriteTodosOutput{Status: consts.StatusOK, Created: len(items), Items: items}, nil
		},
	)
}

// NewUpdateTodoTool transitions one todo's status.
func NewUpdateTodoTool(deps *Deps) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "update_todo",
			Desc: "Update the status of one task (pending, in_progress, completed, cancelled)",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"id": {
					Type:     "string",
					Desc:     "The task id, e.g. todo_1",
					Required: true,
				},
				"status": {
					Type:     "string",
					Desc:     "New status: pending, in_progress, completed or cancelled",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input UpdateTodoInput) (*UpdateTodoOutput, error) {
			if err := deps.Session.Touch(); err != nil {
				return &UpdateTodoOutput{Status: consts.StatusError, Error: err.Error()}, nil
			}

			switch input.Status {
			case consts.TodoPending, consts.TodoInProgress, consts.TodoCompleted, consts.TodoCancelled:
			default:
				return &UpdateTodoOutput{
					Status: consts.StatusError,
					Error:  "invalid status " + input.Status,
				}, nil
			}

			if err := deps.Session.UpdateTodoStatus(input.ID, input.Status); err != nil {
				return &UpdateTodoOutput{Status: consts.StatusError, Error: err.Error()}, nil
			}
			return &UpdateTodoOutput{Status: consts.StatusOK, ID: input.ID, New: input.Status}, nil
		},
	)
}

// NewTodoStatusTool reports the current plan state.
func NewTodoStatusTool(deps *Deps) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_todo_status",
			Desc: "Get the current task plan with per-task status and a progress summary",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		func(ctx context.Context, input TodoStatusInput) (*TodoStatusOutput, error) {
			return &TodoStatusOutput{
				Status:  consts.StatusOK,
				Summary: deps.Session.Summary(),
				Items:   deps.Session.Todos(),
			}, nil
		},
	)
}

package tools

import (
	"context"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/deepagent/deepagent/consts"
)

// The virtual file system tools operate on the session's in-memory files, so
// agents can pass notes between each other without touching disk.

func NewLsTool(deps *Deps) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name:        "ls",
			Desc:        "List all files in the research workspace",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		func(ctx context.Context, input LsInput) (*LsOutput, error) {
			return &LsOutput{Status: consts.StatusOK, Files: deps.Session.ListFiles()}, nil
		},
	)
}

func NewReadFileTool(deps *Deps) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "read_file",
			Desc: "Read a file from the research workspace",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"path": {
					Type:     "string",
					Desc:     "The file path to read",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input ReadFileInput) (*ReadFileOutput, error) {
			content, err := deps.Session.ReadFile(input.Path)
			if err != nil {
				return &ReadFileOutput{Status: consts.StatusError, Error: err.Error()}, nil
			}
			return &ReadFileOutput{Status: consts.StatusOK, Path: input.Path, Content: content}, nil
		},
	)
}

func NewWriteFileTool(deps *Deps) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "write_file",
			Desc: "Create or overwrite a file in the research workspace",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"path": {
					Type:     "string",
					Desc:     "The file path to write",
					Required: true,
				},
				"content": {
					Type:     "string",
					Desc:     "The full file content",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input WriteFileInput) (*WriteFileOutput, error) {
			if err := deps.Session.WriteFile(input.Path, input.Content); err != nil {
				return &WriteFileOutput{Status: consts.StatusError, Error: err.Error()}, nil
			}
			return &WriteFileOutput{
				Status: consts.StatusOK,
				Path:   input.Path,
				Size:   len(input.Content),
			}, nil
		},
	)
}

func NewEditFileTool(deps *Deps) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "edit_file",
			Desc: "Replace text in an existing workspace file",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"path": {
					Type:     "string",
					Desc:     "The file path to edit",
					Required: true,
				},
				"old_text": {
					Type:     "string",
					Desc:     "The exact text to replace",
					Required: true,
				},
				"new_text": {
					Type:     "string",
					Desc:     "The replacement text",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input EditFileInput) (*EditFileOutput, error) {
			if err := deps.Session.EditFile(input.Path, input.OldText, input.NewText); err != nil {
				return &EditFileOutput{Status: consts.StatusError, Error: err.Error()}, nil
			}
			return &EditFileOutput{Status: consts.StatusOK, Path: input.Path}, nil
		},
	)
}

package tools

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/deepagent/deepagent/consts"
)

// NewWebSearchTool searches the web through Tavily. It is only offered to
// agents when a Tavily key is configured.
func NewWebSearchTool(deps *Deps) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "web_search",
			Desc: "Search the web for current information and news",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "The search query",
					Required: true,
				},
				"max_results": {
					Type:     "integer",
					Desc:     "Maximum number of results (default: 5)",
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input WebSearchInput) (*WebSearchOutput, error) {
			if err := deps.Session.Touch(); err != nil {
				return &WebSearchOutput{Status: consts.StatusError, Error: err.Error()}, nil
			}
			if strings.TrimSpace(input.Query) == "" {
				return &WebSearchOutput{Status: consts.StatusError, Error: "query is empty"}, nil
			}

			answer, results, err := deps.Search.Search(ctx, input.Query, input.MaxResults)
			if err != nil {
				return &WebSearchOutput{Status: statusFromErr(err), Error: err.Error()}, nil
			}
			return &WebSearchOutput{Status: consts.StatusOK, Answer: answer, Results: results}, nil
		},
	)
}

// NewNewsTool fetches recent headlines for a query.
func NewNewsTool(deps *Deps) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_news",
			Desc: "Get recent news headlines for a company, ticker or topic",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "Company name, ticker or topic",
					Required: true,
				},
				"limit": {
					Type:     "integer",
					Desc:     "Maximum number of headlines (default: 10)",
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input NewsInput) (*NewsOutput, error) {
			if err := deps.Session.Touch(); err != nil {
				return &NewsOutput{Status: consts.StatusError, Error: err.Error()}, nil
			}

			articles, err := deps.News.Headlines(ctx, input.Query, input.Limit)
			if err != nil {
				return &NewsOutput{Status: statusFromErr(err), Error: err.Error()}, nil
			}
			return &NewsOutput{Status: consts.StatusOK, Articles: articles}, nil
		},
	)
}

const defaultArticleChars = 8000

// NewReadArticleTool extracts the readable body of a news article so it can
// be summarized or quoted in the report.
func NewReadArticleTool(deps *Deps) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "read_article",
			Desc: "Fetch a news article URL and extract its readable text",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"url": {
					Type:     "string",
					Desc:     "The article URL, usually taken from get_news or web_search results",
					Required: true,
				},
				"max_chars": {
					Type:     "integer",
					Desc:     "Truncate the extracted text to this many characters (default: 8000)",
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input ReadArticleInput) (*ReadArticleOutput, error) {
			if err := deps.Session.Touch(); err != nil {
				return &ReadArticleOutput{Status: consts.StatusError, Error: err.Error()}, nil
			}
			if strings.TrimSpace(input.URL) == "" {
				return &ReadArticleOutput{Status: consts.StatusError, Error: "url is required"}, nil
			}

			text, err := deps.News.ArticleText(ctx, input.URL)
			if err != nil {
				return &ReadArticleOutput{Status: statusFromErr(err), Error: err.Error(), URL: input.URL}, nil
			}

			limit := input.MaxChars
			if limit <= 0 {
				limit = defaultArticleChars
			}
			if len(text) > limit {
				text = text[:limit]
			}
			return &ReadArticleOutput{Status: consts.StatusOK, URL: input.URL, Text: text}, nil
		},
	)
}

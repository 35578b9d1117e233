package dataflows

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// TavilyClient wraps the Tavily search API.
type TavilyClient struct {
	client *resty.Client
	apiKey string
}

type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

func NewTavilyClient(apiKey string) *TavilyClient {
	client := resty.New()
	client.SetBaseURL("https://api.tavily.com")
	client.SetTimeout(30 * time.Second)
	client.SetHeader("Content-Type", "application/json")

	return &TavilyClient{client: client, apiKey: apiKey}
}

// Enabled reports whether an API key is configured.
func (tc *TavilyClient) Enabled() bool {
	return tc.apiKey != ""
}

// SetBaseURL overrides the API endpoint, used by tests.
func (tc *TavilyClient) SetBaseURL(url string) {
	tc.client.SetBaseURL(url)
}

// Search runs a web search and returns ranked results plus Tavily's direct
// answer when one is available.
func (tc *TavilyClient) Search(ctx context.Context, query string, maxResults int) (string, []SearchResult, error) {
	if !tc.Enabled() {
		return "", nil, fmt.Errorf("tavily search is not configured (set TAVILY_API_KEY)")
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	var parsed tavilyResponse
	resp, err := tc.client.R().
		SetContext(ctx).
		SetBody(&tavilyRequest{
			APIKey:        tc.apiKey,
			Query:         query,
			MaxResults:    maxResults,
			SearchDepth:   "basic",
			IncludeAnswer: true,
		}).
		SetResult(&parsed).
		Post("/search")
	if err != nil {
		return "", nil, fmt.Errorf("tavily search: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", nil, fmt.Errorf("tavily search: HTTP %d", resp.StatusCode())
	}

	results := make([]SearchResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
		})
	}
	return parsed.Answer, results, nil
}

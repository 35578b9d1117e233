package dataflows

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// NewsClient fetches headlines from Google News RSS and can pull article body
// text for summarization.
type NewsClient struct {
	client *resty.Client
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
	Source  string `xml:"source"`
}

func NewNewsClient() *NewsClient {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; DeepAgent/1.0)")

	return &NewsClient{client: client}
}

// Headlines returns recent news items matching the query.
func (nc *NewsClient) Headlines(ctx context.Context, query string, limit int) ([]NewsArticle, error) {
	if limit <= 0 {
		limit = 10
	}

	feedURL := fmt.Sprintf(
		"https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en",
		url.QueryEscape(query),
	)

	resp, err := nc.client.R().SetContext(ctx).Get(feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch news feed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch news feed: HTTP %d", resp.StatusCode())
	}

	var feed rssFeed
	if err := xml.Unmarshal(resp.Body(), &feed); err != nil {
		return nil, fmt.Errorf("parse news feed: %w", err)
	}

	articles := make([]NewsArticle, 0, limit)
	for _, item := range feed.Channel.Items {
		if len(articles) >= limit {
			break
		}

		published, _ := time.Parse(time.RFC1123, item.PubDate)
		articles = append(articles, NewsArticle{
			Title:       strings.TrimSpace(item.Title),
			URL:         item.Link,
			Source:      strings.TrimSpace(item.Source),
			PublishedAt: published,
		})
	}
	return articles, nil
}

// ArticleText fetches a page and extracts readable paragraph text.
func (nc *NewsClient) ArticleText(ctx context.Context, articleURL string) (string, error) {
	resp, err := nc.client.R().SetContext(ctx).Get(articleURL)
	if err != nil {
		return "", fmt.Errorf("fetch article: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("fetch article: HTTP %d", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(resp.Body())))
	if err != nil {
		return "", fmt.Errorf("parse article: %w", err)
	}

	doc.Find("script, style, nav, header, footer, aside").Remove()

	var parts []string
	doc.Find("article p, main p, p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if len(text) > 40 {
			parts = append(parts, text)
		}
		return len(parts) < 30
	})

	if len(parts) == 0 {
		return "", fmt.Errorf("no readable text found at %s", articleURL)
	}
	return strings.Join(parts, "\n\n"), nil
}

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mindsukoon.app/companion/common/logger"
)

const (
	DefaultTavilyURL     = "https://api.tavily.com"
	DefaultTavilyTimeout = 20 * time.Second
)

// TavilyClient searches with the Tavily API using advanced depth and the
// provider's synthesized answer.
type TavilyClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewTavilyClient(apiKey, baseURL string, timeout time.Duration) *TavilyClient {
	if baseURL == "" {
		baseURL = DefaultTavilyURL
	}
	if timeout == 0 {
		timeout = DefaultTavilyTimeout
	}
	return &TavilyClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type tavilyRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	MaxResults        int    `json:"max_results"`
	SearchDepth       string `json:"search_depth"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type tavilyResponse struct {
	Answer  string         `json:"answer"`
	Results []tavilyResult `json:"results"`
}

type tavilyResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Search returns the summary item (when present) followed by up to maxResults
// web results. Errors are logged and produce no results.
func (c *TavilyClient) Search(ctx context.Context, query string, maxResults int) []Result {
	maxResults = ClampMaxResults(maxResults)

	results, err := c.search(ctx, query, maxResults)
	if err != nil {
		slog.WarnContext(ctx, "tavily search failed", "query", logger.Truncate(query, 50), "error", err)
		return nil
	}

	slog.DebugContext(ctx, "tavily search completed",
		"query", logger.Truncate(query, 50),
		"results", len(results))
	return results
}

func (c *TavilyClient) search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	payload, err := json.Marshal(tavilyRequest{
		APIKey:        c.apiKey,
		Query:         query,
		MaxResults:    maxResults,
		SearchDepth:   "advanced",
		IncludeAnswer: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, logger.Truncate(string(body), 200))
	}

	var tr tavilyResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	results := make([]Result, 0, len(tr.Results)+1)
	if tr.Answer != "" {
		results = append(results, Result{
			Content: "Web Search Summary: " + tr.Answer,
			Source:  SummarySource,
			Type:    "web_search_summary",
		})
	}
	for i, r := range tr.Results {
		if i == maxResults {
			break
		}
		results = append(results, Result{
			Content: fmt.Sprintf("Title: %s\nContent: %s", orNA(r.Title), orNA(r.Content)),
			Source:  r.URL,
			Type:    "web_search_result",
			Title:   r.Title,
		})
	}
	return results, nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

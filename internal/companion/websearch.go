package companion

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"mindsukoon.app/companion/common/llm"
	"mindsukoon.app/companion/common/logger"
	"mindsukoon.app/companion/internal/search"
)

const WebSearchToolName = "search_mental_health_web"

const (
	ToolUnavailableMessage = "Web search tool is not available. Please provide a response based on your existing knowledge."
	NoResultsMessage       = "No recent information found. Please provide a response based on your existing knowledge."
)

// WebSearchParams are the arguments of the web search tool.
type WebSearchParams struct {
	Query      string `json:"query" jsonschema:"required,description=The search query for mental health information. Should be specific and include relevant mental health keywords."`
	MaxResults *int   `json:"max_results,omitempty" jsonschema:"description=Maximum number of search results to return (default: 3),default=3"`
}

// WebSearchTool lets the model look up recent mental-health information.
// With a nil searcher every call reports the tool as unavailable.
type WebSearchTool struct {
	searcher search.Searcher
	def      llm.Tool
}

func NewWebSearchTool(searcher search.Searcher) *WebSearchTool {
	return &WebSearchTool{
		searcher: searcher,
		def: llm.Tool{
			Name:        WebSearchToolName,
			Description: "Search the web for recent mental health information, latest research, current news, or real-time data about mental health topics. Use this when the user asks about recent developments, latest studies, current trends, or needs up-to-date mental health information that may not be in your knowledge base.",
			Parameters:  llm.GenerateSchemaFrom(WebSearchParams{}),
		},
	}
}

func (t *WebSearchTool) Definition() llm.Tool {
	return t.def
}

func (t *WebSearchTool) Execute(ctx context.Context, arguments string) (string, error) {
	args, err := llm.ParseToolArguments[webSearchArgs](arguments)
	if err != nil {
		return "", err
	}

	if t.searcher == nil {
		return ToolUnavailableMessage, nil
	}

	query := args.query()
	if query == "" {
		slog.WarnContext(ctx, "web search requested without a query")
		return NoResultsMessage, nil
	}
	maxResults := search.ClampMaxResults(args.maxResults())

	slog.InfoContext(ctx, "executing web search",
		"query", logger.Truncate(query, 50),
		"max_results", maxResults)

	return FormatSearchResults(t.safeSearch(ctx, query, maxResults)), nil
}

// webSearchArgs decodes WebSearchParams loosely: models sometimes send
// max_results as a string or float, or omit fields entirely.
type webSearchArgs struct {
	Query      any `json:"query"`
	MaxResults any `json:"max_results"`
}

func (a webSearchArgs) query() string {
	q, _ := a.Query.(string)
	return strings.TrimSpace(q)
}

// maxResults returns the requested count, or search.DefaultMaxResults when
// the value is missing or not a whole number.
func (a webSearchArgs) maxResults() int {
	switch v := a.MaxResults.(type) {
	case float64:
		if v == math.Trunc(v) && math.Abs(v) <= math.MaxInt32 {
			return int(v)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f == math.Trunc(f) && math.Abs(f) <= math.MaxInt32 {
			return int(f)
		}
	}
	return search.DefaultMaxResults
}

// safeSearch treats a panicking searcher as one that found nothing.
func (t *WebSearchTool) safeSearch(ctx context.Context, query string, maxResults int) (results []search.Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "web search panicked", "panic", r)
			results = nil
		}
	}()
	return t.searcher.Search(ctx, query, maxResults)
}

// FormatSearchResults renders results as numbered blocks for the model.
func FormatSearchResults(results []search.Result) string {
	if len(results) == 0 {
		return NoResultsMessage
	}

	var b strings.Builder
	b.WriteString("WEB SEARCH RESULTS:\n\n")
	for i, r := range results {
		source := r.Source
		if source == "" {
			source = "Unknown"
		}
		fmt.Fprintf(&b, "Result %d:\nContent: %s\nSource: %s\n\n", i+1, r.Content, source)
	}
	b.WriteString("\nPlease analyze these search results and provide a helpful, empathetic response to the user's question, incorporating relevant information from the search results.")
	return b.String()
}

// Package search runs live web searches for recent mental-health information.
package search

import "context"

const (
	DefaultMaxResults = 3
	MaxResultsLimit   = 10

	// SummarySource tags the provider's synthesized answer item.
	SummarySource = "tavily_ai_answer"
)

// Result is one search item. Content is ready to show a model.
type Result struct {
	Content string `json:"content"`
	Source  string `json:"source"`
	Type    string `json:"type"`
	Title   string `json:"title,omitempty"`
}

// Searcher returns results for query. Implementations never fail: provider
// errors yield an empty slice.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) []Result
}

// ClampMaxResults bounds a requested result count, defaulting non-positive values.
func ClampMaxResults(n int) int {
	switch {
	case n <= 0:
		return DefaultMaxResults
	case n > MaxResultsLimit:
		return MaxResultsLimit
	default:
		return n
	}
}

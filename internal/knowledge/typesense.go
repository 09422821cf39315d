package knowledge

import (
	"context"
	"log/slog"
	"strings"

	"mindsukoon.app/companion/common/typesense"
)

// Searcher is the read side of the vector store client.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]typesense.Hit, error)
}

// TypesenseRetriever retrieves snippets from a Typesense collection.
type TypesenseRetriever struct {
	store Searcher
}

func NewTypesenseRetriever(store Searcher) *TypesenseRetriever {
	return &TypesenseRetriever{store: store}
}

func (r *TypesenseRetriever) Retrieve(ctx context.Context, query string, n int) []Snippet {
	if n <= 0 {
		n = DefaultResults
	}
	if strings.TrimSpace(query) == "" {
		return nil
	}

	hits, err := r.store.Search(ctx, query, n)
	if err != nil {
		slog.WarnContext(ctx, "knowledge retrieval failed, continuing without context", "error", err)
		return nil
	}

	out := make([]Snippet, 0, min(len(hits), n))
	for _, h := range hits {
		if len(out) == n {
			break
		}
		if strings.TrimSpace(h.Content) == "" {
			continue
		}
		out = append(out, Snippet{
			Content:  h.Content,
			Metadata: map[string]string{"source": h.Source, "type": h.Type, "id": h.ID},
		})
	}
	return out
}

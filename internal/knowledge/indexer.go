package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mindsukoon.app/companion/common/typesense"
)

// Store is the write side of the vector store client.
type Store interface {
	EnsureCollection(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
	Upsert(ctx context.Context, docs []typesense.Document) error
}

// Indexer loads the corpus and upserts it into the vector store.
type Indexer struct {
	store  Store
	loader *Loader
}

func NewIndexer(store Store, loader *Loader) *Indexer {
	return &Indexer{store: store, loader: loader}
}

type IndexResult struct {
	Indexed  int
	Existing int64
	Skipped  bool
}

// Index fills the collection. A collection that already holds documents is
// left alone unless force is set.
func (i *Indexer) Index(ctx context.Context, force bool) (IndexResult, error) {
	start := time.Now()

	if err := i.store.EnsureCollection(ctx); err != nil {
		return IndexResult{}, fmt.Errorf("ensure collection: %w", err)
	}

	existing, err := i.store.Count(ctx)
	if err != nil && !errors.Is(err, typesense.ErrNotFound) {
		return IndexResult{}, fmt.Errorf("count documents: %w", err)
	}
	if existing > 0 && !force {
		slog.InfoContext(ctx, "knowledge collection already populated, skipping", "documents", existing)
		return IndexResult{Existing: existing, Skipped: true}, nil
	}

	docs, err := i.loader.Load(ctx)
	if err != nil {
		return IndexResult{}, err
	}

	batch := make([]typesense.Document, len(docs))
	for n, d := range docs {
		batch[n] = typesense.Document{ID: d.ID, Content: d.Content, Source: d.Source, Type: d.Type}
	}
	if err := i.store.Upsert(ctx, batch); err != nil {
		return IndexResult{}, fmt.Errorf("upsert documents: %w", err)
	}

	slog.InfoContext(ctx, "knowledge indexed",
		"documents", len(batch),
		"duration_ms", time.Since(start).Milliseconds())
	return IndexResult{Indexed: len(batch), Existing: existing}, nil
}

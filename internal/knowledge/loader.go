package knowledge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sourcegraph/conc/pool"
)

// DocumentSource produces corpus documents from one origin.
type DocumentSource interface {
	Name() string
	Load(ctx context.Context) ([]Document, error)
}

// Source pairs a DocumentSource with the prefix used for its document IDs.
type Source struct {
	Prefix string
	Source DocumentSource
}

// Loader gathers documents from every source concurrently and assigns stable
// IDs ("<prefix>_<n>"). When no source yields anything it returns the seed
// corpus with "seed_" IDs.
type Loader struct {
	sources []Source
}

func NewLoader(sources ...Source) *Loader {
	return &Loader{sources: sources}
}

type sourceResult struct {
	index int
	docs  []Document
}

func (l *Loader) Load(ctx context.Context) ([]Document, error) {
	p := pool.NewWithResults[sourceResult]().WithContext(ctx)
	for i, s := range l.sources {
		p.Go(func(ctx context.Context) (sourceResult, error) {
			docs, err := s.Source.Load(ctx)
			if err != nil {
				slog.WarnContext(ctx, "knowledge source failed", "source", s.Source.Name(), "error", err)
			}
			slog.InfoContext(ctx, "knowledge source loaded", "source", s.Source.Name(), "count", len(docs))
			return sourceResult{index: i, docs: docs}, nil
		})
	}

	results, err := p.Wait()
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}

	bySource := make([][]Document, len(l.sources))
	for _, r := range results {
		bySource[r.index] = r.docs
	}

	var out []Document
	for i, docs := range bySource {
		for n, d := range docs {
			d.ID = fmt.Sprintf("%s_%d", l.sources[i].Prefix, n)
			out = append(out, d)
		}
	}
	if len(out) > 0 {
		return out, nil
	}

	slog.InfoContext(ctx, "no online knowledge available, using seed corpus")
	seed, err := SeedDocuments()
	if err != nil {
		return nil, err
	}
	for n := range seed {
		seed[n].ID = fmt.Sprintf("seed_%d", n)
	}
	return seed, nil
}

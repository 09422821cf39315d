package typesense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/typesense/typesense-go/v4/typesense"
	"github.com/typesense/typesense-go/v4/typesense/api"
	"github.com/typesense/typesense-go/v4/typesense/api/pointer"
)

var ErrNotFound = errors.New("collection not found")

type Client interface {
	// Setup operations
	EnsureCollection(ctx context.Context) error
	Count(ctx context.Context) (int64, error)

	// Write operations (for ingestion)
	Upsert(ctx context.Context, docs []Document) error

	// Read operations (for retriever)
	Search(ctx context.Context, query string, limit int) ([]Hit, error)
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("typesense URL is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("typesense API key is required")
	}
	if c.Collection == "" {
		return fmt.Errorf("typesense collection is required")
	}
	return nil
}

type client struct {
	ts  *typesense.Client
	cfg Config
}

func New(cfg Config) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("typesense config: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	ts := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(timeout),
	)

	return &client{ts: ts, cfg: cfg}, nil
}

func (c *client) schema() *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: c.cfg.Collection,
		Fields: []api.Field{
			{Name: "content", Type: "string"},
			{Name: "source", Type: "string", Facet: pointer.True()},
			{Name: "type", Type: "string", Facet: pointer.True()},
		},
	}
}

func (c *client) EnsureCollection(ctx context.Context) error {
	_, err := c.ts.Collection(c.cfg.Collection).Retrieve(ctx)
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("retrieve collection: %w", err)
	}

	start := time.Now()
	if _, err := c.ts.Collections().Create(ctx, c.schema()); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	slog.InfoContext(ctx, "typesense collection created",
		"collection", c.cfg.Collection,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (c *client) Count(ctx context.Context) (int64, error) {
	resp, err := c.ts.Collection(c.cfg.Collection).Retrieve(ctx)
	if err != nil {
		if isNotFound(err) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("retrieve collection: %w", err)
	}
	if resp.NumDocuments == nil {
		return 0, nil
	}
	return *resp.NumDocuments, nil
}

func (c *client) Upsert(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	start := time.Now()
	batch := make([]interface{}, len(docs))
	for i, d := range docs {
		batch[i] = d
	}

	params := &api.ImportDocumentsParams{
		Action:    pointer.Any(api.Upsert),
		BatchSize: pointer.Int(40),
	}
	results, err := c.ts.Collection(c.cfg.Collection).Documents().Import(ctx, batch, params)
	if err != nil {
		return fmt.Errorf("import documents: %w", err)
	}

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
			slog.WarnContext(ctx, "typesense document rejected", "error", r.Error)
		}
	}
	if failed > 0 {
		return fmt.Errorf("import documents: %d of %d rejected", failed, len(docs))
	}

	slog.InfoContext(ctx, "typesense documents upserted",
		"collection", c.cfg.Collection,
		"count", len(docs),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (c *client) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	params := &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("content"),
		PerPage: pointer.Int(limit),
	}

	res, err := c.ts.Collection(c.cfg.Collection).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", c.cfg.Collection, err)
	}
	if res.Hits == nil {
		return nil, nil
	}

	hits := make([]Hit, 0, len(*res.Hits))
	for _, h := range *res.Hits {
		if h.Document == nil {
			continue
		}
		doc := *h.Document
		hit := Hit{Document: Document{
			ID:      stringField(doc, "id"),
			Content: stringField(doc, "content"),
			Source:  stringField(doc, "source"),
			Type:    stringField(doc, "type"),
		}}
		if h.TextMatch != nil {
			hit.TextMatch = *h.TextMatch
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func stringField(doc map[string]interface{}, key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}

func isNotFound(err error) bool {
	var httpErr *typesense.HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound
}

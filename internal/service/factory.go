package service

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"mindsukoon.app/companion/common/llm"
	"mindsukoon.app/companion/common/typesense"
	"mindsukoon.app/companion/core/config"
	"mindsukoon.app/companion/internal/companion"
	"mindsukoon.app/companion/internal/knowledge"
	"mindsukoon.app/companion/internal/search"
)

// Components are the shared collaborators every session's assistant uses.
type Components struct {
	LLM       llm.AgentClient
	Retriever knowledge.Retriever
	Searcher  search.Searcher
	Observer  companion.RiskObserver
	Companion config.CompanionConfig
}

// NewAssistantFactory builds one orchestrator and history per session on top
// of the shared components.
func NewAssistantFactory(c Components) AssistantFactory {
	return func(sessionID string) *companion.Assistant {
		tools := companion.NewToolRegistry(companion.NewWebSearchTool(c.Searcher))
		o := companion.NewOrchestrator(c.LLM, tools, companion.DefaultOrchestratorConfig())
		return companion.NewAssistant(sessionID, c.Retriever, o, c.Observer, companion.AssistantConfig{
			ToolsEnabled:     c.Companion.ToolsEnabled,
			KnowledgeResults: c.Companion.KnowledgeResults,
		})
	}
}

// NewTypesenseClient returns nil when Typesense is not configured.
func NewTypesenseClient(cfg config.KnowledgeConfig) (typesense.Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	client, err := typesense.New(typesense.Config{
		URL:        cfg.TypesenseURL,
		APIKey:     cfg.TypesenseAPIKey,
		Collection: cfg.Collection,
	})
	if err != nil {
		return nil, fmt.Errorf("creating typesense client: %w", err)
	}
	return client, nil
}

// NewRetriever searches Typesense when a client is given and falls back to
// the embedded seed corpus otherwise.
func NewRetriever(client typesense.Client) (knowledge.Retriever, error) {
	if client != nil {
		return knowledge.NewTypesenseRetriever(client), nil
	}
	r, err := knowledge.NewSeedRetriever()
	if err != nil {
		return nil, fmt.Errorf("loading seed corpus: %w", err)
	}
	return r, nil
}

// NewSearcher returns nil without a Tavily key. A non-nil rdb puts a cache in
// front of Tavily.
func NewSearcher(cfg config.SearchConfig, rdb redis.Cmdable) search.Searcher {
	if !cfg.Enabled() {
		return nil
	}
	tavily := search.NewTavilyClient(cfg.TavilyAPIKey, cfg.TavilyURL, cfg.Timeout)
	if rdb == nil || cfg.CacheTTL <= 0 {
		return tavily
	}
	return search.NewCachedSearcher(tavily, search.NewRedisCache(rdb), cfg.CacheTTL)
}

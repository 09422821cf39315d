package service_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"mindsukoon.app/companion/core/config"
	"mindsukoon.app/companion/internal/knowledge"
	"mindsukoon.app/companion/internal/search"
	"mindsukoon.app/companion/internal/service"
)

var _ = Describe("factory", func() {
	It("leaves the searcher unset without a Tavily key", func() {
		Expect(service.NewSearcher(config.SearchConfig{}, nil)).To(BeNil())
	})

	It("uses Tavily directly without a cache", func() {
		s := service.NewSearcher(config.SearchConfig{TavilyAPIKey: "k", TavilyURL: "http://localhost", Timeout: time.Second}, nil)
		Expect(s).To(BeAssignableToTypeOf(&search.TavilyClient{}))
	})

	It("skips Typesense when it is not configured", func() {
		client, err := service.NewTypesenseClient(config.KnowledgeConfig{})
		Expect(err).NotTo(HaveOccurred())
		Expect(client).To(BeNil())
	})

	It("falls back to the seed corpus retriever", func() {
		r, err := service.NewRetriever(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(r).To(BeAssignableToTypeOf(&knowledge.MemoryRetriever{}))
		Expect(r.Retrieve(context.Background(), "anxiety breathing", 3)).NotTo(BeEmpty())
	})

	It("builds an assistant per session", func() {
		factory := service.NewAssistantFactory(service.Components{
			LLM:       &echoClient{reply: "hi"},
			Companion: config.CompanionConfig{ToolsEnabled: true, KnowledgeResults: 3},
		})

		a := factory("s-1")
		b := factory("s-2")
		Expect(a.SessionID()).To(Equal("s-1"))
		Expect(a).NotTo(BeIdenticalTo(b))

		reply := a.Handle(context.Background(), "I had a rough week")
		Expect(reply.Text).To(Equal("hi"))
		Expect(b.History()).To(BeEmpty())
	})
})

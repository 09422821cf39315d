package companion_test

import (
	"context"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"mindsukoon.app/companion/common/llm"
	"mindsukoon.app/companion/internal/companion"
	"mindsukoon.app/companion/internal/search"
)

var _ = Describe("WebSearchTool", func() {
	It("declares the search schema", func() {
		def := companion.NewWebSearchTool(nil).Definition()
		Expect(def.Name).To(Equal("search_mental_health_web"))
		Expect(def.Description).To(ContainSubstring("recent mental health information"))

		raw, err := json.Marshal(def.Parameters)
		Expect(err).NotTo(HaveOccurred())
		var schema map[string]any
		Expect(json.Unmarshal(raw, &schema)).To(Succeed())
		Expect(schema["required"]).To(ConsistOf("query"))
		props := schema["properties"].(map[string]any)
		Expect(props).To(HaveKey("query"))
		Expect(props).To(HaveKeyWithValue("max_results", HaveKeyWithValue("default", BeNumerically("==", 3))))
	})

	DescribeTable("reports unavailability without a searcher",
		func(args string) {
			out, err := companion.NewWebSearchTool(nil).Execute(context.Background(), args)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(companion.ToolUnavailableMessage))
		},
		Entry("with a query", `{"query":"sleep"}`),
		Entry("with no arguments", `{}`),
		Entry("with a blank query", `{"query":"  "}`),
		Entry("with a string count", `{"query":"sleep","max_results":"3"}`),
	)

	DescribeTable("result count",
		func(args string, want int) {
			s := &mockSearcher{}
			_, err := companion.NewWebSearchTool(s).Execute(context.Background(), args)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.calls).To(HaveLen(1))
			Expect(s.calls[0].maxResults).To(Equal(want))
		},
		Entry("defaults to 3", `{"query":"q"}`, 3),
		Entry("honours the request", `{"query":"q","max_results":5}`, 5),
		Entry("clamps large values", `{"query":"q","max_results":50}`, 10),
		Entry("defaults non-positive values", `{"query":"q","max_results":0}`, 3),
		Entry("accepts a numeric string", `{"query":"q","max_results":"4"}`, 4),
		Entry("accepts a whole float", `{"query":"q","max_results":3.0}`, 3),
		Entry("accepts a whole float string", `{"query":"q","max_results":"5.0"}`, 5),
		Entry("defaults a fractional float", `{"query":"q","max_results":2.5}`, 3),
		Entry("defaults a non-numeric string", `{"query":"q","max_results":"a few"}`, 3),
		Entry("defaults null", `{"query":"q","max_results":null}`, 3),
		Entry("defaults other types", `{"query":"q","max_results":[2]}`, 3),
	)

	It("rejects arguments that are not JSON", func() {
		_, err := companion.NewWebSearchTool(&mockSearcher{}).Execute(context.Background(), `{"query":`)
		Expect(err).To(MatchError(ContainSubstring("parse tool arguments")))

		_, err = companion.NewWebSearchTool(nil).Execute(context.Background(), ``)
		Expect(err).To(HaveOccurred())
	})

	It("reports no results for a missing query without searching", func() {
		s := &mockSearcher{}
		out, err := companion.NewWebSearchTool(s).Execute(context.Background(), `{"query":"  "}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(companion.NoResultsMessage))
		Expect(s.calls).To(BeEmpty())
	})

	It("treats a panicking searcher as no results", func() {
		s := &mockSearcher{searchFn: func(context.Context, string, int) []search.Result {
			panic("boom")
		}}
		out, err := companion.NewWebSearchTool(s).Execute(context.Background(), `{"query":"q"}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(companion.NoResultsMessage))
	})
})

var _ = Describe("FormatSearchResults", func() {
	It("states that nothing was found for no results", func() {
		Expect(companion.FormatSearchResults(nil)).To(ContainSubstring("No recent information found"))
	})

	It("numbers each result with its content and source", func() {
		got := companion.FormatSearchResults([]search.Result{
			{Content: "Web Search Summary: s", Source: search.SummarySource},
			{Content: "Title: t\nContent: c"},
		})
		Expect(got).To(HavePrefix("WEB SEARCH RESULTS:\n\n"))
		Expect(got).To(ContainSubstring("Result 1:\nContent: Web Search Summary: s\nSource: tavily_ai_answer\n\n"))
		Expect(got).To(ContainSubstring("Result 2:\nContent: Title: t\nContent: c\nSource: Unknown\n\n"))
		Expect(got).To(HaveSuffix("incorporating relevant information from the search results."))
	})
})

var _ = Describe("ToolRegistry", func() {
	It("answers unknown tools with an unavailable message", func() {
		r := companion.NewToolRegistry(companion.NewWebSearchTool(nil))
		out, err := r.Execute(context.Background(), llm.ToolCall{ID: "1", Name: "book_appointment", Arguments: "{}"})
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring(`"book_appointment" is not available`))
	})

	It("keeps one definition per name", func() {
		r := companion.NewToolRegistry(companion.NewWebSearchTool(nil), companion.NewWebSearchTool(&mockSearcher{}))
		Expect(r.Definitions()).To(HaveLen(1))
	})
})

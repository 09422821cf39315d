package llm_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"mindsukoon.app/companion/common/llm"
)

type lookupParams struct {
	Query string `json:"query" jsonschema:"required,description=What to look up"`
	Limit int    `json:"limit,omitempty" jsonschema:"description=How many results"`
}

var _ = Describe("NewAgentClient", func() {
	It("requires an API key", func() {
		client, err := llm.NewAgentClient(llm.Config{Provider: llm.ProviderOpenAI})
		Expect(err).To(MatchError(ContainSubstring("API key is required")))
		Expect(client).To(BeNil())
	})

	It("rejects unknown providers", func() {
		_, err := llm.NewAgentClient(llm.Config{Provider: "mystery", APIKey: "k"})
		Expect(err).To(MatchError(ContainSubstring("unsupported LLM provider")))
	})

	DescribeTable("builds a client for each supported provider",
		func(provider, model string) {
			client, err := llm.NewAgentClient(llm.Config{Provider: provider, APIKey: "k", Model: model})
			Expect(err).NotTo(HaveOccurred())
			Expect(client.Model()).To(Equal(model))
		},
		Entry("openai", llm.ProviderOpenAI, "gpt-4o-mini"),
		Entry("anthropic", llm.ProviderAnthropic, "claude-haiku-4-5"),
	)

	It("defaults to OpenAI with gpt-3.5-turbo", func() {
		client, err := llm.NewAgentClient(llm.Config{APIKey: "k"})
		Expect(err).NotTo(HaveOccurred())
		Expect(client.Model()).To(Equal("gpt-3.5-turbo"))
	})
})

var _ = Describe("ParseToolArguments", func() {
	It("decodes JSON arguments into the target type", func() {
		params, err := llm.ParseToolArguments[lookupParams](`{"query":"sleep hygiene","limit":2}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(params.Query).To(Equal("sleep hygiene"))
		Expect(params.Limit).To(Equal(2))
	})

	It("wraps decode failures", func() {
		_, err := llm.ParseToolArguments[lookupParams](`{"query":`)
		Expect(err).To(MatchError(ContainSubstring("parse tool arguments")))
	})
})

var _ = Describe("GenerateSchemaFrom", func() {
	It("marks only non-omitempty fields as required", func() {
		data, err := json.Marshal(llm.GenerateSchemaFrom(lookupParams{}))
		Expect(err).NotTo(HaveOccurred())

		var schema map[string]any
		Expect(json.Unmarshal(data, &schema)).To(Succeed())
		Expect(schema["type"]).To(Equal("object"))
		Expect(schema["required"]).To(ConsistOf("query"))
		Expect(schema["properties"]).To(HaveKey("limit"))
	})
})

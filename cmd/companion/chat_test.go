package main

import (
	"bytes"
	"context"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"mindsukoon.app/companion/common/llm"
	"mindsukoon.app/companion/internal/companion"
)

type countingClient struct {
	mu    sync.Mutex
	calls int
}

func (c *countingClient) ChatWithTools(context.Context, llm.AgentRequest) (*llm.AgentResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return &llm.AgentResponse{Content: "I hear you."}, nil
}

func (c *countingClient) Model() string { return "counting" }

var _ = Describe("runChat", func() {
	var (
		client    *countingClient
		assistant *companion.Assistant
		out       *bytes.Buffer
	)

	BeforeEach(func() {
		client = &countingClient{}
		o := companion.NewOrchestrator(client, nil, companion.DefaultOrchestratorConfig())
		assistant = companion.NewAssistant("cli", nil, o, nil, companion.AssistantConfig{ToolsEnabled: true})
		out = &bytes.Buffer{}
	})

	It("greets with the welcome message and emergency contacts", func() {
		Expect(runChat(context.Background(), strings.NewReader(""), out, assistant)).To(Succeed())

		Expect(out.String()).To(ContainSubstring(companion.WelcomeMessage))
		Expect(out.String()).To(ContainSubstring("988"))
		Expect(out.String()).To(ContainSubstring("116 123"))
	})

	It("answers each non-empty line", func() {
		in := strings.NewReader("I'm tired\n\nwork is a lot\n")

		Expect(runChat(context.Background(), in, out, assistant)).To(Succeed())

		Expect(strings.Count(out.String(), "Companion: I hear you.")).To(Equal(2))
		Expect(assistant.History()).To(HaveLen(2))
	})

	It("stops on an exit word", func() {
		in := strings.NewReader("hello\nQuit\nnever sent\n")

		Expect(runChat(context.Background(), in, out, assistant)).To(Succeed())

		Expect(client.calls).To(Equal(1))
		Expect(out.String()).To(ContainSubstring("Take care of yourself"))
	})

	It("shows crisis resources without calling the model", func() {
		in := strings.NewReader("I want to end my life\n")

		Expect(runChat(context.Background(), in, out, assistant)).To(Succeed())

		Expect(client.calls).To(BeZero())
		Expect(out.String()).To(ContainSubstring("741741"))
	})
})

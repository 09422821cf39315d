package companion_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"mindsukoon.app/companion/internal/companion"
	"mindsukoon.app/companion/internal/knowledge"
	"mindsukoon.app/companion/internal/safety"
)

var _ = Describe("Assistant", func() {
	var (
		client    *scriptedClient
		retriever *mockRetriever
		observer  *recordingObserver
		cfg       companion.AssistantConfig
	)

	newAssistant := func() *companion.Assistant {
		o := newOrchestrator(client, nil)
		return companion.NewAssistant("sess-1", retriever, o, observer, cfg)
	}

	BeforeEach(func() {
		client = newScriptedClient()
		retriever = &mockRetriever{}
		observer = &recordingObserver{}
		cfg = companion.AssistantConfig{ToolsEnabled: true}
	})

	It("answers high risk messages with emergency resources and no model call", func() {
		a := newAssistant()

		reply := a.Handle(context.Background(), "I want to die")

		Expect(reply.Tier).To(Equal(safety.HighRisk))
		Expect(reply.Path).To(Equal(companion.PathCrisis))
		Expect(reply.Text).To(ContainSubstring("988"))
		Expect(client.Requests()).To(BeEmpty())
		Expect(retriever.calls).To(BeZero())
		Expect(a.History()).To(BeEmpty())

		Expect(observer.events).To(HaveLen(1))
		Expect(observer.events[0].SessionID).To(Equal("sess-1"))
		Expect(observer.events[0].Tier).To(Equal(safety.HighRisk))
		Expect(observer.events[0].Phrase).To(Equal("want to die"))
		Expect(observer.events[0].TurnID).To(Equal(reply.TurnID))
	})

	It("answers medium risk messages with an offer to find resources", func() {
		a := newAssistant()

		reply := a.Handle(context.Background(), "I feel hopeless about work")

		Expect(reply.Tier).To(Equal(safety.MediumRisk))
		Expect(reply.Path).To(Equal(companion.PathCrisis))
		Expect(reply.Text).To(ContainSubstring("help finding local mental health resources"))
		Expect(client.Requests()).To(BeEmpty())
		Expect(observer.events).To(HaveLen(1))
	})

	It("tolerates a missing observer", func() {
		a := companion.NewAssistant("sess-1", retriever, newOrchestrator(client, nil), nil, cfg)
		Expect(a.Handle(context.Background(), "better off dead").Path).To(Equal(companion.PathCrisis))
	})

	It("grounds low risk messages in retrieved knowledge", func() {
		retriever.retrieveFn = func(context.Context, string, int) []knowledge.Snippet {
			return []knowledge.Snippet{{Content: "Mindfulness practice: focus on the breath."}}
		}
		client.script = []scripted{text("Let's try a short breathing exercise together.")}
		a := newAssistant()

		reply := a.Handle(context.Background(), "How do I practice mindfulness?")

		Expect(reply.Tier).To(Equal(safety.LowRisk))
		Expect(reply.Path).To(Equal(companion.PathDirect))
		Expect(reply.Text).To(Equal("Let's try a short breathing exercise together."))
		Expect(reply.TurnID).NotTo(BeZero())
		Expect(retriever.lastN).To(Equal(knowledge.DefaultResults))
		Expect(client.Requests()).To(HaveLen(1))
		Expect(client.Requests()[0].Messages[1].Content).To(ContainSubstring("- Mindfulness practice: focus on the breath."))
		Expect(a.History()).To(HaveLen(1))
		Expect(observer.events).To(BeEmpty())
	})

	It("uses the simple path when tools are disabled", func() {
		cfg.ToolsEnabled = false
		client.script = []scripted{text("I'm listening.")}
		a := newAssistant()

		reply := a.Handle(context.Background(), "It was a long day")

		Expect(reply.Text).To(Equal("I'm listening."))
		Expect(client.Requests()[0].Tools).To(BeEmpty())
		Expect(client.Requests()[0].MaxTokens).To(Equal(300))
	})

	It("continues without knowledge when retrieval panics", func() {
		retriever.retrieveFn = func(context.Context, string, int) []knowledge.Snippet {
			panic("index corrupted")
		}
		client.script = []scripted{text("Tell me more.")}
		a := newAssistant()

		reply := a.Handle(context.Background(), "I had a weird day")

		Expect(reply.Text).To(Equal("Tell me more."))
		Expect(client.Requests()[0].Messages[1].Content).NotTo(ContainSubstring("KNOWLEDGE BASE"))
	})

	It("returns the fallback text when generation fails", func() {
		a := newAssistant()

		reply := a.Handle(context.Background(), "hello there")

		Expect(reply.Path).To(Equal(companion.PathFallback))
		Expect(reply.Text).To(Equal(companion.FallbackMessage))
		Expect(a.History()).To(BeEmpty())
	})
})

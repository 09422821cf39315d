package companion

import (
	"fmt"
	"strings"

	"mindsukoon.app/companion/internal/knowledge"
	"mindsukoon.app/companion/internal/safety"
)

const safetyRules = `You are a compassionate mental health companion. Your role is to provide emotional support, CBT-inspired reflections, and general wellness guidance.

CRITICAL SAFETY RULES:
1. NEVER provide medical or psychological diagnoses
2. NEVER suggest specific treatments or medications
3. ALWAYS encourage professional help for serious concerns
4. Focus on active listening, validation, and general coping strategies
5. For crisis situations, provide emergency resources immediately
6. When a risk level is flagged, prioritize safety resources in your reply`

const toolGuidance = `You have access to a web search tool to find recent mental health information when needed. Use it when users ask about:
- Latest research or studies
- Recent news or developments
- Current trends or statistics
- Up-to-date information not in your training data

For general emotional support or known information, respond directly without using tools.`

// SystemPrompt is the system message for the tool-calling path.
const SystemPrompt = safetyRules + "\n\n" + toolGuidance + "\n"

// SimpleSystemPrompt is the system message for the single-call path, which
// carries the safety rules in the user payload instead.
const SimpleSystemPrompt = "You are a supportive, empathetic mental health companion."

const (
	WelcomeMessage  = "Hi there! I'm here to listen and offer support. How are you feeling today? 💭"
	FallbackMessage = "I'm here to listen. It seems I'm having some technical difficulties. How are you feeling right now?"
)

// riskLine is empty for low risk.
func riskLine(tier safety.RiskTier) string {
	if !tier.Elevated() {
		return ""
	}
	return fmt.Sprintf("RISK LEVEL: %s - Prioritize safety and resource provision\n", strings.ToUpper(tier.String()))
}

// BuildUserPrompt assembles the user payload for the tool-calling path:
// knowledge bullets, risk annotation, recent turns, then the message.
func BuildUserPrompt(message string, snippets []knowledge.Snippet, tier safety.RiskTier, recent []Turn) string {
	var b strings.Builder

	if len(snippets) > 0 {
		b.WriteString("RELEVANT MENTAL HEALTH KNOWLEDGE BASE:\n")
		for _, s := range snippets {
			fmt.Fprintf(&b, "- %s\n", s.Content)
		}
		b.WriteString("\n")
	}

	if line := riskLine(tier); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(recent) > 0 {
		b.WriteString("RECENT CONVERSATION:\n")
		for _, t := range recent {
			fmt.Fprintf(&b, "User: %s\nYou: %s\n", t.User, t.Assistant)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Current User Message: %s", message)
	return b.String()
}

// BuildSimplePrompt assembles the single-call payload, which embeds the
// safety rules and ends with an answer cue.
func BuildSimplePrompt(message string, snippets []knowledge.Snippet, tier safety.RiskTier, recent []Turn) string {
	var b strings.Builder
	b.WriteString(safetyRules)
	b.WriteString("\n")

	if len(snippets) > 0 {
		b.WriteString("\nRELEVANT SUPPORT TECHNIQUES:\n")
		for _, s := range snippets {
			fmt.Fprintf(&b, "- %s\n", s.Content)
		}
	}

	if line := riskLine(tier); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
	}

	if len(recent) > 0 {
		b.WriteString("\nRECENT CONVERSATION CONTEXT:\n")
		for _, t := range recent {
			fmt.Fprintf(&b, "User: %s\nYou: %s\n", t.User, t.Assistant)
		}
	}

	fmt.Fprintf(&b, "\nCurrent User Message: %s\n", message)
	b.WriteString("\nYour compassionate, supportive response:")
	return b.String()
}

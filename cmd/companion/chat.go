package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"mindsukoon.app/companion/common/llm"
	"mindsukoon.app/companion/internal/companion"
	"mindsukoon.app/companion/internal/queue"
	"mindsukoon.app/companion/internal/safety"
	"mindsukoon.app/companion/internal/service"
)

var exitWords = map[string]bool{"quit": true, "exit": true, "bye": true}

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive support conversation",
		Args:  cobra.NoArgs,
		RunE:  chatCmd,
	}
	cmd.Flags().Bool("simple", false, "use the single-call generation path without web search")
	return cmd
}

func chatCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer rt.close(context.WithoutCancel(ctx))

	if simple, _ := cmd.Flags().GetBool("simple"); simple {
		rt.cfg.Companion.ToolsEnabled = false
	}

	agent, err := llm.NewAgentClient(llm.Config{
		Provider: rt.cfg.LLM.Provider,
		APIKey:   rt.cfg.LLM.APIKey,
		BaseURL:  rt.cfg.LLM.BaseURL,
		Model:    rt.cfg.LLM.Model,
	})
	if err != nil {
		return fmt.Errorf("create llm client: %w", err)
	}

	tsClient, err := service.NewTypesenseClient(rt.cfg.Knowledge)
	if err != nil {
		return err
	}
	retriever, err := service.NewRetriever(tsClient)
	if err != nil {
		return err
	}

	var rdb redis.Cmdable
	components := service.Components{
		LLM:       agent,
		Retriever: retriever,
		Companion: rt.cfg.Companion,
	}
	if rt.redis != nil {
		rdb = rt.redis
		components.Observer = service.NewRiskPublisher(queue.NewRedisProducer(rt.redis, rt.cfg.Redis.SafetyStream, nil))
	}
	components.Searcher = service.NewSearcher(rt.cfg.Search, rdb)

	assistant := service.NewAssistantFactory(components)(uuid.NewString())
	return runChat(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), assistant)
}

// runChat reads one message per line until EOF, an exit word, or ctx is
// cancelled.
func runChat(ctx context.Context, in io.Reader, out io.Writer, assistant *companion.Assistant) error {
	printIntro(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nYou: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if exitWords[strings.ToLower(message)] {
			fmt.Fprintln(out, "\nTake care of yourself. You can come back any time. 💙")
			return nil
		}

		reply := assistant.Handle(ctx, message)
		fmt.Fprintf(out, "\nCompanion: %s\n", reply.Text)

		if ctx.Err() != nil {
			return nil
		}
	}
}

func printIntro(out io.Writer) {
	fmt.Fprintln(out, "🧠 MindSukoon")
	fmt.Fprintln(out, "Your compassionate AI mental health support partner")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Not a substitute for therapy and no medical advice. In an emergency:")
	for _, c := range safety.EmergencyContacts() {
		fmt.Fprintf(out, "  %s  %s (%s)\n", strings.ToUpper(c.Region), c.Number, c.Name)
	}
	fmt.Fprintln(out, "Type 'quit' to leave.")
	fmt.Fprintf(out, "\nCompanion: %s\n", companion.WelcomeMessage)
}

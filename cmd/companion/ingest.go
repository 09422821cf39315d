package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"mindsukoon.app/companion/internal/knowledge"
	"mindsukoon.app/companion/internal/service"
)

func newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load the mental health knowledge base into Typesense",
		Args:  cobra.NoArgs,
		RunE:  ingestCmd,
	}
	cmd.Flags().Bool("force", false, "re-index even if the collection already has documents")
	cmd.Flags().Duration("delay", time.Second, "pause between web page fetches")
	return cmd
}

func ingestCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	force, _ := cmd.Flags().GetBool("force")
	delay, _ := cmd.Flags().GetDuration("delay")

	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer rt.close(context.WithoutCancel(ctx))

	client, err := service.NewTypesenseClient(rt.cfg.Knowledge)
	if err != nil {
		return err
	}
	if client == nil {
		return errors.New("TYPESENSE_URL and TYPESENSE_API_KEY are required for ingest")
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	loader := knowledge.NewLoader(
		knowledge.Source{Prefix: "web", Source: knowledge.NewWebLoader(httpClient, knowledge.DefaultWebSources, delay)},
		knowledge.Source{Prefix: "hf", Source: knowledge.NewHuggingFaceLoader(httpClient, rt.cfg.Knowledge.HuggingFaceURL)},
	)

	result, err := knowledge.NewIndexer(client, loader).Index(ctx, force)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.Skipped {
		fmt.Fprintf(out, "Collection %q already has %d documents; use --force to re-index.\n", rt.cfg.Knowledge.Collection, result.Existing)
		return nil
	}
	fmt.Fprintf(out, "Indexed %d documents into %q.\n", result.Indexed, rt.cfg.Knowledge.Collection)
	return nil
}

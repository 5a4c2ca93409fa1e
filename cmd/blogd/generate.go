package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kimhsiao/blogai/internal/models"
	"github.com/kimhsiao/blogai/internal/services"
)

func newGenerateCmd(configPath *string) *cobra.Command {
	var (
		topics []string
		style  string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate and publish articles without starting the server",
		Long: `Generate one article per --topic and store it as published.

Each article is printed as JSON. A topic that fails to save is reported and
the remaining topics still run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			svc := a.service()
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			failed := 0
			for _, topic := range topics {
				article, err := svc.GenerateAndSave(cmd.Context(), models.GenerationRequest{Topic: topic, Style: style})
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "[warn] %s: %v\n", topic, err)
					continue
				}
				if err := enc.Encode(article); err != nil {
					return err
				}
			}
			if failed == len(topics) {
				return fmt.Errorf("no articles generated")
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&topics, "topic", []string{services.DefaultTopic}, "topic to write about (repeatable)")
	cmd.Flags().StringVar(&style, "style", models.DefaultStyle, "article style")
	return cmd
}

func newSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Generate the initial articles when the store has none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.service().SeedIfEmpty(context.WithoutCancel(cmd.Context()))
			if err != nil {
				return fmt.Errorf("seeding: %w", err)
			}

			out := cmd.OutOrStdout()
			if !report.Seeded {
				fmt.Fprintln(out, "Store already has articles, nothing to seed.")
				return nil
			}
			for _, r := range report.Results {
				if r.OK() {
					fmt.Fprintf(out, "  [ok]   %s -> #%s %s\n", r.Topic, r.Article.ID, r.Article.Title)
				} else {
					fmt.Fprintf(out, "  [fail] %s: %s\n", r.Topic, r.Error)
				}
			}
			fmt.Fprintf(out, "Seeded %d of %d article(s).\n", report.Succeeded(), len(report.Results))
			return nil
		},
	}
}

// Package main is the blogd entry point: the article API server plus
// one-shot generation commands.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Set at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "blogd",
		Short:         "AI-assisted blog article service",
		Long:          "blogd serves a blog article API backed by SQLite and generates Portuguese articles through a chat-completion model, with a template fallback when the model is unavailable.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: $XDG_CONFIG_HOME/blogai/config.yaml)")

	root.AddCommand(
		newServeCmd(&configPath),
		newGenerateCmd(&configPath),
		newSeedCmd(&configPath),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "blogd %s (commit: %s, built: %s)\n", version, commit, date)
}

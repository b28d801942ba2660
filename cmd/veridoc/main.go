package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/veridoc-ai/veridoc/internal/cli"
	"github.com/veridoc-ai/veridoc/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "veridoc",
		Short: "Veridoc CLI - Ask questions about your documents",
		Long: `Veridoc CLI ingests text documents and answers questions grounded in them.

Environment variables:
  VERIDOC_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.IngestCmd())
	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.StatusCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

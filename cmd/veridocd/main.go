package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/veridoc-ai/veridoc/internal/cli"
	"github.com/veridoc-ai/veridoc/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "veridocd",
		Short: "Veridoc daemon",
		Long:  "Veridoc daemon for running the document question-answering API server",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

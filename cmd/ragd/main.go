package main

import (
	"fmt"
	"os"

	"github.com/888Greys/rag-ai/internal/cli"
	"github.com/888Greys/rag-ai/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ragd",
		Short: "rag-ai daemon and admin CLI",
		Long:  "rag-ai daemon for running the chat API server and managing the document corpus",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.IngestCmd())
	rootCmd.AddCommand(admin.DeleteCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the trellofewer application
var rootCmd = &cobra.Command{
	Use:   "trellofewer",
	Short: "MCP server for Trello boards, lists and cards",
	Long: `trellofewer exposes the Trello API to AI assistants through the
Model Context Protocol (MCP).

It provides tools for board, list and card management, plus bulk
operations (create, move, update, archive) that select cards by
filter criteria and process them in concurrent batches.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "trellofewer version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}

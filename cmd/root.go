package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extractor",
		Short: "Question bank extraction tool with LLM-powered image recognition",
		Long: `Extractor turns photos of exam papers and exercise books into structured,
editable question records using vision-capable LLMs.

It serves the review/edit workflow over a JSON API and ships a CLI for
evaluating recognition accuracy against labeled question datasets.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newEvalCmd())

	return cmd
}

package cmd

import (
	"github.com/learnmore-edu/extractor/internal/evalcmd"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Question recognition evaluation tools",
		Long: `Evaluation tools for measuring the accuracy of LLM question recognition.

Runs the recognizer against labeled question image datasets (Parquet or
JSONL), scores each extracted field against the ground truth, and writes
detailed YAML comparison reports.`,
	}

	// Add eval subcommands
	cmd.AddCommand(evalcmd.NewRunCmd())
	cmd.AddCommand(evalcmd.NewReportCmd())

	return cmd
}

package evalcmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/learnmore-edu/extractor/internal/eval/results"
	"github.com/spf13/cobra"
)

// NewReportCmd creates the report command for inspecting a saved evaluation
func NewReportCmd() *cobra.Command {
	var resultsPath string
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a saved evaluation as text, JSON or CSV",
		Example: `  # Print a text report
  extractor eval report --results evals/gemini-2.0-flash-2026-01-15_10-30-00.yaml

  # Export per-record scores as CSV
  extractor eval report --results evals/latest.yaml --format csv > scores.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReport(resultsPath, format)
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "", "Path to an eval YAML file (required)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, json, or csv)")

	_ = cmd.MarkFlagRequired("results")
	return cmd
}

func executeReport(resultsPath, format string) error {
	spec, err := results.LoadFromYAML(resultsPath)
	if err != nil {
		return err
	}

	switch format {
	case "text":
		return printTextReport(spec)
	case "json":
		return printJSONReport(spec)
	case "csv":
		return printCSVReport(spec)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printTextReport(spec *results.EvalSpec) error {
	fmt.Println("========================================")
	fmt.Println("Question Recognition Evaluation Report")
	fmt.Println("========================================")
	fmt.Printf("Provider:  %s\n", spec.Config.Provider)
	fmt.Printf("Model:     %s\n", spec.Config.Model)
	fmt.Printf("Dataset:   %s\n", spec.Config.DatasetPath)
	fmt.Printf("Timestamp: %s\n", spec.Config.Timestamp)

	var total float64
	var scored int
	for _, r := range spec.Results {
		if r.Error == "" {
			total += r.OverallScore
			scored++
		}
	}
	if scored > 0 {
		fmt.Printf("\nAverage Score: %.2f%% over %d records\n", total/float64(scored)*100, scored)
	}

	fmt.Println("\nDetailed Results:")
	fmt.Println("========================================")

	for i, r := range spec.Results {
		fmt.Printf("\n[%d] Record ID: %s\n", i+1, r.Identifier)

		if r.Error != "" {
			fmt.Printf("  ❌ Error: %s\n", r.Error)
			continue
		}

		fmt.Printf("  Overall Score: %.2f%%\n", r.OverallScore*100)
		fmt.Printf("  Questions Recognized: %d\n", r.Recognized)

		fmt.Println("  Field Scores:")
		var fields []string
		for field := range r.FieldScores {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		for _, field := range fields {
			fmt.Printf("    %s: %.2f%%\n", field, r.FieldScores[field]*100)
		}
	}

	return nil
}

func printJSONReport(spec *results.EvalSpec) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(spec)
}

func printCSVReport(spec *results.EvalSpec) error {
	writer := csv.NewWriter(os.Stdout)
	defer writer.Flush()

	header := []string{"ID", "Image", "Recognized", "Overall Score", "Content", "Type", "Answer", "Error"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range spec.Results {
		row := []string{
			r.Identifier,
			r.ImagePath,
			fmt.Sprintf("%d", r.Recognized),
			fmt.Sprintf("%.4f", r.OverallScore),
			fmt.Sprintf("%.4f", r.FieldScores["content"]),
			fmt.Sprintf("%.4f", r.FieldScores["type"]),
			fmt.Sprintf("%.4f", r.FieldScores["answer"]),
			r.Error,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return nil
}

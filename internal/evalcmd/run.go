package evalcmd

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/learnmore-edu/extractor/internal/eval/dataset"
	"github.com/learnmore-edu/extractor/internal/eval/metrics"
	"github.com/learnmore-edu/extractor/internal/eval/results"
	"github.com/learnmore-edu/extractor/internal/models"
	"github.com/learnmore-edu/extractor/internal/recognition"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command for evaluating recognition quality
// against a labeled question dataset
func NewRunCmd() *cobra.Command {
	var datasetPath string
	var imagesDir string
	var sampleSize int
	var concurrency int
	var provider string
	var model string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate question recognition against a labeled dataset",
		Long: `Run question recognition over a labeled dataset and score the results.

Each dataset record pairs a question image with the content, type and answer a
perfect recognizer would extract. The evaluation recognizes every image and
compares the first extracted question against the labels, then writes a YAML
report to the evals/ directory.`,
		Example: `  # Evaluate 10 records with Gemini
  extractor eval run --dataset ./questions.jsonl --sample 10

  # Evaluate a parquet dataset with OpenAI
  extractor eval run --dataset ./questions.parquet --provider openai --model gpt-4o

  # Evaluate the full dataset with more parallelism
  extractor eval run --dataset ./questions.jsonl --sample -1 --concurrency 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(datasetPath); os.IsNotExist(err) {
				return fmt.Errorf("dataset file not found: %s", datasetPath)
			}
			return executeRun(cmd.Context(), datasetPath, imagesDir, provider, model, sampleSize, concurrency)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Path to labeled dataset (.jsonl or .parquet, required)")
	cmd.Flags().StringVar(&imagesDir, "images", "", "Base directory for relative image paths (defaults to the dataset's directory)")
	cmd.Flags().IntVar(&sampleSize, "sample", 10, "Number of records to evaluate (-1 for all)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 2, "Number of concurrent recognition calls")
	cmd.Flags().StringVar(&provider, "provider", "gemini", "Vision provider (gemini, openai, or ollama)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (defaults to provider's default)")

	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}

func executeRun(ctx context.Context, datasetPath, imagesDir, provider, model string, sampleSize, concurrency int) error {
	slog.Info("Starting evaluation run", "dataset", datasetPath, "provider", provider, "model", model)

	if imagesDir == "" {
		imagesDir = filepath.Dir(datasetPath)
	}

	// Load dataset
	loader := dataset.NewLoader(datasetPath)
	var records []dataset.LabeledQuestion
	var err error
	if sampleSize < 0 {
		records, err = loader.Load()
	} else {
		records, err = loader.LoadSample(sampleSize)
	}
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	slog.Info("Dataset loaded", "records", len(records))

	service := recognition.NewService()

	// Process records with concurrency control
	slog.Info("Processing records", "concurrency", concurrency)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)
	resultsChan := make(chan metrics.EvaluationResult, len(records))

	for i, record := range records {
		wg.Add(1)
		go func(idx int, record dataset.LabeledQuestion) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			slog.Info("Processing record", "id", record.ID, "progress", fmt.Sprintf("%d/%d", idx+1, len(records)))

			result := processRecord(ctx, record, imagesDir, service, provider, model)
			resultsChan <- result
		}(i, record)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	// Collect results in dataset order
	evalResults := make([]metrics.EvaluationResult, 0, len(records))
	for result := range resultsChan {
		evalResults = append(evalResults, result)
	}
	sort.Slice(evalResults, func(i, j int) bool {
		return evalResults[i].ID < evalResults[j].ID
	})

	// Aggregate and report
	aggregate := metrics.AggregateEvaluationResults(evalResults, provider, model)
	printAggregate(aggregate)

	if err := results.SaveToYAML(provider, model, datasetPath, len(records), evalResults); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	return nil
}

func processRecord(ctx context.Context, record dataset.LabeledQuestion, imagesDir string, service *recognition.Service, provider, model string) metrics.EvaluationResult {
	result := metrics.EvaluationResult{
		ID:        record.ID,
		ImagePath: record.ImagePath,
	}

	imagePath := record.ResolveImagePath(imagesDir)
	if imagePath == "" {
		result.Error = "no image available for recognition"
		return result
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read image: %v", err)
		return result
	}

	img := models.UploadedImage{
		Data:     data,
		MIME:     detectMIME(imagePath, data),
		Filename: filepath.Base(imagePath),
		Size:     int64(len(data)),
	}

	start := time.Now()
	candidates, err := service.RecognizeWith(ctx, img, provider, model)
	result.ProcessingTime = time.Since(start)
	if err != nil {
		result.Error = fmt.Sprintf("recognition failed: %v", err)
		return result
	}

	result.Recognized = len(candidates)

	// Dataset records label a single question, so grade the first candidate.
	// Extraction order is stable, so multi-question images still score the
	// question the labeler saw first.
	result.Comparison = metrics.CompareQuestion(record.Content, record.Type, record.Answer, candidates[0])

	return result
}

// detectMIME resolves the image MIME type from the file extension, falling
// back to content sniffing
func detectMIME(path string, data []byte) string {
	if mimeType := mime.TypeByExtension(filepath.Ext(path)); mimeType != "" {
		return mimeType
	}
	return http.DetectContentType(data)
}

func printAggregate(agg *metrics.AggregateResults) {
	fmt.Println("\n========================================")
	fmt.Println("Recognition Evaluation Summary")
	fmt.Println("========================================")
	fmt.Printf("Provider:           %s\n", agg.Provider)
	fmt.Printf("Model:              %s\n", agg.Model)
	fmt.Printf("Total Records:      %d\n", agg.TotalRecords)
	fmt.Printf("Successful Evals:   %d\n", agg.SuccessCount)
	fmt.Printf("Failed Evals:       %d\n", agg.FailureCount)
	fmt.Println()
	fmt.Printf("Overall Accuracy:   %.2f%%\n", agg.OverallAccuracy*100)
	fmt.Printf("Avg Processing:     %s\n", agg.AverageProcessingTime.Round(time.Millisecond))
	fmt.Println()
	fmt.Println("Field Accuracies:")
	printFieldStats("content", agg.ContentStats)
	printFieldStats("type", agg.TypeStats)
	printFieldStats("answer", agg.AnswerStats)
	fmt.Println("========================================")
}

func printFieldStats(name string, stats metrics.FieldStats) {
	fmt.Printf("  %-8s %.2f%% (exact %d, fuzzy %d, miss %d, missing %d)\n",
		name+":", stats.AverageScore*100, stats.ExactMatches, stats.FuzzyMatches, stats.NoMatches, stats.MissingFields)
}

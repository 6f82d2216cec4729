package results

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/learnmore-edu/extractor/internal/eval/metrics"
	"gopkg.in/yaml.v3"
)

// EvalConfig represents the configuration section of the eval YAML
type EvalConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Prompt      string  `yaml:"prompt"`
	Temperature float64 `yaml:"temperature"`
	DatasetPath string  `yaml:"datasetpath"`
	SampleSize  int     `yaml:"samplesize"`
	Timestamp   string  `yaml:"timestamp"`
}

// EvalResult represents a single evaluation result
type EvalResult struct {
	Identifier   string             `yaml:"identifier"`
	ImagePath    string             `yaml:"imagepath"`
	Recognized   int                `yaml:"recognized"`
	OverallScore float64            `yaml:"overallscore"`
	FieldScores  map[string]float64 `yaml:"fieldscores,omitempty"`
	Error        string             `yaml:"error,omitempty"`
}

// EvalSpec represents the complete evaluation specification
type EvalSpec struct {
	Config  EvalConfig   `yaml:"config"`
	Results []EvalResult `yaml:"results"`
}

// SaveToYAML saves evaluation results to a YAML file in evals/ directory
func SaveToYAML(provider, model, datasetPath string, sampleSize int, results []metrics.EvaluationResult) error {
	// Create evals directory
	if err := os.MkdirAll("evals", 0755); err != nil {
		return fmt.Errorf("failed to create evals directory: %w", err)
	}

	// Generate timestamp
	timestamp := time.Now().Format("2006-01-02_15-04-05")

	// Create eval spec
	spec := EvalSpec{
		Config: EvalConfig{
			Provider:    provider,
			Model:       model,
			Prompt:      "Extract exam questions from a question image",
			Temperature: 0.1,
			DatasetPath: datasetPath,
			SampleSize:  sampleSize,
			Timestamp:   timestamp,
		},
		Results: make([]EvalResult, 0, len(results)),
	}

	// Convert results
	for _, r := range results {
		evalResult := EvalResult{
			Identifier: r.ID,
			ImagePath:  r.ImagePath,
			Recognized: r.Recognized,
			Error:      r.Error,
		}

		if r.Comparison != nil {
			evalResult.OverallScore = r.Comparison.OverallScore
			evalResult.FieldScores = map[string]float64{
				"content": r.Comparison.Content.Score,
				"type":    r.Comparison.Type.Score,
				"answer":  r.Comparison.Answer.Score,
			}
		}

		spec.Results = append(spec.Results, evalResult)
	}

	// Generate filename
	filename := fmt.Sprintf("evals/%s-%s.yaml", model, timestamp)

	// Write YAML
	data, err := yaml.Marshal(&spec)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}

	absPath, _ := filepath.Abs(filename)
	fmt.Printf("\n✅ Evaluation results saved to: %s\n", absPath)

	return nil
}

// LoadFromYAML reads a previously saved evaluation spec
func LoadFromYAML(path string) (*EvalSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read eval file: %w", err)
	}

	var spec EvalSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse eval YAML: %w", err)
	}

	return &spec, nil
}

package metrics

import (
	"time"
)

// EvaluationResult holds the outcome of evaluating a single dataset record
type EvaluationResult struct {
	ID             string              `json:"id" yaml:"id"`
	ImagePath      string              `json:"image_path" yaml:"image_path"`
	Recognized     int                 `json:"recognized" yaml:"recognized"`
	Comparison     *QuestionComparison `json:"comparison,omitempty" yaml:"comparison,omitempty"`
	ProcessingTime time.Duration       `json:"processing_time" yaml:"processing_time"`
	Error          string              `json:"error,omitempty" yaml:"error,omitempty"`
}

// FieldStats aggregates comparison outcomes for a single question field
type FieldStats struct {
	ExactMatches  int     `json:"exact_matches" yaml:"exact_matches"`
	FuzzyMatches  int     `json:"fuzzy_matches" yaml:"fuzzy_matches"`
	NoMatches     int     `json:"no_matches" yaml:"no_matches"`
	MissingFields int     `json:"missing_fields" yaml:"missing_fields"`
	AverageScore  float64 `json:"average_score" yaml:"average_score"`
}

// AggregateResults holds statistics across an entire evaluation run
type AggregateResults struct {
	TotalRecords          int           `json:"total_records" yaml:"total_records"`
	SuccessCount          int           `json:"success_count" yaml:"success_count"`
	FailureCount          int           `json:"failure_count" yaml:"failure_count"`
	ContentStats          FieldStats    `json:"content_stats" yaml:"content_stats"`
	TypeStats             FieldStats    `json:"type_stats" yaml:"type_stats"`
	AnswerStats           FieldStats    `json:"answer_stats" yaml:"answer_stats"`
	OverallAccuracy       float64       `json:"overall_accuracy" yaml:"overall_accuracy"`
	AverageProcessingTime time.Duration `json:"average_processing_time" yaml:"average_processing_time"`
	TotalProcessingTime   time.Duration `json:"total_processing_time" yaml:"total_processing_time"`
	EvaluationDate        time.Time     `json:"evaluation_date" yaml:"evaluation_date"`
	Provider              string        `json:"provider" yaml:"provider"`
	Model                 string        `json:"model" yaml:"model"`
	SampleSize            int           `json:"sample_size" yaml:"sample_size"`
}

// AggregateEvaluationResults computes run-level statistics from individual results
func AggregateEvaluationResults(results []EvaluationResult, provider, model string) *AggregateResults {
	agg := &AggregateResults{
		TotalRecords:   len(results),
		EvaluationDate: time.Now(),
		Provider:       provider,
		Model:          model,
		SampleSize:     len(results),
	}

	var overallSum float64
	var scored int

	for _, result := range results {
		agg.TotalProcessingTime += result.ProcessingTime

		if result.Error != "" || result.Comparison == nil {
			agg.FailureCount++
			continue
		}
		agg.SuccessCount++

		tallyField(&agg.ContentStats, result.Comparison.Content)
		tallyField(&agg.TypeStats, result.Comparison.Type)
		tallyField(&agg.AnswerStats, result.Comparison.Answer)

		overallSum += result.Comparison.OverallScore
		scored++
	}

	if scored > 0 {
		agg.OverallAccuracy = overallSum / float64(scored)
		agg.ContentStats.AverageScore /= float64(scored)
		agg.TypeStats.AverageScore /= float64(scored)
		agg.AnswerStats.AverageScore /= float64(scored)
	}
	if len(results) > 0 {
		agg.AverageProcessingTime = agg.TotalProcessingTime / time.Duration(len(results))
	}

	return agg
}

// tallyField buckets a field match by method and accumulates its score.
// AverageScore holds a running sum until the caller divides it out.
func tallyField(stats *FieldStats, match FieldMatch) {
	stats.AverageScore += match.Score

	switch match.Method {
	case "exact":
		stats.ExactMatches++
	case "substring", "fuzzy_high", "fuzzy_medium":
		stats.FuzzyMatches++
	case "no_match":
		stats.NoMatches++
	default:
		// both_missing, expected_missing, actual_missing
		stats.MissingFields++
	}
}

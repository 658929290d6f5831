package importer

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// Progress is the running state of an import, reported after every batch.
type Progress struct {
	Total        int       `json:"total"`
	Processed    int       `json:"processed"`
	Successful   int       `json:"successful"`
	Failed       int       `json:"failed"`
	CurrentBatch int       `json:"current_batch"`
	TotalBatches int       `json:"total_batches"`
	CurrentItems []string  `json:"current_items"`
	Errors       []string  `json:"errors"`
	StartedAt    time.Time `json:"started_at"`
}

// Clone returns a deep copy safe to keep after the observer returns.
func (p Progress) Clone() Progress {
	p.CurrentItems = slices.Clone(p.CurrentItems)
	p.Errors = slices.Clone(p.Errors)
	return p
}

// Percent returns the completed share in [0,100].
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Processed) / float64(p.Total) * 100
}

// EstimateRemaining extrapolates the average time per processed entry over
// the entries still left. It reports false when nothing was processed yet.
func EstimateRemaining(p Progress, elapsed time.Duration) (time.Duration, bool) {
	if p.Processed <= 0 {
		return 0, false
	}
	remaining := p.Total - p.Processed
	if remaining < 0 {
		remaining = 0
	}
	perEntry := float64(elapsed) / float64(p.Processed)
	return time.Duration(float64(remaining) * perEntry), true
}

// FormatEstimate renders the estimate in seconds below one minute and in
// rounded minutes above.
func FormatEstimate(p Progress, elapsed time.Duration) string {
	left, ok := EstimateRemaining(p, elapsed)
	if !ok {
		return "no estimate"
	}
	secs := int(math.Round(left.Seconds()))
	if secs < 60 {
		return fmt.Sprintf("~%ds remaining", secs)
	}
	return fmt.Sprintf("~%dm remaining", int(math.Round(float64(secs)/60)))
}

// DebugInfo carries diagnostics of a finished run.
type DebugInfo struct {
	TotalParsed       int           `json:"total_parsed"`
	DuplicatesSkipped int           `json:"duplicates_skipped"`
	APIFailures       int           `json:"api_failures"`
	DBFailures        int           `json:"db_failures"`
	TotalBatches      int           `json:"total_batches"`
	AvgBatchTime      time.Duration `json:"avg_batch_time"`
}

// Result is the terminal summary of one run.
type Result struct {
	Successful int       `json:"successful"`
	Failed     int       `json:"failed"`
	Errors     []string  `json:"errors"`
	Debug      DebugInfo `json:"debug_info"`
}

// Duplicates is the number of rows skipped because their catalog id was
// already imported in this run.
func (r *Result) Duplicates() int {
	return r.Debug.DuplicatesSkipped
}

func averageDuration(ds []time.Duration) time.Duration {
	if len(ds) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range ds {
		sum += d
	}
	return sum / time.Duration(len(ds))
}

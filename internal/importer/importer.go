// Package importer reconciles a Letterboxd export against the movie catalog
// and writes the matches into the user's watched list.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mediahub/internal/catalog"
	"mediahub/internal/library"
	"mediahub/internal/metrics"
)

const (
	DefaultConcurrency = 5
	DefaultBatchDelay  = 250 * time.Millisecond
)

// Store persists one reconciled entry.
type Store interface {
	UpsertRated(ctx context.Context, item library.RatedItem) error
}

// Options tunes a run. Zero values fall back to the defaults.
type Options struct {
	// Concurrency is both the batch size and the number of entries in
	// flight at once.
	Concurrency int
	BatchDelay  time.Duration
	Logger      *slog.Logger
}

// Importer runs batched imports against one catalog and one store.
type Importer struct {
	catalog     catalog.Searcher
	store       Store
	concurrency int
	batchDelay  time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

func New(c catalog.Searcher, store Store, opts Options) *Importer {
	im := &Importer{
		catalog:     c,
		store:       store,
		concurrency: opts.Concurrency,
		batchDelay:  opts.BatchDelay,
		logger:      opts.Logger,
		now:         time.Now,
	}
	if im.concurrency < 1 {
		im.concurrency = DefaultConcurrency
	}
	if im.batchDelay == 0 {
		im.batchDelay = DefaultBatchDelay
	}
	if im.logger == nil {
		im.logger = slog.Default()
	}
	return im
}

type outcomeKind int

const (
	imported outcomeKind = iota
	duplicate
	notFound
	catalogFailed
	storeFailed
	panicked
)

func (k outcomeKind) label() string {
	switch k {
	case imported:
		return metrics.OutcomeSuccess
	case duplicate:
		return metrics.OutcomeDuplicate
	case notFound:
		return metrics.OutcomeNotFound
	case catalogFailed:
		return metrics.OutcomeCatalog
	case panicked:
		return metrics.OutcomePanic
	default:
		return metrics.OutcomeStore
	}
}

type outcome struct {
	kind outcomeKind
	msg  string
}

// Run imports entries batch by batch and returns the summary. Individual
// failures are recorded in the result; Run itself never fails. onProgress
// may be nil and receives a copy of the progress after every batch.
func (im *Importer) Run(ctx context.Context, entries []Entry, onProgress func(Progress)) *Result {
	startedAt := im.now()
	batches := Chunk(entries, im.concurrency)

	progress := Progress{
		Total:        len(entries),
		TotalBatches: len(batches),
		Errors:       []string{},
		StartedAt:    startedAt,
	}
	result := &Result{
		Errors: []string{},
		Debug: DebugInfo{
			TotalParsed:  len(entries),
			TotalBatches: len(batches),
		},
	}

	metrics.ImportRunsActive.Inc()
	defer metrics.ImportRunsActive.Dec()

	im.logger.Info("import_started", "entries", len(entries), "batches", len(batches), "concurrency", im.concurrency)

	claims := newClaimSet()
	batchTimes := make([]time.Duration, 0, len(batches))

	for i, batch := range batches {
		batchStart := time.Now()
		progress.CurrentBatch = i + 1
		progress.CurrentItems = titles(batch)

		if err := ctx.Err(); err != nil {
			msg := fmt.Sprintf("Batch %d failed: %v", i+1, err)
			result.Errors = append(result.Errors, msg)
			result.Failed += len(batch)
			metrics.ImportEntries.WithLabelValues(metrics.OutcomeBatch).Add(float64(len(batch)))
			im.logger.Warn("import_batch_failed", "batch", i+1, "entries", len(batch), "error", err)
		} else {
			ok, failed, dups := im.tally(result, im.processBatch(ctx, batch, claims))
			im.logger.Info("import_batch_completed",
				"batch", i+1,
				"of", len(batches),
				"successful", ok,
				"failed", failed,
				"duplicates", dups,
				"duration_ms", time.Since(batchStart).Milliseconds(),
			)
		}

		elapsed := time.Since(batchStart)
		batchTimes = append(batchTimes, elapsed)
		metrics.ImportBatchDuration.Observe(elapsed.Seconds())

		progress.Processed += len(batch)
		progress.Successful = result.Successful
		progress.Failed = result.Failed
		progress.Errors = result.Errors
		if onProgress != nil {
			onProgress(progress.Clone())
		}

		if i < len(batches)-1 {
			pause(ctx, im.batchDelay)
		}
	}

	result.Debug.AvgBatchTime = averageDuration(batchTimes)

	im.logger.Info("import_completed",
		"successful", result.Successful,
		"failed", result.Failed,
		"duplicates", result.Debug.DuplicatesSkipped,
		"api_failures", result.Debug.APIFailures,
		"db_failures", result.Debug.DBFailures,
		"duration_ms", im.now().Sub(startedAt).Milliseconds(),
	)
	return result
}

// processBatch reconciles every entry of batch concurrently and waits for
// all of them.
func (im *Importer) processBatch(ctx context.Context, batch []Entry, claims *claimSet) []outcome {
	outcomes := make([]outcome, len(batch))
	fanOut(len(batch),
		func(i int) {
			outcomes[i] = im.processEntry(ctx, batch[i], claims)
		},
		func(i int, v any) {
			outcomes[i] = outcome{
				kind: panicked,
				msg:  fmt.Sprintf("Unexpected error processing %s: %v", batch[i].Title, v),
			}
		},
	)
	return outcomes
}

func (im *Importer) tally(result *Result, outcomes []outcome) (ok, failed, dups int) {
	for _, o := range outcomes {
		metrics.ImportEntries.WithLabelValues(o.kind.label()).Inc()
		switch o.kind {
		case imported:
			ok++
		case duplicate:
			dups++
		default:
			failed++
			result.Errors = append(result.Errors, o.msg)
		}
		switch o.kind {
		case notFound, catalogFailed:
			result.Debug.APIFailures++
		case storeFailed:
			result.Debug.DBFailures++
		}
	}
	result.Successful += ok
	result.Failed += failed
	result.Debug.DuplicatesSkipped += dups
	return ok, failed, dups
}

func (im *Importer) processEntry(ctx context.Context, entry Entry, claims *claimSet) outcome {
	match, err := im.findMatch(ctx, entry)
	if err != nil {
		return outcome{kind: catalogFailed, msg: fmt.Sprintf("Error searching for %s: %v", entry.Title, err)}
	}
	if match == nil {
		return outcome{kind: notFound, msg: fmt.Sprintf("Movie not found: %s (%s)", entry.Title, entry.Year)}
	}

	if !claims.claim(match.ID) {
		return outcome{kind: duplicate}
	}

	item := library.RatedItem{
		Item:      *match,
		Rating:    entry.ConvertedRating(),
		WatchedAt: entry.WatchedAt(im.now()),
	}
	if err := im.store.UpsertRated(ctx, item); err != nil {
		return outcome{kind: storeFailed, msg: fmt.Sprintf("Error processing %s: %v", entry.Title, err)}
	}
	return outcome{kind: imported}
}

// findMatch searches "{title} {year}" first and the bare title when that
// finds nothing. Among the first results an exact release-year match wins.
func (im *Importer) findMatch(ctx context.Context, entry Entry) (*catalog.Item, error) {
	query := entry.Title
	if entry.Year != "" {
		query = entry.Title + " " + entry.Year
	}

	results, err := im.catalog.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		if entry.Year == "" {
			return nil, nil
		}
		results, err = im.catalog.Search(ctx, entry.Title)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return nil, nil
		}
		return &results[0], nil
	}

	if year := entry.ReleaseYear(); year != 0 {
		for i := range results {
			if results[i].ReleaseYear == year || strings.HasPrefix(results[i].ReleaseDate, entry.Year) {
				return &results[i], nil
			}
		}
	}
	return &results[0], nil
}

func titles(batch []Entry) []string {
	out := make([]string, len(batch))
	for i, e := range batch {
		out[i] = e.Title
	}
	return out
}

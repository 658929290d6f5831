package command

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mediahub/internal/importer"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check that a Letterboxd export can be imported",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readExport(args[0])
		if err != nil {
			return err
		}
		entries, err := importer.ParseCSV(text)
		if err != nil {
			return fmt.Errorf("invalid export: %w", err)
		}
		rated := 0
		for _, e := range entries {
			if e.ConvertedRating() != nil {
				rated++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %d entries ready to import (%d rated)\n", len(entries), rated)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a Letterboxd export into your watched movies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readExport(args[0])
		if err != nil {
			return err
		}

		a, session, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		start := time.Now()
		result, err := a.Import.Run(cmd.Context(), session, text, func(p importer.Progress) {
			fmt.Fprintln(out, progressLine(p, time.Since(start)))
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(out, renderImportSummary(result))
		printErrors(out, result.Errors, 10)
		return nil
	},
}

func readExport(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read export: %w", err)
	}
	return string(b), nil
}

func progressLine(p importer.Progress, elapsed time.Duration) string {
	return fmt.Sprintf("Batch %d/%d: %d/%d processed (%.0f%%), %d imported, %d failed, %s",
		p.CurrentBatch, p.TotalBatches, p.Processed, p.Total, p.Percent(),
		p.Successful, p.Failed, importer.FormatEstimate(p, elapsed))
}

func renderImportSummary(r *importer.Result) string {
	rows := [][]string{
		{"Imported", strconv.Itoa(r.Successful)},
		{"Failed", strconv.Itoa(r.Failed)},
		{"Duplicates skipped", strconv.Itoa(r.Debug.DuplicatesSkipped)},
		{"Catalog failures", strconv.Itoa(r.Debug.APIFailures)},
		{"Storage failures", strconv.Itoa(r.Debug.DBFailures)},
		{"Batches", strconv.Itoa(r.Debug.TotalBatches)},
		{"Avg batch time", r.Debug.AvgBatchTime.Round(time.Millisecond).String()},
	}
	return renderTable([]string{"Import", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
}

func printErrors(w io.Writer, errs []string, limit int) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%d errors:\n", len(errs))
	for i, e := range errs {
		if i == limit {
			fmt.Fprintf(w, "  ... and %d more\n", len(errs)-limit)
			return
		}
		fmt.Fprintf(w, "  - %s\n", e)
	}
}

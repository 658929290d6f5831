package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Canonical column names of a Letterboxd export.
const (
	ColumnName          = "Name"
	ColumnYear          = "Year"
	ColumnLetterboxdURI = "Letterboxd URI"
	ColumnRating        = "Rating"
	ColumnRewatch       = "Rewatch"
	ColumnTags          = "Tags"
	ColumnWatchedDate   = "Watched Date"
)

// headerSynonyms maps a normalised (trimmed, unquoted, lower-cased) header to
// its canonical column.
var headerSynonyms = map[string]string{
	"name":           ColumnName,
	"year":           ColumnYear,
	"letterboxd uri": ColumnLetterboxdURI,
	"rating":         ColumnRating,
	"rewatch":        ColumnRewatch,
	"tags":           ColumnTags,
	"watched date":   ColumnWatchedDate,
}

// ValidationError reports a CSV document that cannot be imported at all.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidationError reports whether err is, or wraps, a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Entry is one row of the export.
type Entry struct {
	Title         string `json:"title"`
	Year          string `json:"year,omitempty"`
	LetterboxdURI string `json:"letterboxd_uri,omitempty"`
	Rating        string `json:"rating,omitempty"`
	Rewatch       string `json:"rewatch,omitempty"`
	Tags          string `json:"tags,omitempty"`
	WatchedDate   string `json:"watched_date,omitempty"`
}

// ReleaseYear returns the parsed year or 0 when absent or malformed.
func (e Entry) ReleaseYear() int {
	y, err := strconv.Atoi(e.Year)
	if err != nil {
		return 0
	}
	return y
}

// ConvertedRating maps the 0.5-5 star scale to 0-10. A missing, zero or
// malformed rating yields nil, meaning unrated.
func (e Entry) ConvertedRating() *float64 {
	if e.Rating == "" {
		return nil
	}
	stars, err := strconv.ParseFloat(e.Rating, 64)
	if err != nil || stars <= 0 {
		return nil
	}
	r := stars * 2
	if r > 10 {
		r = 10
	}
	return &r
}

// WatchedAt parses the watched date, falling back to fallback.
func (e Entry) WatchedAt(fallback time.Time) time.Time {
	if e.WatchedDate == "" {
		return fallback
	}
	t, err := time.Parse(time.DateOnly, e.WatchedDate)
	if err != nil {
		return fallback
	}
	return t
}

// ParseCSV reads an export into entries. Rows without a title are dropped.
func ParseCSV(text string) ([]Entry, error) {
	records, err := readRecords(text)
	if err != nil {
		return nil, err
	}

	columns, err := mapHeader(records[0])
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return nil, &ValidationError{Reason: "CSV file appears to be empty or has no data rows"}
	}

	entries := make([]Entry, 0, len(records)-1)
	for _, row := range records[1:] {
		get := func(col string) string {
			idx, ok := columns[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		entry := Entry{
			Title:         get(ColumnName),
			Year:          get(ColumnYear),
			LetterboxdURI: get(ColumnLetterboxdURI),
			Rating:        get(ColumnRating),
			Rewatch:       get(ColumnRewatch),
			Tags:          get(ColumnTags),
			WatchedDate:   get(ColumnWatchedDate),
		}
		if entry.Title == "" {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Validation is the outcome of ValidateCSV.
type Validation struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidateCSV checks that text is an importable export without running it.
func ValidateCSV(text string) Validation {
	if _, err := ParseCSV(text); err != nil {
		return Validation{Valid: false, Error: err.Error()}
	}
	return Validation{Valid: true}
}

func readRecords(text string) ([][]string, error) {
	text = strings.TrimPrefix(text, "\ufeff")

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, &ValidationError{Reason: "CSV format error", Err: err}
	}
	if len(records) == 0 || isBlankRow(records[0]) {
		return nil, &ValidationError{Reason: "CSV file appears to have no headers"}
	}
	return records, nil
}

func mapHeader(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, h := range header {
		normalized := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(h, `"`, "")))
		canonical, ok := headerSynonyms[normalized]
		if !ok {
			continue
		}
		if _, dup := columns[canonical]; !dup {
			columns[canonical] = i
		}
	}

	if _, ok := columns[ColumnName]; !ok {
		return nil, &ValidationError{Reason: "missing required column: Name. Make sure this is a Letterboxd export file"}
	}
	return columns, nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

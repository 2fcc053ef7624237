package models

import (
	"fmt"
	"time"
)

// FetchError is a network, HTTP, or payload-parse failure from a remote
// source. It aborts the run for the affected dataset.
type FetchError struct {
	Source     string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s fetch failed: %s returned status %d", e.Source, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s fetch failed: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ValidationError is a schema or type mismatch found in raw data. It carries
// the offending row so the user can locate the bad input.
type ValidationError struct {
	Dataset string
	Row     int
	Field   string
	Value   string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s row %d: field %q value %q: %s", e.Dataset, e.Row, e.Field, e.Value, e.Reason)
}

// CleanReport summarizes what a cleaner did to a dataset. Nothing is
// discarded without being counted here.
type CleanReport struct {
	Dataset             string
	RowsIn              int
	RowsOut             int
	RowsRejected        int
	DuplicatesCollapsed int
	ValuesImputed       int
	ValuesNulled        int
	OutliersFlagged     int
}

// MergeReport records how many rows each side of the inner join lost to
// unmatched dates. It is a warning, never an error.
type MergeReport struct {
	RowsOut          int
	DroppedWeather   int
	DroppedAir       int
	UnmatchedWeather []time.Time
	UnmatchedAir     []time.Time
}

// HasDrops reports whether any input row failed to find a join partner.
func (m *MergeReport) HasDrops() bool {
	return m.DroppedWeather > 0 || m.DroppedAir > 0
}

package extrapolate

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Query names used in reports.
const (
	QueryAggregate  = "aggregate"
	QueryMinPresses = "min-presses"
)

// Report is the exportable record of one query run.
type Report struct {
	RunID     string           `json:"run_id"`
	Query     string           `json:"query"`
	Input     string           `json:"input,omitempty"`
	Digest    string           `json:"digest,omitempty"`
	Created   time.Time        `json:"created"`
	Elapsed   time.Duration    `json:"elapsed_ns"`
	Cached    bool             `json:"cached"`
	Config    Config           `json:"config"`
	Aggregate *AggregateResult `json:"aggregate,omitempty"`
	Min       *MinResult       `json:"min_presses,omitempty"`
}

// NewReport starts a report for the given query with a fresh run ID.
func NewReport(query string, cfg Config) *Report {
	return &Report{
		RunID:   uuid.NewString(),
		Query:   query,
		Created: time.Now().UTC(),
		Config:  cfg,
	}
}

// Answer returns the headline number of the report.
func (r *Report) Answer() (int64, error) {
	switch {
	case r.Aggregate != nil:
		return r.Aggregate.Product, nil
	case r.Min != nil:
		return r.Min.Presses, nil
	}
	return 0, fmt.Errorf("extrapolate: report %s has no result", r.RunID)
}

// ExportJSON exports the report in indented JSON.
func (r *Report) ExportJSON() ([]byte, error) {
	if r.Aggregate == nil && r.Min == nil {
		return nil, fmt.Errorf("extrapolate: report %s has no result", r.RunID)
	}
	return json.MarshalIndent(r, "", "  ")
}

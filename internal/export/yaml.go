// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/jstage-search/pkg/types"
)

// Run is one completed fetch: the query that produced it and its result.
type Run struct {
	Query     types.Query
	Result    types.Result
	FetchedAt time.Time
}

// RunFile is the on-disk YAML representation of a Run. A saved run can be
// re-exported to other formats later without querying the API again.
type RunFile struct {
	Query   QueryParams    `yaml:"query"`
	Summary RunSummary     `yaml:"summary"`
	Records []types.Record `yaml:"records"`
}

// QueryParams stores the query parameters in a serializable form.
type QueryParams struct {
	Term       string `yaml:"term"`
	YearFrom   int    `yaml:"year_from"`
	Field      string `yaml:"field"`
	MaxRecords int    `yaml:"max_records"`
	Interval   string `yaml:"interval,omitempty"`
}

// RunSummary stores result statistics and a timestamp.
type RunSummary struct {
	Records      int       `yaml:"records"`
	TotalResults *int      `yaml:"total_results"`
	UniqueDOIs   int       `yaml:"unique_dois"`
	FetchedAt    time.Time `yaml:"fetched_at"`
}

// NewRunFile converts run to its serializable form.
func NewRunFile(run Run) RunFile {
	rf := RunFile{
		Query: QueryParams{
			Term:       run.Query.Term,
			YearFrom:   run.Query.YearFrom,
			Field:      string(run.Query.Field),
			MaxRecords: run.Query.MaxRecords,
		},
		Summary: RunSummary{
			Records:      len(run.Result.Records),
			TotalResults: run.Result.TotalCount,
			UniqueDOIs:   run.Result.UniqueDOIs(),
			FetchedAt:    run.FetchedAt,
		},
		Records: run.Result.Records,
	}
	if run.Query.Interval > 0 {
		rf.Query.Interval = run.Query.Interval.String()
	}
	if rf.Records == nil {
		rf.Records = []types.Record{}
	}
	return rf
}

// WriteYAML writes run as a RunFile document.
func WriteYAML(w io.Writer, run Run) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewRunFile(run)); err != nil {
		return fmt.Errorf("marshaling run file: %w", err)
	}
	return enc.Close()
}

// ReadRunFile loads a previously saved YAML run from disk.
func ReadRunFile(path string) (Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Run{}, fmt.Errorf("reading run file: %w", err)
	}
	var rf RunFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return Run{}, fmt.Errorf("parsing run file: %w", err)
	}
	q, err := rf.Query.ToQuery()
	if err != nil {
		return Run{}, err
	}
	for i := range rf.Records {
		if rf.Records[i].Authors == nil {
			rf.Records[i].Authors = []string{}
		}
	}
	return Run{
		Query:     q,
		Result:    types.Result{Records: rf.Records, TotalCount: rf.Summary.TotalResults},
		FetchedAt: rf.Summary.FetchedAt,
	}, nil
}

// ToQuery converts stored QueryParams back into a Query.
func (p QueryParams) ToQuery() (types.Query, error) {
	field, err := types.ParseField(p.Field)
	if err != nil {
		return types.Query{}, err
	}
	q := types.Query{
		Term:       p.Term,
		YearFrom:   p.YearFrom,
		Field:      field,
		MaxRecords: p.MaxRecords,
	}
	if p.Interval != "" {
		d, err := time.ParseDuration(p.Interval)
		if err != nil {
			return q, fmt.Errorf("invalid interval %q: %w", p.Interval, err)
		}
		q.Interval = d
	}
	return q, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for jstage-search: the query
// parameters accepted by the fetcher, the normalized Record rows it returns,
// and the configuration structs read by the CLI.
package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidQuery is returned (wrapped) by Query.Validate.
var ErrInvalidQuery = errors.New("invalid query")

// Field selects which part of an article the search term is matched against.
type Field string

const (
	FieldArticle  Field = "article"
	FieldAbstract Field = "abstract"
	FieldFullText Field = "full_text"
)

// Fields lists the supported search fields in display order.
var Fields = []Field{FieldArticle, FieldAbstract, FieldFullText}

// Param returns the query-string parameter name the search API expects for f.
func (f Field) Param() string {
	switch f {
	case FieldArticle:
		return "article"
	case FieldAbstract:
		return "abst"
	case FieldFullText:
		return "text"
	}
	return ""
}

// ParseField accepts a canonical field name or its API parameter name.
func ParseField(s string) (Field, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range Fields {
		if s == string(f) || s == f.Param() {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown field %q (want article, abstract or full_text)", ErrInvalidQuery, s)
}

// Query holds the parameters of one fetch call. It is immutable for the
// duration of the call.
type Query struct {
	// Term is the free-text search term. It is URL-encoded by the fetcher.
	Term string `json:"term" yaml:"term"`

	// YearFrom is the inclusive lower bound on publication year, forwarded verbatim.
	YearFrom int `json:"year_from" yaml:"year_from"`

	// Field selects the article field the term is matched against.
	Field Field `json:"field" yaml:"field"`

	// MaxRecords caps the number of records returned.
	MaxRecords int `json:"max_records" yaml:"max_records"`

	// Interval is the delay enforced before every page request after the first.
	Interval time.Duration `json:"interval" yaml:"interval"`
}

// Validate reports whether q can be sent to the search API.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Term) == "" {
		return fmt.Errorf("%w: search term is empty", ErrInvalidQuery)
	}
	if q.Field.Param() == "" {
		return fmt.Errorf("%w: unknown field %q", ErrInvalidQuery, q.Field)
	}
	if q.MaxRecords <= 0 {
		return fmt.Errorf("%w: max records must be positive, got %d", ErrInvalidQuery, q.MaxRecords)
	}
	if q.Interval < 0 {
		return fmt.Errorf("%w: request interval must not be negative, got %v", ErrInvalidQuery, q.Interval)
	}
	return nil
}

// Result is the output of one fetch call.
type Result struct {
	// Records are the normalized rows in page and entry order.
	Records []Record `json:"records" yaml:"records"`

	// TotalCount is the result count reported on the first page that carried
	// one, or nil when the API never reported it.
	TotalCount *int `json:"total_count" yaml:"total_count"`
}

// UniqueDOIs counts distinct non-empty DOIs across the records.
func (r Result) UniqueDOIs() int {
	seen := make(map[string]struct{})
	for _, rec := range r.Records {
		if rec.DOI != nil && *rec.DOI != "" {
			seen[*rec.DOI] = struct{}{}
		}
	}
	return len(seen)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes fetch results to files: CSV with the author list
// joined into one cell, JSON and YAML with authors as arrays, Parquet with
// authors as a list column, and CSL-YAML for reference managers. It also
// derives file names and autosaves a result in several formats at once.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/pdiddy/jstage-search/pkg/types"
)

// Options controls format-specific output.
type Options struct {
	// AuthorSeparator joins authors in CSV output (default "; ").
	AuthorSeparator string
}

func (o Options) separator() string {
	if o.AuthorSeparator == "" {
		return types.DefaultExportConfig().AuthorSeparator
	}
	return o.AuthorSeparator
}

// ParseFormats parses format names such as "csv", "JSON" or "parquet".
// Duplicates are dropped; order is kept.
func ParseFormats(names []string) ([]types.ExportFormat, error) {
	var out []types.ExportFormat
	seen := make(map[types.ExportFormat]bool)
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			f := types.ExportFormat(part)
			if part == "yml" {
				f = types.FormatYAML
			}
			switch f {
			case types.FormatCSV, types.FormatJSON, types.FormatYAML, types.FormatParquet, types.FormatCSL:
			default:
				return nil, fmt.Errorf("unsupported format %q: use csv, json, yaml, parquet or csl", part)
			}
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out, nil
}

// Extension returns the file extension for f, without the dot.
func Extension(f types.ExportFormat) string {
	if f == types.FormatCSL {
		return "csl.yaml"
	}
	return string(f)
}

// Write encodes a run in format f to w.
func Write(w io.Writer, f types.ExportFormat, run Run, opts Options) error {
	switch f {
	case types.FormatCSV:
		return WriteCSV(w, run.Result.Records, opts.separator())
	case types.FormatJSON:
		return WriteJSON(w, run.Result.Records)
	case types.FormatYAML:
		return WriteYAML(w, run)
	case types.FormatParquet:
		return WriteParquet(w, run.Result.Records)
	case types.FormatCSL:
		return WriteCSL(w, run.Result.Records)
	default:
		return fmt.Errorf("unsupported format %q", f)
	}
}

// BaseName derives the file name stem for a run:
// jstage_{term}_{field}_{year}_{YYYYMMDD_HHMMSS}, where field is the API
// parameter name and every rune of the term that is not a letter or digit is
// replaced by an underscore.
func BaseName(q types.Query, at time.Time) string {
	return fmt.Sprintf("jstage_%s_%s_%d_%s",
		SanitizeTerm(q.Term), q.Field.Param(), q.YearFrom, at.Format("20060102_150405"))
}

// SanitizeTerm replaces every rune that is not a letter or digit with '_'.
func SanitizeTerm(term string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return '_'
	}, term)
}

// Autosave writes run to dir/base.<ext> once per format and returns the
// paths written, in format order. An empty result writes nothing.
func Autosave(dir, base string, formats []types.ExportFormat, run Run, opts Options) ([]string, error) {
	if len(run.Result.Records) == 0 || len(formats) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var paths []string
	for _, f := range formats {
		path := filepath.Join(dir, base+"."+Extension(f))
		if err := writeFile(path, f, run, opts); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, f types.ExportFormat, run Run, opts Options) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(file, f, run, opts); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return file.Close()
}

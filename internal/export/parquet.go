// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/pdiddy/jstage-search/pkg/types"
)

// WriteParquet writes records as a single Parquet file. Authors is a LIST of
// strings; the scalar fields are optional columns.
func WriteParquet(w io.Writer, records []types.Record) error {
	pw := parquet.NewGenericWriter[types.Record](w)
	if _, err := pw.Write(records); err != nil {
		pw.Close()
		return fmt.Errorf("writing parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("closing parquet writer: %w", err)
	}
	return nil
}

// ReadParquet reads records written by WriteParquet.
func ReadParquet(r io.ReaderAt, size int64) ([]types.Record, error) {
	rows, err := parquet.Read[types.Record](r, size)
	if err != nil {
		return nil, fmt.Errorf("reading parquet rows: %w", err)
	}
	return rows, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/jstage-search/pkg/types"
)

// WriteCSV writes records as CSV with a header row in types.Columns order.
// Authors are joined with sep; nil fields are written as empty cells.
func WriteCSV(w io.Writer, records []types.Record, sep string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(types.Columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, r := range records {
		row := []string{
			strings.Join(r.Authors, sep),
			str(r.ArticleTitle),
			str(r.MaterialTitle),
			str(r.ArticleLink),
			num(r.PublicationYear),
			str(r.DOI),
			str(r.Volume),
			str(r.SeriesID),
			str(r.IssueNumber),
			num(r.StartingPage),
			num(r.EndingPage),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func num(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

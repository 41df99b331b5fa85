// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/jstage-search/pkg/types"
)

func sp(s string) *string { return &s }
func ip(n int) *int       { return &n }

func testRun() Run {
	total := 42
	return Run{
		Query: types.Query{
			Term:       "因果 推論",
			YearFrom:   1950,
			Field:      types.FieldArticle,
			MaxRecords: 20000,
			Interval:   1500 * time.Millisecond,
		},
		Result: types.Result{
			Records: []types.Record{
				{
					Authors:         []string{"山田 太郎", "鈴木 花子"},
					ArticleTitle:    sp("因果推論の実践"),
					MaterialTitle:   sp("例示学会誌"),
					ArticleLink:     sp("https://www.jstage.jst.go.jp/article/x/_article/-char/ja"),
					PublicationYear: ip(2019),
					DOI:             sp("10.1234/a"),
					Volume:          sp("12"),
					SeriesID:        sp("12_3"),
					IssueNumber:     sp("3"),
					StartingPage:    ip(101),
					EndingPage:      ip(115),
				},
				{
					Authors:      []string{"Solo, Author"},
					ArticleTitle: sp("Second, with comma"),
					DOI:          sp("10.1234/a"),
				},
			},
			TotalCount: &total,
		},
		FetchedAt: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
	}
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats([]string{"CSV, json", "parquet", "yml", "csv", "csl"})
	require.NoError(t, err)
	assert.Equal(t, []types.ExportFormat{types.FormatCSV, types.FormatJSON, types.FormatParquet, types.FormatYAML, types.FormatCSL}, got)

	_, err = ParseFormats([]string{"xlsx"})
	assert.ErrorContains(t, err, "unsupported format")

	got, err = ParseFormats(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBaseName(t *testing.T) {
	q := types.Query{Term: "因果 a/b", YearFrom: 1950, Field: types.FieldAbstract}
	at := time.Date(2026, 10, 19, 8, 5, 3, 0, time.Local)
	assert.Equal(t, "jstage_因果_a_b_abst_1950_20261019_080503", BaseName(q, at))
}

func TestSanitizeTerm(t *testing.T) {
	tests := []struct{ in, want string }{
		{"deep learning", "deep_learning"},
		{"学際", "学際"},
		{"C++/C#", "C___C_"},
		{"２０２０年", "２０２０年"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeTerm(tt.in), tt.in)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testRun().Result.Records, " | "))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, types.Columns, rows[0])
	assert.Equal(t, []string{
		"山田 太郎 | 鈴木 花子", "因果推論の実践", "例示学会誌",
		"https://www.jstage.jst.go.jp/article/x/_article/-char/ja",
		"2019", "10.1234/a", "12", "12_3", "3", "101", "115",
	}, rows[1])
	assert.Equal(t, []string{
		"Solo, Author", "Second, with comma", "", "", "", "10.1234/a", "", "", "", "", "",
	}, rows[2])
}

func TestWriteCSVEmptyAuthors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []types.Record{{Authors: []string{}}}, "; "))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "", rows[1][0])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, testRun().Result.Records))

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)

	assert.Equal(t, []any{"山田 太郎", "鈴木 花子"}, rows[0]["authors"])
	assert.EqualValues(t, 2019, rows[0]["publication_year"])
	assert.Nil(t, rows[1]["material_title"])
	assert.Contains(t, rows[1], "material_title", "nil fields are written as null")
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestParquetRoundTrip(t *testing.T) {
	records := testRun().Result.Records

	var buf bytes.Buffer
	require.NoError(t, WriteParquet(&buf, records))

	got, err := ReadParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, records[0], got[0])
	assert.Equal(t, records[1].Authors, got[1].Authors)
	assert.Equal(t, records[1].ArticleTitle, got[1].ArticleTitle)
	assert.Nil(t, got[1].MaterialTitle)
	assert.Nil(t, got[1].PublicationYear)
}

func TestYAMLRoundTrip(t *testing.T) {
	run := testRun()
	path := filepath.Join(t.TempDir(), "run.yaml")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteYAML(f, run))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "interval: 1.5s")
	assert.Contains(t, string(data), "unique_dois: 1")

	got, err := ReadRunFile(path)
	require.NoError(t, err)
	assert.Equal(t, run.Query, got.Query)
	assert.Equal(t, run.Result, got.Result)
	assert.True(t, run.FetchedAt.Equal(got.FetchedAt))
}

func TestReadRunFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadRunFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "reading run file")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("query: [unclosed"), 0o644))
	_, err = ReadRunFile(bad)
	assert.ErrorContains(t, err, "parsing run file")

	field := filepath.Join(dir, "field.yaml")
	require.NoError(t, os.WriteFile(field, []byte("query:\n  term: x\n  field: title\n"), 0o644))
	_, err = ReadRunFile(field)
	assert.ErrorIs(t, err, types.ErrInvalidQuery)
}

func TestAutosave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	formats := []types.ExportFormat{types.FormatCSV, types.FormatJSON, types.FormatYAML, types.FormatParquet}

	paths, err := Autosave(dir, "jstage_x", formats, testRun(), Options{})
	require.NoError(t, err)
	require.Len(t, paths, 4)

	for i, ext := range []string{"csv", "json", "yaml", "parquet"} {
		assert.Equal(t, filepath.Join(dir, "jstage_x."+ext), paths[i])
		info, err := os.Stat(paths[i])
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	csvData, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(csvData), "山田 太郎; 鈴木 花子"), "default separator")
}

func TestAutosaveEmptyResultWritesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	paths, err := Autosave(dir, "jstage_x", []types.ExportFormat{types.FormatCSV}, Run{}, Options{})
	require.NoError(t, err)
	assert.Empty(t, paths)
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestParseAuthorName(t *testing.T) {
	tests := []struct {
		in   string
		want CSLName
	}{
		{"山田 太郎", CSLName{Family: "山田", Given: "太郎"}},
		{"Taro Yamada", CSLName{Given: "Taro", Family: "Yamada"}},
		{"Yamada, Taro", CSLName{Family: "Yamada", Given: "Taro"}},
		{"Mary Ann Evans", CSLName{Given: "Mary Ann", Family: "Evans"}},
		{"山田太郎", CSLName{Literal: "山田太郎"}},
		{"  ", CSLName{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseAuthorName(tt.in), tt.in)
	}
}

func TestWriteCSL(t *testing.T) {
	records := testRun().Result.Records
	records = append(records, types.Record{Authors: []string{}, StartingPage: ip(7)})

	var buf bytes.Buffer
	require.NoError(t, WriteCSL(&buf, records))

	var items []CSLItem
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &items))
	require.Len(t, items, 3)

	first := items[0]
	assert.Equal(t, "10.1234/a", first.ID)
	assert.Equal(t, "article-journal", first.Type)
	assert.Equal(t, "例示学会誌", first.ContainerTitle)
	assert.Equal(t, []CSLName{{Family: "山田", Given: "太郎"}, {Family: "鈴木", Given: "花子"}}, first.Author)
	require.NotNil(t, first.Issued)
	assert.Equal(t, [][]int{{2019}}, first.Issued.DateParts)
	assert.Equal(t, "101-115", first.Page)
	assert.Equal(t, "3", first.Issue)

	assert.Equal(t, "jstage-3", items[2].ID)
	assert.Equal(t, "7", items[2].Page)
	assert.Nil(t, items[2].Issued)
	assert.Empty(t, items[2].Author)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "csv", Extension(types.FormatCSV))
	assert.Equal(t, "csl.yaml", Extension(types.FormatCSL))
}

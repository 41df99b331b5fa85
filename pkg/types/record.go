// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Record is one normalized bibliographic row derived from a single entry of
// a search response. Optional fields are nil when the entry did not carry a
// usable value. Authors is never nil once produced by the extractor.
type Record struct {
	// Authors lists author names in document order.
	Authors []string `json:"authors" yaml:"authors" parquet:"authors,list"`

	ArticleTitle  *string `json:"article_title" yaml:"article_title" parquet:"article_title,optional"`
	MaterialTitle *string `json:"material_title" yaml:"material_title" parquet:"material_title,optional"`
	ArticleLink   *string `json:"article_link" yaml:"article_link" parquet:"article_link,optional"`

	PublicationYear *int `json:"publication_year" yaml:"publication_year" parquet:"publication_year,optional"`

	DOI    *string `json:"doi" yaml:"doi" parquet:"doi,optional"`
	Volume *string `json:"volume" yaml:"volume" parquet:"volume,optional"`

	// SeriesID is the journal-assigned volume series code (cdvols).
	SeriesID    *string `json:"series_id" yaml:"series_id" parquet:"series_id,optional"`
	IssueNumber *string `json:"issue_number" yaml:"issue_number" parquet:"issue_number,optional"`

	StartingPage *int `json:"starting_page" yaml:"starting_page" parquet:"starting_page,optional"`
	EndingPage   *int `json:"ending_page" yaml:"ending_page" parquet:"ending_page,optional"`
}

// Columns is the stable column order used by tabular exports.
var Columns = []string{
	"authors",
	"article_title",
	"material_title",
	"article_link",
	"publication_year",
	"doi",
	"volume",
	"series_id",
	"issue_number",
	"starting_page",
	"ending_page",
}

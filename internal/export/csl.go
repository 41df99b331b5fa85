// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/jstage-search/pkg/types"
)

// CSLItem is a bibliographic entry in CSL (Citation Style Language) form.
// Field names follow the CSL-JSON/CSL-YAML schema so output can be read by
// Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Author         []CSLName `yaml:"author,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	Volume         string    `yaml:"volume,omitempty"`
	Issue          string    `yaml:"issue,omitempty"`
	Page           string    `yaml:"page,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
}

// CSLName is a person's name in CSL form.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate is a CSL date using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// WriteCSL writes records as a CSL-YAML list.
func WriteCSL(w io.Writer, records []types.Record) error {
	items := make([]CSLItem, len(records))
	for i, r := range records {
		items[i] = toCSLItem(i, r)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("marshaling CSL items: %w", err)
	}
	return enc.Close()
}

func toCSLItem(i int, r types.Record) CSLItem {
	item := CSLItem{
		ID:             fmt.Sprintf("jstage-%d", i+1),
		Type:           "article-journal",
		Title:          str(r.ArticleTitle),
		ContainerTitle: str(r.MaterialTitle),
		DOI:            str(r.DOI),
		Volume:         str(r.Volume),
		Issue:          str(r.IssueNumber),
		URL:            str(r.ArticleLink),
	}
	if item.DOI != "" {
		item.ID = item.DOI
	}
	for _, a := range r.Authors {
		if n := parseAuthorName(a); n != (CSLName{}) {
			item.Author = append(item.Author, n)
		}
	}
	if r.PublicationYear != nil {
		item.Issued = &CSLDate{DateParts: [][]int{{*r.PublicationYear}}}
	}
	switch {
	case r.StartingPage != nil && r.EndingPage != nil:
		item.Page = fmt.Sprintf("%d-%d", *r.StartingPage, *r.EndingPage)
	case r.StartingPage != nil:
		item.Page = fmt.Sprint(*r.StartingPage)
	}
	return item
}

// parseAuthorName splits a full name into CSL family/given parts.
// "Family, Given" is split at the comma. Names written in Japanese script
// put the family name first; other names put it last. Single-token names
// use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	if family, given, ok := strings.Cut(name, ","); ok {
		return CSLName{Family: strings.TrimSpace(family), Given: strings.TrimSpace(given)}
	}

	parts := strings.Fields(name)
	if len(parts) < 2 {
		return CSLName{Literal: name}
	}
	if isJapanese(name) {
		return CSLName{Family: parts[0], Given: strings.Join(parts[1:], " ")}
	}
	last := len(parts) - 1
	return CSLName{Given: strings.Join(parts[:last], " "), Family: parts[last]}
}

func isJapanese(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana) {
			return true
		}
	}
	return false
}

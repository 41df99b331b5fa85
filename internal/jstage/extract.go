// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jstage

import (
	"strconv"
	"strings"

	"github.com/pdiddy/jstage-search/internal/xmltree"
	"github.com/pdiddy/jstage-search/pkg/types"
)

// Namespaces used by search responses.
const (
	NSAtom       = "http://www.w3.org/2005/Atom"
	NSPrism      = "http://prismstandard.org/namespaces/basic/2.0/"
	NSOpenSearch = "http://a9.com/-/spec/opensearch/1.1/"
)

// DefaultLanguage is the language whose tagged values are preferred.
const DefaultLanguage = "ja"

// Extractor turns entry elements into Records. The zero value prefers
// DefaultLanguage.
type Extractor struct {
	Language string
}

// Extract normalizes one entry using DefaultLanguage.
func Extract(entry *xmltree.Element) types.Record {
	return Extractor{}.Extract(entry)
}

// Extract normalizes one entry into a Record. It never fails: missing or
// malformed fields become nil.
func (x Extractor) Extract(entry *xmltree.Element) types.Record {
	return types.Record{
		Authors:         x.authors(entry),
		ArticleTitle:    x.pick(entry, NSAtom, "article_title", true),
		MaterialTitle:   x.pick(entry, NSAtom, "material_title", true),
		ArticleLink:     x.pick(entry, NSAtom, "article_link", true),
		PublicationYear: toInt(x.pick(entry, NSAtom, "pubyear", false)),
		DOI:             x.pick(entry, NSPrism, "doi", false),
		Volume:          x.pick(entry, NSPrism, "volume", false),
		SeriesID:        x.pick(entry, NSAtom, "cdvols", false),
		IssueNumber:     x.pick(entry, NSPrism, "number", false),
		StartingPage:    toInt(x.pick(entry, NSPrism, "startingPage", false)),
		EndingPage:      toInt(x.pick(entry, NSPrism, "endingPage", false)),
	}
}

func (x Extractor) lang() string {
	if x.Language == "" {
		return DefaultLanguage
	}
	return x.Language
}

// pick returns the text of the first element named local under entry. With
// preferTagged, text inside a language-tagged part of a matching element
// wins over any other text.
func (x Extractor) pick(entry *xmltree.Element, space, local string, preferTagged bool) *string {
	matches := xmltree.TwoTier(space, local).Descendants(entry)
	if preferTagged {
		for _, m := range matches {
			for _, tagged := range x.tagged(m) {
				if t, ok := tagged.FirstText(); ok {
					return &t
				}
			}
		}
	}
	for _, m := range matches {
		if t, ok := m.FirstText(); ok {
			return &t
		}
	}
	return nil
}

// pickAll is pick generalized to a sequence: it returns the texts of every
// element named local found inside the language-tagged parts of the parents,
// or, when there are none, directly under the parents.
func (x Extractor) pickAll(parents []*xmltree.Element, local string) []string {
	names := xmltree.Local(local)

	var tagged []string
	for _, p := range parents {
		for _, group := range x.tagged(p) {
			tagged = appendTexts(tagged, xmltree.Lookup{names}.Children(group))
		}
	}
	if len(tagged) > 0 {
		return tagged
	}

	var plain []string
	for _, p := range parents {
		plain = appendTexts(plain, xmltree.Lookup{names}.Children(p))
	}
	return plain
}

func (x Extractor) authors(entry *xmltree.Element) []string {
	authors := x.pickAll(xmltree.TwoTier(NSAtom, "author").Children(entry), "name")
	if authors == nil {
		return []string{}
	}
	return authors
}

// tagged returns the parts of el that carry the preferred language: el itself
// when its xml:lang matches, and any child element named after the language
// code (<ja>...</ja>) or carrying a matching xml:lang.
func (x Extractor) tagged(el *xmltree.Element) []*xmltree.Element {
	lang := x.lang()
	var out []*xmltree.Element
	if langMatches(el.Lang(), lang) {
		out = append(out, el)
	}
	for _, c := range el.Children {
		if c.Name.Local == lang || langMatches(c.Lang(), lang) {
			out = append(out, c)
		}
	}
	return out
}

func langMatches(tag, lang string) bool {
	if tag == "" {
		return false
	}
	tag = strings.ToLower(tag)
	return tag == lang || strings.HasPrefix(tag, lang+"-")
}

func appendTexts(dst []string, els []*xmltree.Element) []string {
	for _, el := range els {
		if t, ok := el.FirstText(); ok {
			dst = append(dst, t)
		}
	}
	return dst
}

// toInt parses an optional decimal integer; anything unparsable is nil.
func toInt(s *string) *int {
	if s == nil {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*s))
	if err != nil {
		return nil
	}
	return &n
}

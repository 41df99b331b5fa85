// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jstage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/jstage-search/internal/xmltree"
)

// jstageEntry is shaped like an entry of a real service=3 response.
const jstageEntry = `<feed xmlns="http://www.w3.org/2005/Atom"
      xmlns:prism="http://prismstandard.org/namespaces/basic/2.0/"
      xmlns:opensearch="http://a9.com/-/spec/opensearch/1.1/" xml:lang="ja">
  <entry>
    <article_title>
      <en><![CDATA[Causal Inference in Practice]]></en>
      <ja><![CDATA[因果推論の実践]]></ja>
    </article_title>
    <article_link>
      <en>https://www.jstage.jst.go.jp/article/x/1/1/1_1/_article</en>
      <ja>https://www.jstage.jst.go.jp/article/x/1/1/1_1/_article/-char/ja</ja>
    </article_link>
    <author>
      <en><name>Taro Yamada</name><name>Hanako Suzuki</name></en>
      <ja><name>山田 太郎</name><name>鈴木 花子</name></ja>
    </author>
    <cdjournal>x</cdjournal>
    <material_title>
      <en><![CDATA[Journal of Examples]]></en>
      <ja><![CDATA[例示学会誌]]></ja>
    </material_title>
    <prism:issn>1234-5678</prism:issn>
    <prism:volume>12</prism:volume>
    <cdvols>12_3</cdvols>
    <prism:number>3</prism:number>
    <prism:startingPage>101</prism:startingPage>
    <prism:endingPage>115</prism:endingPage>
    <pubyear>2019</pubyear>
    <prism:doi>10.1234/example.12.101</prism:doi>
    <title>Causal Inference in Practice</title>
  </entry>
</feed>`

func parseEntry(t *testing.T, doc string) *xmltree.Element {
	t.Helper()
	root, err := xmltree.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	entries := xmltree.TwoTier(NSAtom, "entry").Descendants(root)
	require.NotEmpty(t, entries)
	return entries[0]
}

func wrapEntry(inner string) string {
	return `<feed><entry>` + inner + `</entry></feed>`
}

func TestExtractFullEntry(t *testing.T) {
	rec := Extract(parseEntry(t, jstageEntry))

	assert.Equal(t, []string{"山田 太郎", "鈴木 花子"}, rec.Authors)
	require.NotNil(t, rec.ArticleTitle)
	assert.Equal(t, "因果推論の実践", *rec.ArticleTitle)
	require.NotNil(t, rec.MaterialTitle)
	assert.Equal(t, "例示学会誌", *rec.MaterialTitle)
	require.NotNil(t, rec.ArticleLink)
	assert.Equal(t, "https://www.jstage.jst.go.jp/article/x/1/1/1_1/_article/-char/ja", *rec.ArticleLink)

	require.NotNil(t, rec.PublicationYear)
	assert.Equal(t, 2019, *rec.PublicationYear)
	require.NotNil(t, rec.DOI)
	assert.Equal(t, "10.1234/example.12.101", *rec.DOI)
	require.NotNil(t, rec.Volume)
	assert.Equal(t, "12", *rec.Volume)
	require.NotNil(t, rec.SeriesID)
	assert.Equal(t, "12_3", *rec.SeriesID)
	require.NotNil(t, rec.IssueNumber)
	assert.Equal(t, "3", *rec.IssueNumber)
	require.NotNil(t, rec.StartingPage)
	assert.Equal(t, 101, *rec.StartingPage)
	require.NotNil(t, rec.EndingPage)
	assert.Equal(t, 115, *rec.EndingPage)
}

func TestExtractLanguagePreference(t *testing.T) {
	tests := []struct {
		name  string
		inner string
		want  string
	}{
		{
			name:  "ja child preferred over en child",
			inner: `<article_title><en>English</en><ja>日本語</ja></article_title>`,
			want:  "日本語",
		},
		{
			name:  "xml:lang ja preferred over other language",
			inner: `<article_title xml:lang="en">English</article_title><article_title xml:lang="ja">日本語</article_title>`,
			want:  "日本語",
		},
		{
			name:  "region subtag counts as tagged",
			inner: `<article_title><en>English</en><x xml:lang="ja-JP">日本語</x></article_title>`,
			want:  "日本語",
		},
		{
			name:  "other language only falls back",
			inner: `<article_title><en>English only</en></article_title>`,
			want:  "English only",
		},
		{
			name:  "untagged text falls back",
			inner: `<article_title>  Plain title  </article_title>`,
			want:  "Plain title",
		},
		{
			name:  "empty ja falls back to first text",
			inner: `<article_title><ja>   </ja><en>English</en></article_title>`,
			want:  "English",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Extract(parseEntry(t, wrapEntry(tt.inner)))
			require.NotNil(t, rec.ArticleTitle)
			assert.Equal(t, tt.want, *rec.ArticleTitle)
		})
	}
}

func TestExtractConfiguredLanguage(t *testing.T) {
	entry := parseEntry(t, wrapEntry(`<article_title><ja>日本語</ja><en>English</en></article_title>`))

	rec := Extractor{Language: "en"}.Extract(entry)
	require.NotNil(t, rec.ArticleTitle)
	assert.Equal(t, "English", *rec.ArticleTitle)
}

func TestExtractAuthors(t *testing.T) {
	tests := []struct {
		name  string
		inner string
		want  []string
	}{
		{
			name:  "tagged names preferred",
			inner: `<author><en><name>A</name></en><ja><name>甲</name><name>乙</name></ja></author>`,
			want:  []string{"甲", "乙"},
		},
		{
			name:  "untagged names as fallback",
			inner: `<author><name>B</name><name>C</name></author>`,
			want:  []string{"B", "C"},
		},
		{
			name:  "xml:lang tagged author element",
			inner: `<author xml:lang="ja"><name>丙</name></author><author><name>D</name></author>`,
			want:  []string{"丙"},
		},
		{
			name:  "duplicates and order kept",
			inner: `<author><ja><name>乙</name><name>甲</name><name>乙</name></ja></author>`,
			want:  []string{"乙", "甲", "乙"},
		},
		{
			name:  "other-language only yields empty",
			inner: `<author><en><name>A</name></en></author>`,
			want:  []string{},
		},
		{
			name:  "no author element",
			inner: `<article_title>x</article_title>`,
			want:  []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Extract(parseEntry(t, wrapEntry(tt.inner)))
			require.NotNil(t, rec.Authors)
			assert.Equal(t, tt.want, rec.Authors)
		})
	}
}

func TestExtractNumericCoercion(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  *int
	}{
		{"plain", "42", intPtr(42)},
		{"padded", " 42 ", intPtr(42)},
		{"roman", "xii", nil},
		{"prefixed", "S12", nil},
		{"range", "12-13", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := "<pubyear>" + tt.value + "</pubyear>" +
				"<startingPage>" + tt.value + "</startingPage>" +
				"<endingPage>" + tt.value + "</endingPage>"
			rec := Extract(parseEntry(t, wrapEntry(inner)))
			assert.Equal(t, tt.want, rec.PublicationYear)
			assert.Equal(t, tt.want, rec.StartingPage)
			assert.Equal(t, tt.want, rec.EndingPage)
		})
	}
}

func TestExtractNamespaceVariants(t *testing.T) {
	docs := map[string]string{
		"prism prefix": `<feed xmlns:prism="http://prismstandard.org/namespaces/basic/2.0/"><entry>
			<prism:doi>10.1/x</prism:doi><prism:volume>5</prism:volume></entry></feed>`,
		"other prefix same uri": `<feed xmlns:p="http://prismstandard.org/namespaces/basic/2.0/"><entry>
			<p:doi>10.1/x</p:doi><p:volume>5</p:volume></entry></feed>`,
		"different uri": `<feed xmlns:prism="http://prismstandard.org/namespaces/basic/3.0/"><entry>
			<prism:doi>10.1/x</prism:doi><prism:volume>5</prism:volume></entry></feed>`,
		"no namespace": `<feed><entry><doi>10.1/x</doi><volume>5</volume></entry></feed>`,
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			rec := Extract(parseEntry(t, doc))
			require.NotNil(t, rec.DOI)
			assert.Equal(t, "10.1/x", *rec.DOI)
			require.NotNil(t, rec.Volume)
			assert.Equal(t, "5", *rec.Volume)
		})
	}
}

func TestExtractPrefersQualifiedMatch(t *testing.T) {
	doc := `<feed xmlns:prism="http://prismstandard.org/namespaces/basic/2.0/" xmlns:o="urn:other"><entry>
		<o:doi>wrong</o:doi><prism:doi>right</prism:doi></entry></feed>`
	rec := Extract(parseEntry(t, doc))
	require.NotNil(t, rec.DOI)
	assert.Equal(t, "right", *rec.DOI)
}

func TestExtractMixedContentTitle(t *testing.T) {
	rec := Extract(parseEntry(t, wrapEntry(`<article_title>  Alpha<sub>2</sub> Beta</article_title>`)))
	require.NotNil(t, rec.ArticleTitle)
	assert.Equal(t, "Alpha", *rec.ArticleTitle)
}

func TestExtractEmptyEntry(t *testing.T) {
	rec := Extract(parseEntry(t, `<feed><entry/></feed>`))

	assert.Equal(t, []string{}, rec.Authors)
	assert.Nil(t, rec.ArticleTitle)
	assert.Nil(t, rec.MaterialTitle)
	assert.Nil(t, rec.ArticleLink)
	assert.Nil(t, rec.PublicationYear)
	assert.Nil(t, rec.DOI)
	assert.Nil(t, rec.Volume)
	assert.Nil(t, rec.SeriesID)
	assert.Nil(t, rec.IssueNumber)
	assert.Nil(t, rec.StartingPage)
	assert.Nil(t, rec.EndingPage)
}

func intPtr(n int) *int { return &n }

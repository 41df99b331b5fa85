package types

import "time"

// DefaultBaseURL is the J-STAGE search API endpoint.
const DefaultBaseURL = "https://api.jstage.jst.go.jp/searchapi/do"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout bounds each page request (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "jstage-search/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// FetchConfig holds settings for the fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the search endpoint. Tests and mirrors override it.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Language is the language code whose tagged values are preferred (default "ja").
	Language string `json:"language" yaml:"language" mapstructure:"language"`
}

// DefaultFetchConfig returns the settings used when nothing is configured.
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		HTTPConfig: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "jstage-search/dev",
		},
		BaseURL:  DefaultBaseURL,
		Language: "ja",
	}
}

// ExportFormat identifies an output file format.
type ExportFormat string

const (
	FormatCSV     ExportFormat = "csv"
	FormatJSON    ExportFormat = "json"
	FormatYAML    ExportFormat = "yaml"
	FormatParquet ExportFormat = "parquet"
	FormatCSL     ExportFormat = "csl"
)

// ExportConfig holds settings for writing result files.
type ExportConfig struct {
	// OutDir is the directory autosaved files are written to (default "data").
	OutDir string `json:"out_dir" yaml:"out_dir" mapstructure:"out_dir"`

	// Formats selects which files are written.
	Formats []ExportFormat `json:"formats" yaml:"formats" mapstructure:"formats"`

	// AuthorSeparator joins the author list into one CSV cell (default "; ").
	AuthorSeparator string `json:"author_separator" yaml:"author_separator" mapstructure:"author_separator"`
}

// DefaultExportConfig returns the settings used when nothing is configured.
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		OutDir:          "data",
		Formats:         []ExportFormat{FormatCSV},
		AuthorSeparator: "; ",
	}
}

// CatalogConfig holds settings for the run history database.
type CatalogConfig struct {
	// Path is the SQLite database file (default "data/catalog.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// DefaultCatalogConfig returns the settings used when nothing is configured.
func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{Path: "data/catalog.db"}
}

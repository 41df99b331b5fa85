package main

import (
	"github.com/spf13/viper"

	"github.com/pdiddy/jstage-search/internal/export"
	"github.com/pdiddy/jstage-search/pkg/types"
)

// Config keys. Nested keys map to sections of jstage-search.yaml and to
// JSTAGE_SEARCH_* environment variables with dots replaced by underscores.
const (
	keyAgreed          = "agreed"
	keyTimeout         = "fetch.timeout"
	keyUserAgent       = "fetch.user_agent"
	keyBaseURL         = "fetch.base_url"
	keyLanguage        = "fetch.language"
	keyOutDir          = "export.out_dir"
	keyFormats         = "export.formats"
	keyAuthorSeparator = "export.author_separator"
	keyCatalogPath     = "catalog.path"
)

func setDefaults(v *viper.Viper) {
	f := types.DefaultFetchConfig()
	v.SetDefault(keyTimeout, f.Timeout)
	v.SetDefault(keyUserAgent, "jstage-search/"+version)
	v.SetDefault(keyBaseURL, f.BaseURL)
	v.SetDefault(keyLanguage, f.Language)

	e := types.DefaultExportConfig()
	formats := make([]string, len(e.Formats))
	for i, fm := range e.Formats {
		formats[i] = string(fm)
	}
	v.SetDefault(keyOutDir, e.OutDir)
	v.SetDefault(keyFormats, formats)
	v.SetDefault(keyAuthorSeparator, e.AuthorSeparator)

	v.SetDefault(keyCatalogPath, types.DefaultCatalogConfig().Path)
	v.SetDefault(keyAgreed, false)
	v.SetDefault("log.level", "info")
}

func fetchConfig(v *viper.Viper) types.FetchConfig {
	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   v.GetDuration(keyTimeout),
			UserAgent: v.GetString(keyUserAgent),
		},
		BaseURL:  v.GetString(keyBaseURL),
		Language: v.GetString(keyLanguage),
	}
}

func exportConfig(v *viper.Viper) (types.ExportConfig, error) {
	formats, err := export.ParseFormats(v.GetStringSlice(keyFormats))
	if err != nil {
		return types.ExportConfig{}, err
	}
	return types.ExportConfig{
		OutDir:          v.GetString(keyOutDir),
		Formats:         formats,
		AuthorSeparator: v.GetString(keyAuthorSeparator),
	}, nil
}

func catalogConfig(v *viper.Viper) types.CatalogConfig {
	return types.CatalogConfig{Path: v.GetString(keyCatalogPath)}
}

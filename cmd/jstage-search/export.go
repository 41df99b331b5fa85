// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/jstage-search/internal/catalog"
	"github.com/pdiddy/jstage-search/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a saved run to other formats without fetching again",
	Long: `Export loads a past run, either from the catalog by run ID or from a YAML
file written by "fetch --format yaml", and writes it to --out-dir in each
--format. File names follow the original run's term, field, year and time.`,
	Example: `  jstage-search export --run 6f1c... --format parquet
  jstage-search export --from data/jstage_因果_article_1950_20260101_120000.yaml --format csv,json`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	runID, _ := cmd.Flags().GetString("run")
	from, _ := cmd.Flags().GetString("from")
	formatNames, _ := cmd.Flags().GetStringSlice("format")
	outDir, _ := cmd.Flags().GetString("out-dir")
	sep, _ := cmd.Flags().GetString("author-sep")

	if (runID == "") == (from == "") {
		return fmt.Errorf("exactly one of --run or --from is required")
	}

	formats, err := export.ParseFormats(formatNames)
	if err != nil {
		return err
	}
	if len(formats) == 0 {
		return fmt.Errorf("at least one --format is required")
	}
	if outDir == "" {
		outDir = viper.GetString(keyOutDir)
	}
	if !cmd.Flags().Changed("author-sep") {
		sep = viper.GetString(keyAuthorSeparator)
	}

	run, err := loadRun(runID, from)
	if err != nil {
		return err
	}
	if len(run.Result.Records) == 0 {
		fmt.Println("0 records, nothing to export.")
		return nil
	}

	base := export.BaseName(run.Query, run.FetchedAt)
	files, err := export.Autosave(outDir, base, formats, run, export.Options{AuthorSeparator: sep})
	for _, f := range files {
		fmt.Println("Saved:", f)
	}
	return err
}

func loadRun(runID, from string) (export.Run, error) {
	if from != "" {
		return export.ReadRunFile(from)
	}
	store, err := catalog.Open(catalogConfig(viper.GetViper()))
	if err != nil {
		return export.Run{}, err
	}
	defer store.Close()
	return store.Load(context.Background(), runID)
}

func init() {
	exportCmd.Flags().String("run", "", "catalog run ID to export")
	exportCmd.Flags().String("from", "", "YAML run file to export")
	exportCmd.Flags().StringSlice("format", []string{"csv"}, "output formats: csv, json, yaml, parquet, csl")
	exportCmd.Flags().String("out-dir", "", "directory for written files (default: configured out_dir)")
	exportCmd.Flags().String("author-sep", "; ", "separator joining authors in CSV output")

	rootCmd.AddCommand(exportCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/jstage-search/internal/catalog"
	"github.com/pdiddy/jstage-search/internal/export"
	"github.com/pdiddy/jstage-search/internal/jstage"
	"github.com/pdiddy/jstage-search/internal/metrics"
	"github.com/pdiddy/jstage-search/pkg/types"
)

// Bounds applied to command-line queries.
const (
	minYear        = 0
	maxYear        = 3000
	maxRecordsCap  = 500000
	minInterval    = time.Second
	maxInterval    = 5 * time.Second
	defaultYear    = 1950
	defaultRecords = 20000
)

var errNotAgreed = errors.New(`terms of use not accepted: read "jstage-search terms", then pass --agree or set "agreed: true" in the config file`)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch records for a search term and save them",
	Long: `Fetch queries the J-STAGE search API for a term, following pagination in
steps of 1000 until the API runs out of entries, the reported total is
reached, or --max-records rows have been collected. It waits --interval
before every request after the first.

On success it prints the number of rows, the API's total count and the
number of unique DOIs, writes the rows to --out-dir in each --format, and
records the run in the catalog. A failed request aborts the fetch and nothing
is written.`,
	Example: `  jstage-search fetch --agree --term 因果 --year-from 1990 --format csv,parquet
  jstage-search fetch --agree --term "causal inference" --field abstract --max-records 5000`,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	if !viper.GetBool(keyAgreed) {
		return errNotAgreed
	}

	term, _ := cmd.Flags().GetString("term")
	year, _ := cmd.Flags().GetInt("year-from")
	field, _ := cmd.Flags().GetString("field")
	maxRecords, _ := cmd.Flags().GetInt("max-records")
	interval, _ := cmd.Flags().GetDuration("interval")
	autosave, _ := cmd.Flags().GetBool("autosave")
	noCatalog, _ := cmd.Flags().GetBool("no-catalog")
	metricsFile, _ := cmd.Flags().GetString("metrics-file")

	q, err := buildQuery(term, year, field, maxRecords, interval)
	if err != nil {
		return err
	}
	ecfg, err := exportConfig(viper.GetViper())
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	client := jstage.NewClient(fetchConfig(viper.GetViper()), jstage.WithMetrics(metrics.NewFetch(reg)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Fetching %q from %d (field=%s, max=%d)\n", q.Term, q.YearFrom, q.Field, q.MaxRecords)
	result, err := client.Fetch(ctx, q)
	dumpMetrics(metricsFile, reg)
	if err != nil {
		return err
	}

	run := export.Run{Query: q, Result: result, FetchedAt: time.Now()}
	printSummary(os.Stdout, run)

	if len(result.Records) == 0 {
		fmt.Println("0 records. Try different search conditions.")
		return nil
	}

	var files []string
	if autosave {
		base := export.BaseName(q, run.FetchedAt)
		files, err = export.Autosave(ecfg.OutDir, base, ecfg.Formats, run,
			export.Options{AuthorSeparator: ecfg.AuthorSeparator})
		for _, f := range files {
			fmt.Println("Saved:", f)
		}
		if err != nil {
			return err
		}
	}

	if !noCatalog {
		recordRun(ctx, run, files)
	}

	fmt.Println("\nPowered by J-STAGE (https://www.jstage.jst.go.jp/browse/-char/ja)")
	return nil
}

// buildQuery applies the command-line bounds and returns a validated query.
func buildQuery(term string, year int, field string, maxRecords int, interval time.Duration) (types.Query, error) {
	f, err := types.ParseField(field)
	if err != nil {
		return types.Query{}, err
	}
	if year < minYear || year > maxYear {
		return types.Query{}, fmt.Errorf("%w: --year-from must be between %d and %d, got %d",
			types.ErrInvalidQuery, minYear, maxYear, year)
	}
	if maxRecords < 1 || maxRecords > maxRecordsCap {
		return types.Query{}, fmt.Errorf("%w: --max-records must be between 1 and %d, got %d",
			types.ErrInvalidQuery, maxRecordsCap, maxRecords)
	}
	if interval < minInterval || interval > maxInterval {
		return types.Query{}, fmt.Errorf("%w: --interval must be between %v and %v, got %v",
			types.ErrInvalidQuery, minInterval, maxInterval, interval)
	}

	q := types.Query{
		Term:       term,
		YearFrom:   year,
		Field:      f,
		MaxRecords: maxRecords,
		Interval:   interval,
	}
	return q, q.Validate()
}

func printSummary(w io.Writer, run export.Run) {
	total := "unknown"
	if run.Result.TotalCount != nil {
		total = fmt.Sprint(*run.Result.TotalCount)
	}
	fmt.Fprintf(w, "\n%-14s %d\n", "Records:", len(run.Result.Records))
	fmt.Fprintf(w, "%-14s %s\n", "Total (API):", total)
	fmt.Fprintf(w, "%-14s %d\n", "Unique DOIs:", run.Result.UniqueDOIs())
}

// recordRun stores the run in the catalog. Failures are logged, not returned:
// the exported files are already on disk.
func recordRun(ctx context.Context, run export.Run, files []string) {
	store, err := catalog.Open(catalogConfig(viper.GetViper()))
	if err != nil {
		log.Warn().Err(err).Msg("catalog unavailable, run not recorded")
		return
	}
	defer store.Close()

	id, err := store.Record(ctx, run, files)
	if err != nil {
		log.Warn().Err(err).Msg("recording run failed")
		return
	}
	log.Info().Str("run_id", id).Int("records", len(run.Result.Records)).Msg("run recorded")
	fmt.Println("Run ID:", id)
}

func dumpMetrics(path string, g prometheus.Gatherer) {
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path, g); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("writing metrics file failed")
	}
}

func init() {
	fetchCmd.Flags().String("term", "", "search term (required)")
	fetchCmd.Flags().Int("year-from", defaultYear, "earliest publication year (pubyearfrom)")
	fetchCmd.Flags().String("field", string(types.FieldArticle), "field to search: article, abstract, full_text")
	fetchCmd.Flags().Int("max-records", defaultRecords, "stop after this many records")
	fetchCmd.Flags().Duration("interval", time.Second, "delay before each request after the first (1s to 5s)")
	fetchCmd.Flags().StringSlice("format", []string{string(types.FormatCSV)}, "output formats: csv, json, yaml, parquet, csl")
	fetchCmd.Flags().String("out-dir", "data", "directory for saved files")
	fetchCmd.Flags().String("author-sep", "; ", "separator joining authors in CSV output")
	fetchCmd.Flags().Bool("autosave", true, "write result files to --out-dir")
	fetchCmd.Flags().Bool("agree", false, "confirm you have read and accept the J-STAGE terms of use")
	fetchCmd.Flags().Bool("no-catalog", false, "do not record the run in the catalog")
	fetchCmd.Flags().String("metrics-file", "", "write fetch metrics in Prometheus text format to this file")
	fetchCmd.MarkFlagRequired("term")

	viper.BindPFlag(keyFormats, fetchCmd.Flags().Lookup("format"))
	viper.BindPFlag(keyOutDir, fetchCmd.Flags().Lookup("out-dir"))
	viper.BindPFlag(keyAuthorSeparator, fetchCmd.Flags().Lookup("author-sep"))
	viper.BindPFlag(keyAgreed, fetchCmd.Flags().Lookup("agree"))

	rootCmd.AddCommand(fetchCmd)
}

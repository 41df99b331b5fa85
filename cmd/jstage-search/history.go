// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/jstage-search/internal/catalog"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past fetch runs recorded in the catalog",
	Long: `History lists fetch runs recorded in the SQLite catalog, newest first,
with their query, row count, API total and the files written for them.`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := catalog.Open(catalogConfig(viper.GetViper()))
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(context.Background(), limit)
	if err != nil {
		return err
	}
	return formatHistory(os.Stdout, entries, jsonOutput)
}

func formatHistory(w io.Writer, entries []catalog.Entry, jsonOutput bool) error {
	if jsonOutput {
		if entries == nil {
			entries = []catalog.Entry{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-19s  %-24s  %-9s  %-6s  %7s  %9s\n",
		"ID", "Fetched", "Term", "Field", "From", "Records", "Total")
	fmt.Fprintln(w, strings.Repeat("-", 122))

	for _, e := range entries {
		term := e.Term
		if r := []rune(term); len(r) > 24 {
			term = string(r[:21]) + "..."
		}
		total := "unknown"
		if e.TotalResults != nil {
			total = fmt.Sprint(*e.TotalResults)
		}
		fmt.Fprintf(w, "%-36s  %-19s  %-24s  %-9s  %-6d  %7d  %9s\n",
			e.ID, e.FetchedAt.Local().Format("2006-01-02 15:04:05"), term, e.Field,
			e.YearFrom, e.Records, total)
	}

	fmt.Fprintf(w, "\n%d runs\n", len(entries))
	return nil
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Remove a run and its records from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := catalog.Open(catalogConfig(viper.GetViper()))
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted", args[0])
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum runs to list (0 = all)")
	historyCmd.Flags().Bool("json", false, "output runs as JSON")

	historyCmd.AddCommand(historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

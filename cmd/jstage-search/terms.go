package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// termsLinks are the pages a user must read before fetching.
var termsLinks = []struct{ title, url string }{
	{"J-STAGE terms of use and policies", "https://www.jstage.jst.go.jp/static/pages/TermsAndPolicies/ForIndividuals/-char/ja"},
	{"J-STAGE WebAPI terms of use", "https://www.jstage.jst.go.jp/static/pages/WebAPI/-char/ja"},
	{"About the J-STAGE WebAPI terms", "https://www.jstage.jst.go.jp/static/pages/JstageServices/TAB3/-char/ja"},
}

var termsCmd = &cobra.Command{
	Use:   "terms",
	Short: "Show the J-STAGE terms of use you must accept before fetching",
	Run: func(cmd *cobra.Command, args []string) {
		printTerms(cmd.OutOrStdout())
	},
}

func printTerms(w io.Writer) {
	fmt.Fprintln(w, "Read the following pages carefully and use this tool at your own responsibility:")
	fmt.Fprintln(w)
	for _, l := range termsLinks {
		fmt.Fprintf(w, "  %s\n    %s\n", l.title, l.url)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "By passing --agree (or setting \"agreed: true\" in jstage-search.yaml) you confirm that:")
	fmt.Fprintln(w, "  - you have read the pages above, and")
	fmt.Fprintln(w, "  - you, not the authors of this tool, are responsible for any damage arising from its use.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Bulk downloading of J-STAGE content is not permitted by its terms of use.")
}

func init() {
	rootCmd.AddCommand(termsCmd)
}

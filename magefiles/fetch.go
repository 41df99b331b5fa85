//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Fetch builds the CLI and runs a fetch configured from the environment:
// JSTAGE_TERM (required), JSTAGE_YEAR, JSTAGE_FIELD, JSTAGE_FORMATS,
// JSTAGE_MAX_RECORDS. Terms of use must already be accepted in
// jstage-search.yaml.
func Fetch() error {
	mg.Deps(Build, Init)

	term := os.Getenv("JSTAGE_TERM")
	if term == "" {
		return fmt.Errorf("JSTAGE_TERM is required")
	}
	args := []string{"fetch", "--term", term}
	for env, flag := range map[string]string{
		"JSTAGE_YEAR":        "--year-from",
		"JSTAGE_FIELD":       "--field",
		"JSTAGE_FORMATS":     "--format",
		"JSTAGE_MAX_RECORDS": "--max-records",
	} {
		if v := os.Getenv(env); v != "" {
			args = append(args, flag, v)
		}
	}
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the jstage-search CLI. It fetches
// article metadata from the J-STAGE search API, prints a summary and writes
// the rows to CSV, JSON, YAML or Parquet files.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/jstage-search/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the jstage-search CLI.
var rootCmd = &cobra.Command{
	Use:   "jstage-search",
	Short: "Fetch article metadata from the J-STAGE search API",
	Long: `jstage-search queries the J-STAGE search API (service 3), follows its
pagination up to a record cap, normalizes every entry into a flat record and
saves the result as CSV, JSON, YAML or Parquet.

Read the J-STAGE terms of use ("jstage-search terms") before fetching. Bulk
downloading of J-STAGE content is not permitted.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(logging.Config{
			Level:  viper.GetString("log.level"),
			Pretty: viper.GetBool("log.pretty"),
			Output: os.Stderr,
		})
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./jstage-search.yaml or ~/.config/jstage-search/jstage-search.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "human-readable log output instead of JSON lines")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("jstage-search")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "jstage-search"))
		}
	}

	setDefaults(viper.GetViper())

	viper.SetEnvPrefix("JSTAGE_SEARCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

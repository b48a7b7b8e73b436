// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pubmed-scout CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-scout/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// optionValue resolves a setting in precedence order: explicit flag value,
// then config file / PUBMED_SCOUT_* environment, then .secrets/ file.
func optionValue(flagValue, viperKey, secretKey string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := viper.GetString(viperKey); v != "" {
		return v
	}
	return loadedSecrets[secretKey]
}

// rootCmd is the base command for the pubmed-scout CLI.
var rootCmd = &cobra.Command{
	Use:   "pubmed-scout",
	Short: "Find pharma and biotech authors in PubMed papers",
	Long: `pubmed-scout searches PubMed and reports papers with at least one author
affiliated with a pharmaceutical or biotech company. Author affiliations are
classified against keyword lexicons; company names and corresponding-author
emails are extracted into console, CSV, or JSON reports.

Fetched articles land in a local SQLite cache, so repeated queries skip the
network. The cache subcommands inspect, search, and clear that cache.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pubmed-scout.yaml or ~/.config/pubmed-scout/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pubmed-scout")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pubmed-scout"))
		}
	}

	viper.SetEnvPrefix("PUBMED_SCOUT")
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

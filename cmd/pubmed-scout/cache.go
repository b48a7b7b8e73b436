// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-scout/internal/cache"
	"github.com/pdiddy/pubmed-scout/internal/fetch"
	"github.com/pdiddy/pubmed-scout/pkg/types"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the local article cache (stats, search, runs, clear)",
	Long: `Cache manages the local SQLite article cache that query fills. Use
subcommands to show statistics, search cached articles offline, list the
query history, or clear everything.`,
}

// --- stats subcommand ---

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE:  runCacheStats,
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Database: %s\n", stats.Path)
	fmt.Printf("Size:     %.1f KiB\n", float64(stats.SizeBytes)/1024)
	fmt.Printf("Articles: %d\n", stats.Articles)
	fmt.Printf("Runs:     %d\n", stats.Runs)
	if !stats.LastRun.IsZero() {
		fmt.Printf("Last run: %s\n", stats.LastRun.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// --- search subcommand ---

var cacheSearchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search cached articles offline",
	Long: `Search runs an FTS5 full-text query over cached article titles and
author affiliations, classifies the matches, and prints the usual report
without touching PubMed. Bare words are ANDed; quote phrases.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCacheSearch,
}

func runCacheSearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	lexiconPath, _ := cmd.Flags().GetString("lexicon")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	papers, err := store.Search(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}
	if len(papers) == 0 {
		fmt.Println("No cached articles match.")
		return nil
	}

	classifier, err := buildClassifier(lexiconPath)
	if err != nil {
		return err
	}

	out := fetch.Output{Total: len(papers), FromCache: len(papers)}
	for _, paper := range papers {
		r := fetch.BuildReport(classifier, paper)
		if r.HasIndustryAuthor() {
			out.Matched++
		}
		out.Reports = append(out.Reports, r)
	}

	return writeOutput(out, "", jsonOutput)
}

// --- runs subcommand ---

var cacheRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent query runs",
	RunE:  runCacheRuns,
}

func runCacheRuns(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Runs(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Printf("%-16s  %-40s  %6s  %8s  %6s  %8s\n",
		"When", "Query", "Total", "Fetched", "Cache", "Matched")
	fmt.Println(strings.Repeat("-", 94))

	for _, rec := range records {
		term := rec.Term
		if len(term) > 40 {
			term = term[:37] + "..."
		}
		fmt.Printf("%-16s  %-40s  %6d  %8d  %6d  %8d\n",
			rec.RanAt.Local().Format("2006-01-02 15:04"), term,
			rec.Total, rec.Fetched, rec.FromCache, rec.Matched)
	}
	return nil
}

// --- clear subcommand ---

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached articles and run history",
	RunE:  runCacheClear,
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(context.Background())
	if err != nil {
		return err
	}
	if err := store.Clear(context.Background()); err != nil {
		return err
	}

	fmt.Printf("Cleared %d article(s) and %d run(s).\n", stats.Articles, stats.Runs)
	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*cache.Store, error) {
	dir, _ := cmd.Flags().GetString("cache-dir")
	return cache.NewStore(types.CacheConfig{Dir: resolveCacheDir(dir)})
}

// resolveCacheDir picks the cache directory: flag, then cache.dir config
// key, then the default.
func resolveCacheDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := viper.GetString("cache.dir"); v != "" {
		return v
	}
	return "cache"
}

func init() {
	// Shared flag on the parent command, inherited by subcommands.
	cacheCmd.PersistentFlags().String("cache-dir", "", "article cache directory (default \"cache\")")

	// Search flags.
	cacheSearchCmd.Flags().Int("limit", 20, "maximum number of matches")
	cacheSearchCmd.Flags().String("lexicon", "", "YAML lexicon replacing the built-in keyword lists")
	cacheSearchCmd.Flags().Bool("json", false, "output results as JSON")

	// Runs flags.
	cacheRunsCmd.Flags().Int("limit", 20, "maximum number of runs to list")

	// Wire subcommands.
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheSearchCmd)
	cacheCmd.AddCommand(cacheRunsCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	rootCmd.AddCommand(cacheCmd)
}

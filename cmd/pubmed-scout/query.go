// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-scout/internal/cache"
	"github.com/pdiddy/pubmed-scout/internal/classify"
	"github.com/pdiddy/pubmed-scout/internal/eutils"
	"github.com/pdiddy/pubmed-scout/internal/fetch"
	"github.com/pdiddy/pubmed-scout/internal/report"
	"github.com/pdiddy/pubmed-scout/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query <term...>",
	Short: "Search PubMed and report industry-affiliated authors",
	Long: `Query searches PubMed with full query syntax (field tags such as [au] and
[tiab] work), fetches the matching articles, and classifies every author
affiliation. Each paper's report lists its non-academic authors, their
companies, and a corresponding-author email.

Results go to the console by default, to a CSV file with -f, or to stdout
as JSON with --json. Use --save to snapshot the run to a YAML file for
later rendering with the render command.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	term := strings.Join(args, " ")

	maxResults, _ := cmd.Flags().GetInt("max-results")
	matchesOnly, _ := cmd.Flags().GetBool("matches-only")
	file, _ := cmd.Flags().GetString("file")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	savePath, _ := cmd.Flags().GetString("save")
	debug, _ := cmd.Flags().GetBool("debug")

	pipeline, store, err := buildPipeline(cmd)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	cfg := types.FetchConfig{
		MaxResults:  maxResults,
		MatchesOnly: matchesOnly,
		Progress:    !jsonOutput,
	}

	out, err := pipeline.Run(context.Background(), term, cfg, os.Stderr)
	if err != nil {
		return err
	}

	if debug {
		printClassifyDetail(os.Stderr, pipeline.Classifier, out.Reports)
	}

	if out.Total == 0 {
		fmt.Println("No papers found.")
		return nil
	}

	if savePath != "" {
		if err := report.WriteRunFile(savePath, term, cfg, out); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Run saved to %s\n", savePath)
	}

	return writeOutput(out, file, jsonOutput)
}

// writeOutput renders the pipeline output to CSV, JSON, or the console.
// Shared with the render command.
func writeOutput(out fetch.Output, file string, jsonOutput bool) error {
	switch {
	case jsonOutput:
		return report.WriteJSON(os.Stdout, out.Reports)
	case file != "":
		f, err := os.Create(file)
		if err != nil {
			return fmt.Errorf("creating %s: %w", file, err)
		}
		defer f.Close()
		if err := report.WriteCSV(f, out.Reports); err != nil {
			return err
		}
		fmt.Printf("Results saved to %s\n", file)
		return nil
	default:
		report.WriteConsole(os.Stdout, out, true)
		return nil
	}
}

// buildPipeline assembles the fetch pipeline from flags, config, and
// secrets. The returned store is nil when caching is off.
func buildPipeline(cmd *cobra.Command) (*fetch.Pipeline, *cache.Store, error) {
	apiKey, _ := cmd.Flags().GetString("api-key")
	email, _ := cmd.Flags().GetString("ncbi-email")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	lexiconPath, _ := cmd.Flags().GetString("lexicon")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	cacheDir, _ := cmd.Flags().GetString("cache-dir")

	classifier, err := buildClassifier(lexiconPath)
	if err != nil {
		return nil, nil, err
	}

	pmCfg := types.PubMedConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: "pubmed-scout/" + version,
		},
		Tool: "pubmed-scout",
		Email:      optionValue(email, "ncbi.email", "ncbi-email"),
		APIKey:     optionValue(apiKey, "ncbi.api_key", "ncbi-api-key"),
		RateLimit:  viper.GetFloat64("ncbi.rate_limit"),
	}

	pipeline := &fetch.Pipeline{
		Client:     eutils.NewClient(pmCfg),
		Classifier: classifier,
	}

	cacheCfg := types.CacheConfig{Dir: resolveCacheDir(cacheDir), Disabled: noCache}
	if cacheCfg.Disabled {
		return pipeline, nil, nil
	}

	store, err := cache.NewStore(cacheCfg)
	if err != nil {
		// A broken cache degrades to uncached fetching.
		fmt.Fprintf(os.Stderr, "warning: cache disabled: %v\n", err)
		return pipeline, nil, nil
	}
	pipeline.Cache = store
	return pipeline, store, nil
}

// buildClassifier loads the lexicon from the given path, from the
// classify.lexicon config key, or falls back to the built-in lists.
func buildClassifier(lexiconPath string) (*classify.Classifier, error) {
	if lexiconPath == "" {
		lexiconPath = viper.GetString("classify.lexicon")
	}

	lexicon := classify.Default()
	if lexiconPath != "" {
		var err error
		lexicon, err = classify.Load(lexiconPath)
		if err != nil {
			return nil, err
		}
	}
	return classify.New(lexicon)
}

// printClassifyDetail explains each author's verdict, for lexicon tuning.
func printClassifyDetail(w io.Writer, classifier *classify.Classifier, reports []types.PaperReport) {
	for _, r := range reports {
		for _, a := range r.Authors {
			res, det := classifier.Explain(a.Affiliation)
			fmt.Fprintf(w, "debug: pmid=%s author=%q company=%t academic=%v industry=%v\n",
				r.PMID, a.Name, res.CompanyAffiliated, det.AcademicKeywords, det.CompanyKeywords)
		}
	}
}

func init() {
	queryCmd.Flags().StringP("file", "f", "", "write results to this CSV file instead of the console")
	queryCmd.Flags().IntP("max-results", "n", 20, "maximum number of papers to process")
	queryCmd.Flags().Bool("json", false, "output results as JSON")
	queryCmd.Flags().Bool("matches-only", false, "report only papers with a company-affiliated author")
	queryCmd.Flags().String("save", "", "save the run to a YAML file for the render command")
	queryCmd.Flags().Bool("no-cache", false, "bypass the local article cache")
	queryCmd.Flags().String("cache-dir", "", "article cache directory (default \"cache\")")
	queryCmd.Flags().String("lexicon", "", "YAML lexicon replacing the built-in keyword lists")
	queryCmd.Flags().String("api-key", "", "NCBI API key (raises the rate limit to 10 req/s)")
	queryCmd.Flags().String("ncbi-email", "", "contact email sent to NCBI with each request")
	queryCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	queryCmd.Flags().BoolP("debug", "d", false, "print per-author classification detail to stderr")

	rootCmd.AddCommand(queryCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch runs the query pipeline: resolve a PubMed query to PMIDs,
// load article records from the cache or EFetch, classify author
// affiliations, and assemble per-paper reports.
package fetch

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/pdiddy/pubmed-scout/internal/cache"
	"github.com/pdiddy/pubmed-scout/internal/classify"
	"github.com/pdiddy/pubmed-scout/internal/eutils"
	"github.com/pdiddy/pubmed-scout/pkg/types"
)

const defaultBatchSize = 200

// Pipeline wires the E-utilities client, the affiliation classifier, and
// the article cache into one query run.
type Pipeline struct {
	Client     *eutils.Client
	Classifier *classify.Classifier

	// Cache may be nil, which disables caching and run history.
	Cache *cache.Store
}

// Output holds the outcome of one pipeline run.
type Output struct {
	// Reports are the per-paper rows, in search-result order.
	Reports []types.PaperReport

	Total     int // PMIDs the search resolved
	Fetched   int // articles retrieved from NCBI
	FromCache int // articles served from the local cache
	Failed    int // PMIDs that produced no article record
	Matched   int // papers with at least one company-affiliated author
}

// Run executes the pipeline for term. Warnings for recoverable problems
// (a failed batch, a cache error) go to w; the run continues without the
// affected papers. The returned error is reserved for failures that stop
// the run, like an unreachable search endpoint or a cancelled context.
func (p *Pipeline) Run(ctx context.Context, term string, cfg types.FetchConfig, w io.Writer) (Output, error) {
	ids, err := p.Client.Search(ctx, term, cfg.MaxResults)
	if err != nil {
		return Output{}, fmt.Errorf("searching PubMed: %w", err)
	}

	out := Output{Total: len(ids)}
	if len(ids) == 0 {
		p.recordRun(ctx, term, out, w)
		return out, nil
	}

	papers := make(map[string]types.Paper, len(ids))
	toFetch := ids

	if p.Cache != nil {
		hits, missing, err := p.Cache.Get(ctx, ids)
		if err != nil {
			fmt.Fprintf(w, "warning: cache lookup failed: %v\n", err)
		} else {
			for _, paper := range hits {
				papers[paper.PMID] = paper
			}
			out.FromCache = len(hits)
			toFetch = missing
		}
	}

	fetched, failed, err := p.fetchBatches(ctx, toFetch, cfg, w)
	if err != nil {
		return out, err
	}
	out.Fetched = len(fetched)
	out.Failed = failed

	if p.Cache != nil && len(fetched) > 0 {
		if err := p.Cache.Put(ctx, fetched); err != nil {
			fmt.Fprintf(w, "warning: caching articles: %v\n", err)
		}
	}
	for _, paper := range fetched {
		papers[paper.PMID] = paper
	}

	// Assemble reports in search-result order.
	for _, id := range ids {
		paper, ok := papers[id]
		if !ok {
			continue
		}
		report := BuildReport(p.Classifier, paper)
		if report.HasIndustryAuthor() {
			out.Matched++
		} else if cfg.MatchesOnly {
			continue
		}
		out.Reports = append(out.Reports, report)
	}

	p.recordRun(ctx, term, out, w)
	return out, nil
}

// fetchBatches retrieves the given PMIDs from EFetch in batches. A failed
// batch is reported as a warning and skipped; the count of PMIDs that
// produced no record comes back as failed.
func (p *Pipeline) fetchBatches(ctx context.Context, pmids []string, cfg types.FetchConfig, w io.Writer) ([]types.Paper, int, error) {
	if len(pmids) == 0 {
		return nil, 0, nil
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	var bar *progressbar.ProgressBar
	if cfg.Progress {
		bar = newBar(len(pmids))
	}

	var fetched []types.Paper
	failed := 0
	for start := 0; start < len(pmids); start += batchSize {
		end := start + batchSize
		if end > len(pmids) {
			end = len(pmids)
		}
		batch := pmids[start:end]

		papers, err := p.Client.Fetch(ctx, batch)
		if err != nil {
			if ctx.Err() != nil {
				return fetched, failed, ctx.Err()
			}
			fmt.Fprintf(w, "warning: fetching PMIDs %s..%s: %v\n", batch[0], batch[len(batch)-1], err)
			failed += len(batch)
			continue
		}

		fetched = append(fetched, papers...)
		// PMIDs PubMed silently drops (deleted records) count as failed.
		failed += len(batch) - len(papers)

		if bar != nil {
			bar.Add(len(batch))
		}
	}

	if bar != nil {
		bar.Finish()
	}
	return fetched, failed, nil
}

// BuildReport classifies every author affiliation of one paper. The
// corresponding email is the first email found, in author order.
func BuildReport(cls *classify.Classifier, paper types.Paper) types.PaperReport {
	report := types.PaperReport{PMID: paper.PMID, Title: paper.Title}
	for _, author := range paper.Authors {
		res := cls.Classify(author.Affiliation)
		report.Authors = append(report.Authors, types.ClassifiedAuthor{
			Author:            author,
			CompanyAffiliated: res.CompanyAffiliated,
			Company:           res.Company,
			Email:             res.Email,
		})
		if report.CorrespondingEmail == "" && res.Email != "" {
			report.CorrespondingEmail = res.Email
		}
	}
	return report
}

// recordRun appends the run to the cache history, when caching is on.
func (p *Pipeline) recordRun(ctx context.Context, term string, out Output, w io.Writer) {
	if p.Cache == nil {
		return
	}
	rec := cache.RunRecord{
		Term:      term,
		Total:     out.Total,
		Fetched:   out.Fetched,
		FromCache: out.FromCache,
		Matched:   out.Matched,
	}
	if err := p.Cache.RecordRun(ctx, rec); err != nil {
		fmt.Fprintf(w, "warning: recording run: %v\n", err)
	}
}

// newBar builds the stderr progress bar shown while fetching batches.
func newBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(color.BlueString("fetching articles")),
		progressbar.OptionSetItsString("articles"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)
}

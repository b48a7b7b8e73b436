// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders pipeline output as CSV, console blocks, or JSON,
// and saves runs to YAML files for later re-rendering.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/pdiddy/pubmed-scout/internal/fetch"
	"github.com/pdiddy/pubmed-scout/pkg/types"
)

// csvHeader matches the column names downstream spreadsheets expect.
var csvHeader = []string{
	"PubmedID",
	"Title",
	"Non-academic Authors",
	"Company Affiliations",
	"Corresponding Author Email",
}

// WriteCSV writes one row per paper. Multi-valued cells are joined with
// ", " and empty cells rendered as "N/A".
func WriteCSV(w io.Writer, reports []types.PaperReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range reports {
		authors, companies, email := rowValues(r)
		if err := cw.Write([]string{r.PMID, r.Title, authors, companies, email}); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", r.PMID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteConsole prints a block per paper followed by a run summary.
// useColor=false keeps the output plain for non-terminal writers.
func WriteConsole(w io.Writer, out fetch.Output, useColor bool) {
	key := fmt.Sprint
	accent := fmt.Sprint
	if useColor {
		key = color.New(color.FgCyan).SprintFunc()
		accent = color.New(color.FgGreen).SprintFunc()
	}

	divider := strings.Repeat("-", 33)
	for _, r := range out.Reports {
		authors, companies, email := rowValues(r)
		if companies != "N/A" {
			companies = accent(companies)
		}

		fmt.Fprintf(w, "\n%s\n", divider)
		fmt.Fprintf(w, "%s: %s\n", key("PubmedID"), r.PMID)
		fmt.Fprintf(w, "%s: %s\n", key("Title"), r.Title)
		fmt.Fprintf(w, "%s: %s\n", key("Non-academic Authors"), authors)
		fmt.Fprintf(w, "%s: %s\n", key("Company Affiliations"), companies)
		fmt.Fprintf(w, "%s: %s\n", key("Corresponding Author Email"), email)
	}
	fmt.Fprintf(w, "\n%s\n", divider)

	fmt.Fprintf(w, "%d papers, %d with industry authors", len(out.Reports), out.Matched)
	if out.FromCache > 0 {
		fmt.Fprintf(w, ", %d from cache", out.FromCache)
	}
	if out.Failed > 0 {
		fmt.Fprintf(w, ", %d failed", out.Failed)
	}
	fmt.Fprintln(w)
}

// WriteJSON writes the reports as indented JSON.
func WriteJSON(w io.Writer, reports []types.PaperReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

// rowValues renders the author, company, and email cells of one report
// row, with "N/A" for empty values.
func rowValues(r types.PaperReport) (authors, companies, email string) {
	authors = orNA(strings.Join(r.IndustryAuthors(), ", "))
	companies = orNA(strings.Join(r.Companies(), ", "))
	email = orNA(r.CorrespondingEmail)
	return
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/pubmed-scout/internal/fetch"
	"github.com/pdiddy/pubmed-scout/pkg/types"
)

func sampleReports() []types.PaperReport {
	return []types.PaperReport{
		{
			PMID:  "101",
			Title: "GLP-1 receptor agonists, obesity, and cardiovascular outcomes.",
			Authors: []types.ClassifiedAuthor{
				{Author: types.Author{Name: "Alice Prof", Affiliation: "Yale School of Medicine."}},
				{
					Author:            types.Author{Name: "Bob Industry", Affiliation: "Acme Biotech Inc., Cambridge, MA."},
					CompanyAffiliated: true,
					Company:           "Acme Biotech Inc.",
					Email:             "bob@acmebiotech.com",
				},
				{
					Author:            types.Author{Name: "Eve Second", Affiliation: "Acme Biotech Inc., Cambridge, MA."},
					CompanyAffiliated: true,
					Company:           "Acme Biotech Inc.",
				},
			},
			CorrespondingEmail: "bob@acmebiotech.com",
		},
		{
			PMID:  "102",
			Title: "Teaching hospital cohort study.",
			Authors: []types.ClassifiedAuthor{
				{Author: types.Author{Name: "Carol Dean", Affiliation: "Harvard Medical School."}},
			},
		},
	}
}

// --- CSV ---

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleReports()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parsing CSV back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want header + 2", len(rows))
	}

	wantHeader := []string{"PubmedID", "Title", "Non-academic Authors", "Company Affiliations", "Corresponding Author Email"}
	if !reflect.DeepEqual(rows[0], wantHeader) {
		t.Errorf("header = %v, want %v", rows[0], wantHeader)
	}

	// The title's commas must survive the round trip.
	want := []string{
		"101",
		"GLP-1 receptor agonists, obesity, and cardiovascular outcomes.",
		"Bob Industry, Eve Second",
		"Acme Biotech Inc.",
		"bob@acmebiotech.com",
	}
	if !reflect.DeepEqual(rows[1], want) {
		t.Errorf("row 1 = %v, want %v", rows[1], want)
	}

	// Papers without industry authors render N/A cells.
	want = []string{"102", "Teaching hospital cohort study.", "N/A", "N/A", "N/A"}
	if !reflect.DeepEqual(rows[2], want) {
		t.Errorf("row 2 = %v, want %v", rows[2], want)
	}
}

func TestWriteCSVDeduplicatesCompanies(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleReports()); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	// Two authors share one company; the cell lists it once.
	if got := rows[1][3]; strings.Count(got, "Acme") != 1 {
		t.Errorf("Company Affiliations = %q, want company listed once", got)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("len(rows) = %d, want header only", len(rows))
	}
}

// --- console ---

func TestWriteConsole(t *testing.T) {
	out := fetch.Output{
		Reports: sampleReports(),
		Total:   2,
		Fetched: 2,
		Matched: 1,
	}

	var buf bytes.Buffer
	WriteConsole(&buf, out, false)
	got := buf.String()

	for _, want := range []string{
		"PubmedID: 101",
		"Title: GLP-1 receptor agonists, obesity, and cardiovascular outcomes.",
		"Non-academic Authors: Bob Industry, Eve Second",
		"Company Affiliations: Acme Biotech Inc.",
		"Corresponding Author Email: bob@acmebiotech.com",
		"Non-academic Authors: N/A",
		"2 papers, 1 with industry authors",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n%s", want, got)
		}
	}

	// One divider per paper plus the trailing one.
	if n := strings.Count(got, strings.Repeat("-", 33)); n != 3 {
		t.Errorf("divider count = %d, want 3", n)
	}
}

func TestWriteConsoleCacheAndFailures(t *testing.T) {
	out := fetch.Output{
		Reports:   sampleReports()[:1],
		Total:     3,
		FromCache: 1,
		Failed:    1,
		Matched:   1,
	}

	var buf bytes.Buffer
	WriteConsole(&buf, out, false)
	got := buf.String()

	if !strings.Contains(got, "1 from cache") {
		t.Errorf("summary missing cache count:\n%s", got)
	}
	if !strings.Contains(got, "1 failed") {
		t.Errorf("summary missing failure count:\n%s", got)
	}
}

// --- JSON ---

func TestWriteJSON(t *testing.T) {
	want := sampleReports()

	var buf bytes.Buffer
	if err := WriteJSON(&buf, want); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var got []types.PaperReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("parsing JSON back: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

// --- run files ---

func TestRunFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := types.FetchConfig{MaxResults: 50, MatchesOnly: true}
	out := fetch.Output{
		Reports:   sampleReports(),
		Total:     120,
		Fetched:   100,
		FromCache: 20,
		Failed:    2,
		Matched:   7,
	}

	if err := WriteRunFile(path, "tirzepatide[tiab]", cfg, out); err != nil {
		t.Fatalf("WriteRunFile: %v", err)
	}

	rf, err := ReadRunFile(path)
	if err != nil {
		t.Fatalf("ReadRunFile: %v", err)
	}

	if rf.Query != "tirzepatide[tiab]" {
		t.Errorf("Query = %q", rf.Query)
	}
	if rf.Config.MaxResults != 50 || !rf.Config.MatchesOnly {
		t.Errorf("Config = %+v", rf.Config)
	}
	if !reflect.DeepEqual(rf.Reports, out.Reports) {
		t.Errorf("Reports = %+v, want %+v", rf.Reports, out.Reports)
	}
	if rf.Summary.Total != 120 || rf.Summary.Matched != 7 || rf.Summary.Failed != 2 {
		t.Errorf("Summary = %+v", rf.Summary)
	}
	if rf.Summary.Timestamp.IsZero() || time.Since(rf.Summary.Timestamp) > time.Minute {
		t.Errorf("Timestamp = %v, want recent", rf.Summary.Timestamp)
	}

	// Output must reconstruct the pipeline view of the run.
	rebuilt := rf.Output()
	if rebuilt.Total != out.Total || rebuilt.Matched != out.Matched || len(rebuilt.Reports) != len(out.Reports) {
		t.Errorf("Output() = %+v, want counts from %+v", rebuilt, out)
	}
}

func TestReadRunFileMissing(t *testing.T) {
	if _, err := ReadRunFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadRunFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := writeFile(path, "query: [unclosed"); err != nil {
		t.Fatal(err)
	}
	_, err := ReadRunFile(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "parsing") {
		t.Errorf("err = %v, want parse error", err)
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-scout/internal/fetch"
	"github.com/pdiddy/pubmed-scout/pkg/types"
)

// RunFile is the on-disk representation of a query run and its reports.
// A run saved with --save can be re-rendered later without touching
// PubMed again.
type RunFile struct {
	Query   string              `yaml:"query"`
	Config  RunFileConfig       `yaml:"config"`
	Reports []types.PaperReport `yaml:"reports"`
	Summary RunSummary          `yaml:"summary"`
}

// RunFileConfig stores the fetch settings that produced the reports.
type RunFileConfig struct {
	MaxResults  int  `yaml:"max_results"`
	MatchesOnly bool `yaml:"matches_only"`
}

// RunSummary stores run statistics and a timestamp.
type RunSummary struct {
	Total     int       `yaml:"total"`
	Fetched   int       `yaml:"fetched"`
	FromCache int       `yaml:"from_cache"`
	Failed    int       `yaml:"failed"`
	Matched   int       `yaml:"matched"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteRunFile saves a query run to a YAML file.
func WriteRunFile(path, term string, cfg types.FetchConfig, out fetch.Output) error {
	rf := RunFile{
		Query: term,
		Config: RunFileConfig{
			MaxResults:  cfg.MaxResults,
			MatchesOnly: cfg.MatchesOnly,
		},
		Reports: out.Reports,
		Summary: RunSummary{
			Total:     out.Total,
			Fetched:   out.Fetched,
			FromCache: out.FromCache,
			Failed:    out.Failed,
			Matched:   out.Matched,
			Timestamp: time.Now(),
		},
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling run file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadRunFile loads a previously saved run file from disk.
func ReadRunFile(path string) (*RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}
	var rf RunFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing run file: %w", err)
	}
	return &rf, nil
}

// Output converts the stored run back into pipeline output for
// re-rendering.
func (rf *RunFile) Output() fetch.Output {
	return fetch.Output{
		Reports:   rf.Reports,
		Total:     rf.Summary.Total,
		Fetched:   rf.Summary.Fetched,
		FromCache: rf.Summary.FromCache,
		Failed:    rf.Summary.Failed,
		Matched:   rf.Summary.Matched,
	}
}

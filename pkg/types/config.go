package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubmed-scout/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// PubMedConfig holds settings for the NCBI E-utilities client.
type PubMedConfig struct {
	HTTPConfig `yaml:",inline"`

	// Tool identifies the client to NCBI (the tool= request parameter).
	Tool string `json:"tool" yaml:"tool"`

	// Email is the contact address NCBI asks API consumers to send
	// (the email= request parameter).
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// APIKey is an optional NCBI API key. With a key NCBI allows 10
	// requests per second instead of 3.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// RateLimit is the request rate in requests per second. Zero means
	// derive from the API key: 10 rps with a key, 3 rps without.
	RateLimit float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`
}

// FetchConfig holds settings for one pipeline run.
type FetchConfig struct {
	// MaxResults is the maximum number of papers to process (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// BatchSize is the number of PMIDs per EFetch request (default 200,
	// the size NCBI recommends switching to POST at).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// MatchesOnly drops papers without a company-affiliated author from
	// the report.
	MatchesOnly bool `json:"matches_only" yaml:"matches_only"`

	// Progress enables a progress bar on stderr during fetching.
	Progress bool `json:"progress" yaml:"progress"`
}

// ClassifyConfig holds settings for the affiliation classifier.
type ClassifyConfig struct {
	// LexiconPath points to a YAML keyword lexicon that replaces the
	// built-in lists. Empty means use the defaults.
	LexiconPath string `json:"lexicon_path,omitempty" yaml:"lexicon_path,omitempty"`
}

// CacheConfig holds settings for the local article cache.
type CacheConfig struct {
	// Dir is the directory holding the cache database (default "cache").
	Dir string `json:"dir" yaml:"dir"`

	// Disabled turns the cache off entirely.
	Disabled bool `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	PubMed   PubMedConfig   `json:"pubmed" yaml:"pubmed"`
	Fetch    FetchConfig    `json:"fetch" yaml:"fetch"`
	Classify ClassifyConfig `json:"classify" yaml:"classify"`
	Cache    CacheConfig    `json:"cache" yaml:"cache"`
}

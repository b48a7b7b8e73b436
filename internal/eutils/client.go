// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package eutils is a client for the NCBI Entrez E-utilities: ESearch for
// resolving a query into PMIDs and EFetch for retrieving article records.
// All requests are rate limited to NCBI's published allowance (3 requests
// per second anonymous, 10 with an API key) and retried on 429 and 503.
package eutils

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/pubmed-scout/internal/httputil"
	"github.com/pdiddy/pubmed-scout/pkg/types"
)

// eutilsBase is the E-utilities endpoint root. Declared as a var so tests
// can substitute an httptest server.
var eutilsBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

const (
	defaultTool    = "pubmed-scout"
	defaultTimeout = 30 * time.Second
)

// Client talks to the E-utilities. Use NewClient to get one with the rate
// limiter and identification parameters set up.
type Client struct {
	HTTPClient *http.Client
	Limiter    *rate.Limiter

	// BaseURL overrides the production E-utilities endpoint when set.
	BaseURL string

	// Tool, Email and APIKey are sent as the tool=, email= and api_key=
	// parameters on every request, as NCBI asks of API consumers.
	Tool   string
	Email  string
	APIKey string

	UserAgent string
}

// NewClient builds a Client from cfg. A zero RateLimit derives the rate
// from the API key: 10 requests per second with a key, 3 without.
func NewClient(cfg types.PubMedConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rps := cfg.RateLimit
	if rps <= 0 {
		rps = 3
		if cfg.APIKey != "" {
			rps = 10
		}
	}
	tool := cfg.Tool
	if tool == "" {
		tool = defaultTool
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		Limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		Tool:       tool,
		Email:      cfg.Email,
		APIKey:     cfg.APIKey,
		UserAgent:  cfg.UserAgent,
	}
}

func (c *Client) base() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return eutilsBase
}

// identify adds the client identification parameters to a request.
func (c *Client) identify(params url.Values) {
	params.Set("tool", c.Tool)
	if c.Email != "" {
		params.Set("email", c.Email)
	}
	if c.APIKey != "" {
		params.Set("api_key", c.APIKey)
	}
}

// call waits for the rate limiter, sends req with retry, and verifies the
// status. name labels errors with the E-utility involved.
func (c *Client) call(ctx context.Context, req *http.Request, name string) (*http.Response, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTPClient, req, 0)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", name, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%s returned HTTP %d", name, resp.StatusCode)
	}
	return resp, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// esearchPageSize is the retmax used per ESearch request. Larger result
// sets are paged with retstart.
const esearchPageSize = 500

// Search resolves a PubMed query into PMIDs, newest first (PubMed's
// default order). It pages through ESearch until maxResults PMIDs are
// collected or the result set is exhausted. The term uses full PubMed
// query syntax, including field tags like "[au]" and "[tiab]".
func (c *Client) Search(ctx context.Context, term string, maxResults int) ([]string, error) {
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("empty PubMed query")
	}
	if maxResults <= 0 {
		maxResults = 20
	}

	var ids []string
	for len(ids) < maxResults {
		size := maxResults - len(ids)
		if size > esearchPageSize {
			size = esearchPageSize
		}

		page, total, err := c.searchPage(ctx, term, len(ids), size)
		if err != nil {
			return nil, err
		}
		ids = append(ids, page...)

		if len(page) == 0 || len(ids) >= total {
			break
		}
	}

	if len(ids) > maxResults {
		ids = ids[:maxResults]
	}
	return ids, nil
}

// searchPage runs one ESearch request and returns the page of PMIDs plus
// the total hit count.
func (c *Client) searchPage(ctx context.Context, term string, retstart, retmax int) ([]string, int, error) {
	params := url.Values{
		"db":       {"pubmed"},
		"term":     {term},
		"retmode":  {"json"},
		"retstart": {strconv.Itoa(retstart)},
		"retmax":   {strconv.Itoa(retmax)},
	}
	c.identify(params)

	reqURL := c.base() + "/esearch.fcgi?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.call(ctx, req, "ESearch")
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var env esearchEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, 0, fmt.Errorf("parsing ESearch response: %w", err)
	}
	if env.Result.Error != "" {
		return nil, 0, fmt.Errorf("ESearch: %s", env.Result.Error)
	}

	// ESearch JSON carries counts as strings.
	total, err := strconv.Atoi(env.Result.Count)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing ESearch count %q: %w", env.Result.Count, err)
	}
	return env.Result.IDList, total, nil
}

// ESearch JSON structures.
type esearchEnvelope struct {
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count    string   `json:"count"`
	RetMax   string   `json:"retmax"`
	RetStart string   `json:"retstart"`
	IDList   []string `json:"idlist"`
	Error    string   `json:"ERROR"`
}

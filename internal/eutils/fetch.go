// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/pubmed-scout/pkg/types"
)

// Fetch retrieves full article records for the given PMIDs via EFetch and
// returns them in the order PubMed delivers them. Articles without a PMID
// are skipped. Callers batch the ID list; NCBI accepts up to roughly 200
// IDs per request comfortably.
func (c *Client) Fetch(ctx context.Context, pmids []string) ([]types.Paper, error) {
	if len(pmids) == 0 {
		return nil, nil
	}

	params := url.Values{
		"db":      {"pubmed"},
		"retmode": {"xml"},
		"id":      {strings.Join(pmids, ",")},
	}
	c.identify(params)

	// POST keeps long ID lists out of the URL.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base()+"/efetch.fcgi",
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.call(ctx, req, "EFetch")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var set pubmedArticleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("parsing EFetch response: %w", err)
	}

	papers := make([]types.Paper, 0, len(set.Articles))
	for _, art := range set.Articles {
		p := buildPaper(art)
		if p.PMID == "" {
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// buildPaper converts one EFetch article record into a Paper.
func buildPaper(art pubmedArticle) types.Paper {
	cit := art.Citation
	p := types.Paper{
		PMID:    strings.TrimSpace(cit.PMID),
		Title:   strings.TrimSpace(cit.Article.Title),
		Journal: strings.TrimSpace(cit.Article.Journal.Title),
		Year:    publicationYear(cit.Article.Journal.Issue.PubDate),
	}

	for _, el := range cit.Article.ELocationIDs {
		if el.EIdType == "doi" {
			p.DOI = strings.TrimSpace(el.Value)
			break
		}
	}

	for _, a := range cit.Article.AuthorList.Authors {
		name := authorName(a)
		if name == "" {
			continue
		}
		p.Authors = append(p.Authors, types.Author{
			Name:        name,
			Affiliation: joinAffiliations(a.Affiliations),
		})
	}
	return p
}

// authorName builds a display name. Group authorships carry only a
// CollectiveName, individual authors a ForeName/LastName pair.
func authorName(a pubmedAuthor) string {
	if a.CollectiveName != "" {
		return strings.TrimSpace(a.CollectiveName)
	}
	return strings.TrimSpace(strings.TrimSpace(a.ForeName) + " " + strings.TrimSpace(a.LastName))
}

// joinAffiliations flattens an author's AffiliationInfo entries into one
// string, joined with "; ".
func joinAffiliations(infos []affiliationInfo) string {
	var parts []string
	for _, info := range infos {
		if s := strings.TrimSpace(info.Affiliation); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "; ")
}

// publicationYear extracts a year string from a PubDate. MEDLINE dates
// without a <Year> carry free text like "2000 Spring" in <MedlineDate>;
// the leading token is the year.
func publicationYear(d pubDate) string {
	if d.Year != "" {
		return d.Year
	}
	if f := strings.Fields(d.MedlineDate); len(f) > 0 {
		return f[0]
	}
	return ""
}

// EFetch XML structures, pruned to the fields the pipeline consumes.
type pubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation medlineCitation `xml:"MedlineCitation"`
}

type medlineCitation struct {
	PMID    string        `xml:"PMID"`
	Article pubmedDetails `xml:"Article"`
}

type pubmedDetails struct {
	Title        string        `xml:"ArticleTitle"`
	Journal      pubmedJournal `xml:"Journal"`
	AuthorList   pubmedAuthors `xml:"AuthorList"`
	ELocationIDs []eLocationID `xml:"ELocationID"`
}

type pubmedJournal struct {
	Title string       `xml:"Title"`
	Issue journalIssue `xml:"JournalIssue"`
}

type journalIssue struct {
	PubDate pubDate `xml:"PubDate"`
}

type pubDate struct {
	Year        string `xml:"Year"`
	MedlineDate string `xml:"MedlineDate"`
}

type pubmedAuthors struct {
	Authors []pubmedAuthor `xml:"Author"`
}

type pubmedAuthor struct {
	LastName       string            `xml:"LastName"`
	ForeName       string            `xml:"ForeName"`
	CollectiveName string            `xml:"CollectiveName"`
	Affiliations   []affiliationInfo `xml:"AffiliationInfo"`
}

type affiliationInfo struct {
	Affiliation string `xml:"Affiliation"`
}

type eLocationID struct {
	EIdType string `xml:"EIdType,attr"`
	Value   string `xml:",chardata"`
}

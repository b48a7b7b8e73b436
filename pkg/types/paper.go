// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pubmed-scout pipeline:
// papers as fetched from PubMed, classified authors, and per-paper report rows.
package types

// Paper holds the PubMed record fields the pipeline consumes. Created by the
// E-utilities client from EFetch XML; immutable once built.
type Paper struct {
	// PMID is the PubMed identifier (e.g. "36109602").
	PMID string `json:"pmid" yaml:"pmid"`

	// Title is the article title.
	Title string `json:"title" yaml:"title"`

	// Journal is the full journal title.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// Year is the publication year as given by PubMed. Kept as a string
	// because MEDLINE dates are not always plain years ("2000 Spring").
	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	// DOI is the article DOI when PubMed carries one.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Authors lists the paper authors in source order.
	Authors []Author `json:"authors" yaml:"authors"`
}

// Author is one entry of a paper's author list.
type Author struct {
	// Name is the display name ("Jane Doe"), or the collective name for
	// group authorships.
	Name string `json:"name" yaml:"name"`

	// Affiliation is the raw affiliation text as it appears in PubMed.
	// Multiple affiliations are joined with "; ".
	Affiliation string `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`
}

// ClassifiedAuthor is an Author plus the affiliation classification verdict.
// Created by the classifier; never mutated after creation.
type ClassifiedAuthor struct {
	Author `yaml:",inline"`

	// CompanyAffiliated reports whether the affiliation denotes a
	// pharmaceutical or biotech company.
	CompanyAffiliated bool `json:"company_affiliated" yaml:"company_affiliated"`

	// Company is the extracted company name. Empty when CompanyAffiliated
	// is false or no name segment could be isolated.
	Company string `json:"company,omitempty" yaml:"company,omitempty"`

	// Email is the email address found in the affiliation text, if any.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// PaperReport is one output row of the pipeline: a paper with its authors
// classified and a corresponding email, when one was found.
type PaperReport struct {
	PMID    string             `json:"pmid" yaml:"pmid"`
	Title   string             `json:"title" yaml:"title"`
	Authors []ClassifiedAuthor `json:"authors" yaml:"authors"`

	// CorrespondingEmail is the first email address found across the
	// author affiliations, in author order.
	CorrespondingEmail string `json:"corresponding_email,omitempty" yaml:"corresponding_email,omitempty"`
}

// HasIndustryAuthor reports whether at least one author is company-affiliated.
func (r PaperReport) HasIndustryAuthor() bool {
	for _, a := range r.Authors {
		if a.CompanyAffiliated {
			return true
		}
	}
	return false
}

// IndustryAuthors returns the names of company-affiliated authors in order.
func (r PaperReport) IndustryAuthors() []string {
	var names []string
	for _, a := range r.Authors {
		if a.CompanyAffiliated {
			names = append(names, a.Name)
		}
	}
	return names
}

// Companies returns the distinct extracted company names in first-seen order.
func (r PaperReport) Companies() []string {
	seen := make(map[string]bool)
	var companies []string
	for _, a := range r.Authors {
		if !a.CompanyAffiliated || a.Company == "" {
			continue
		}
		if seen[a.Company] {
			continue
		}
		seen[a.Company] = true
		companies = append(companies, a.Company)
	}
	return companies
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify decides whether a free-text author affiliation denotes a
// pharmaceutical/biotech company, and if so extracts a company name and any
// email address embedded in the text.
//
// Academic keywords match as substrings of the normalized text, which keeps
// the list short across inflections ("universit" covers university,
// universities, università, universität). Company indicators match as whole
// space-bounded tokens: short legal suffixes such as "inc" or "ag" would
// otherwise fire inside ordinary words ("principal", "chicago").
package classify

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/cloudflare/ahocorasick"
)

// Result is the classification verdict for one affiliation string.
type Result struct {
	// CompanyAffiliated reports whether the affiliation denotes a company.
	CompanyAffiliated bool `json:"company_affiliated"`

	// Company is the extracted company name: the longest comma- or
	// semicolon-delimited segment containing a company indicator. Empty
	// when CompanyAffiliated is false.
	Company string `json:"company,omitempty"`

	// Email is the first well-formed email address found in the text.
	Email string `json:"email,omitempty"`
}

// Details lists the lexicon keywords that matched, for diagnostics.
type Details struct {
	AcademicKeywords []string `json:"academic_keywords,omitempty"`
	CompanyKeywords  []string `json:"company_keywords,omitempty"`
}

// emailRe matches the standard local@domain.tld shape. Greedy domain
// matching stops before a sentence-final period.
var emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// electronicAddrRe matches the "Electronic address:" boilerplate PubMed
// appends before corresponding-author emails.
var electronicAddrRe = regexp.MustCompile(`(?i)electronic\s+address:?`)

// Classifier classifies affiliation strings against a keyword lexicon.
// It is immutable after construction and safe for concurrent use.
type Classifier struct {
	academic         *ahocorasick.Matcher
	company          *ahocorasick.Matcher
	academicKeywords []string
	companyKeywords  []string
	companySet       map[string]bool
}

// New builds a Classifier from the lexicon. The lexicon must carry at least
// one keyword in each list; entries are normalized to lowercase.
func New(lex Lexicon) (*Classifier, error) {
	if err := lex.Validate(); err != nil {
		return nil, err
	}

	academic := normalizeKeywords(lex.Academic)
	company := normalizeKeywords(lex.Company)

	// Company patterns are wrapped in spaces so a hit requires a whole
	// token in the space-padded normalized text.
	padded := make([]string, len(company))
	companySet := make(map[string]bool, len(company))
	for i, kw := range company {
		padded[i] = " " + kw + " "
		companySet[kw] = true
	}

	return &Classifier{
		academic:         ahocorasick.NewStringMatcher(academic),
		company:          ahocorasick.NewStringMatcher(padded),
		academicKeywords: academic,
		companyKeywords:  company,
		companySet:       companySet,
	}, nil
}

// Classify reports whether the affiliation denotes a company, with the
// extracted company name and email. It is a pure function: no side effects,
// identical input yields identical output, and it never fails: empty or
// malformed input classifies as not company-affiliated.
//
// A company-indicator match wins over an academic-keyword match when both
// are present ("University Hospital, in collaboration with Acme Pharma
// Inc."): industry-sponsored academic work should still surface the company.
func (c *Classifier) Classify(affiliation string) Result {
	result, _ := c.run(affiliation)
	return result
}

// Explain is Classify plus the matched keywords from each list.
func (c *Classifier) Explain(affiliation string) (Result, Details) {
	return c.run(affiliation)
}

func (c *Classifier) run(affiliation string) (Result, Details) {
	if strings.TrimSpace(affiliation) == "" {
		return Result{}, Details{}
	}

	var result Result
	result.Email = emailRe.FindString(affiliation)

	// Emails and the "Electronic address:" label are stripped before any
	// keyword analysis so their text cannot influence the verdict.
	cleaned := emailRe.ReplaceAllString(affiliation, " ")
	cleaned = electronicAddrRe.ReplaceAllString(cleaned, " ")

	norm := normalizeText(cleaned)
	details := Details{
		AcademicKeywords: c.matched(c.academic, c.academicKeywords, norm),
		CompanyKeywords:  c.matched(c.company, c.companyKeywords, " "+norm+" "),
	}

	if len(details.CompanyKeywords) == 0 {
		return result, details
	}

	result.CompanyAffiliated = true
	result.Company = c.companySegment(cleaned)
	return result, details
}

// companySegment returns the longest comma/semicolon-delimited segment whose
// normalized form contains a company indicator, as written in the input but
// trimmed of surrounding space. Ties keep the earlier segment. A winning
// segment that is nothing but indicator tokens is joined back with the
// segment before it, so "Genentech, Inc." yields the full name rather than
// the bare suffix.
func (c *Classifier) companySegment(cleaned string) string {
	segments := splitSegments(cleaned)

	bestIdx := -1
	for i, seg := range segments {
		if bestIdx >= 0 && len(seg) <= len(segments[bestIdx]) {
			continue
		}
		if len(c.company.MatchThreadSafe([]byte(" "+normalizeText(seg)+" "))) > 0 {
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return ""
	}

	best := segments[bestIdx]
	if bestIdx > 0 && c.indicatorsOnly(best) {
		return segments[bestIdx-1] + ", " + best
	}
	return best
}

// indicatorsOnly reports whether every token of the segment is a company
// indicator ("Inc.", "Ltd").
func (c *Classifier) indicatorsOnly(seg string) bool {
	fields := strings.Fields(normalizeText(seg))
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if !c.companySet[f] {
			return false
		}
	}
	return true
}

func splitSegments(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';'
	})
	segments := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// matched returns the keywords that hit in text, in lexicon order.
func (c *Classifier) matched(m *ahocorasick.Matcher, keywords []string, text string) []string {
	hits := m.MatchThreadSafe([]byte(text))
	if len(hits) == 0 {
		return nil
	}
	found := make([]bool, len(keywords))
	for _, idx := range hits {
		if idx < len(found) {
			found[idx] = true
		}
	}
	var out []string
	for i, kw := range keywords {
		if found[i] {
			out = append(out, kw)
		}
	}
	return out
}

// normalizeText lowercases, replaces punctuation with spaces, and collapses
// runs of whitespace, so keyword matching sees clean word boundaries.
func normalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if norm := normalizeText(kw); norm != "" {
			out = append(out, norm)
		}
	}
	return out
}

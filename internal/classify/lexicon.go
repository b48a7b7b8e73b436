// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Lexicon holds the keyword lists the classifier matches against. The lists
// are configuration data: a YAML file loaded with Load replaces the built-in
// defaults wholesale, so classification quality can be tuned without a
// rebuild.
type Lexicon struct {
	// Academic entries match as substrings of the normalized affiliation.
	Academic []string `yaml:"academic"`

	// Company entries match as whole tokens of the normalized affiliation.
	Company []string `yaml:"company"`
}

// Default returns the built-in lexicon.
//
// Academic entries are stems where that keeps the list short across
// inflections and languages. Company entries are legal-entity suffixes and
// industry terms. Deliberately absent from the company list: "co" (collides
// with the Colorado state code in US addresses), "sa" and "ab" (Australian
// and Canadian region codes), "biosciences" (common in academic school
// names).
func Default() Lexicon {
	return Lexicon{
		Academic: []string{
			"universit",
			"institut",
			"college",
			"school",
			"hospital",
			"clinic",
			"academy",
			"faculty",
			"department",
			"dept",
			"medical center",
			"medical centre",
			"research center",
			"research centre",
			"national lab",
			"polytechnic",
			"ministry of health",
			"inserm",
			"cnrs",
			"max planck",
		},
		Company: []string{
			"inc",
			"ltd",
			"llc",
			"llp",
			"gmbh",
			"corp",
			"corporation",
			"incorporated",
			"limited",
			"plc",
			"ag",
			"nv",
			"kk",
			"pharma",
			"pharmaceutica",
			"pharmaceutical",
			"pharmaceuticals",
			"biopharma",
			"biopharmaceutical",
			"biopharmaceuticals",
			"biotech",
			"biotechnology",
			"biotechnologies",
			"therapeutics",
			"laboratories",
			"labs",
			"diagnostics",
			"genomics",
			"biologics",
		},
	}
}

// Load reads a lexicon from a YAML file. The file must define both lists.
func Load(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("reading lexicon file: %w", err)
	}
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return Lexicon{}, fmt.Errorf("parsing lexicon file %s: %w", path, err)
	}
	if err := lex.Validate(); err != nil {
		return Lexicon{}, fmt.Errorf("lexicon file %s: %w", path, err)
	}
	return lex, nil
}

// Validate checks that both lists carry at least one usable keyword.
func (l Lexicon) Validate() error {
	if len(normalizeKeywords(l.Academic)) == 0 {
		return fmt.Errorf("academic keyword list is empty")
	}
	if len(normalizeKeywords(l.Company)) == 0 {
		return fmt.Errorf("company keyword list is empty")
	}
	return nil
}

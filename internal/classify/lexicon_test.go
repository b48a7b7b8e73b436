package classify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultLexiconValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate(): %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	content := `academic:
  - universit
  - observatory
company:
  - inc
  - aerospace
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	lex, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(lex.Academic) != 2 || len(lex.Company) != 2 {
		t.Errorf("lexicon = %+v, want 2 entries per list", lex)
	}

	// The loaded lexicon fully replaces the defaults.
	c, err := New(lex)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Classify("Acme Biotech, Cambridge"); got.CompanyAffiliated {
		t.Errorf("default keyword matched after replacement: %+v", got)
	}
	if got := c.Classify("Acme Aerospace Inc."); !got.CompanyAffiliated {
		t.Errorf("loaded keyword did not match: %+v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("academic: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "parsing") {
		t.Errorf("expected parse error, got: %v", err)
	}
}

func TestLoadIncompleteLexicon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("academic:\n  - universit\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "company") {
		t.Errorf("expected company-list error, got: %v", err)
	}
}

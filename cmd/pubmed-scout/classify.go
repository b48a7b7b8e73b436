package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-scout/internal/classify"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <affiliation...>",
	Short: "Classify a single affiliation string",
	Long: `Classify runs the affiliation classifier on one free-text affiliation
string and prints the verdict, the extracted company name, and any email
found. Use --explain to see which lexicon keywords matched; that is the
fastest way to debug a custom lexicon.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	affiliation := strings.Join(args, " ")

	explain, _ := cmd.Flags().GetBool("explain")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	lexiconPath, _ := cmd.Flags().GetString("lexicon")

	classifier, err := buildClassifier(lexiconPath)
	if err != nil {
		return err
	}

	res, det := classifier.Explain(affiliation)

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if explain {
			return enc.Encode(struct {
				classify.Result
				classify.Details
			}{res, det})
		}
		return enc.Encode(res)
	}

	verdict := "academic / non-company"
	if res.CompanyAffiliated {
		verdict = "company"
	}
	fmt.Printf("Verdict: %s\n", verdict)
	if res.Company != "" {
		fmt.Printf("Company: %s\n", res.Company)
	}
	if res.Email != "" {
		fmt.Printf("Email: %s\n", res.Email)
	}
	if explain {
		fmt.Printf("Academic keywords: %s\n", keywordList(det.AcademicKeywords))
		fmt.Printf("Company keywords: %s\n", keywordList(det.CompanyKeywords))
	}
	return nil
}

func keywordList(keywords []string) string {
	if len(keywords) == 0 {
		return "(none)"
	}
	return strings.Join(keywords, ", ")
}

func init() {
	classifyCmd.Flags().Bool("explain", false, "list the lexicon keywords that matched")
	classifyCmd.Flags().Bool("json", false, "output the result as JSON")
	classifyCmd.Flags().String("lexicon", "", "YAML lexicon replacing the built-in keyword lists")

	rootCmd.AddCommand(classifyCmd)
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-scout/internal/report"
)

var renderCmd = &cobra.Command{
	Use:   "render <run.yaml>",
	Short: "Re-render a saved query run",
	Long: `Render loads a run saved with query --save and renders it again without
touching PubMed: to the console by default, to a CSV file with -f, or to
stdout as JSON with --json.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	runFile, err := report.ReadRunFile(args[0])
	if err != nil {
		return err
	}

	file, _ := cmd.Flags().GetString("file")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return writeOutput(runFile.Output(), file, jsonOutput)
}

func init() {
	renderCmd.Flags().StringP("file", "f", "", "write results to this CSV file instead of the console")
	renderCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(renderCmd)
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/readwell-labs/bookscout/internal/analyze"
	"github.com/readwell-labs/bookscout/internal/extract"
	"github.com/readwell-labs/bookscout/internal/model"
	"github.com/readwell-labs/bookscout/pkg/gemini"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Analyze a Project Gutenberg book URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		llm, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return err
		}

		history, err := initHistory(cmd)
		if err != nil {
			return eris.Wrap(err, "open history")
		}
		if history != nil {
			defer history.Close()
		}

		analyzer := analyze.New(extract.NewFetcher(), llm)
		rec, err := analyzer.Analyze(ctx, args[0])
		if err != nil {
			return err
		}

		if history != nil {
			if herr := history.Record(ctx, rec); herr != nil {
				zap.L().Warn("history write failed", zap.Error(herr))
			}
		}

		if analyzeJSON {
			return json.NewEncoder(os.Stdout).Encode(rec)
		}

		printRecord(rec)
		return nil
	},
}

func printRecord(rec *model.AnalysisRecord) {
	fmt.Printf("Title:    %s\n", rec.Title)
	fmt.Printf("Author:   %s\n", rec.Author)
	fmt.Printf("Language: %s\n", rec.Language)
	fmt.Printf("Year:     %s\n", rec.Year)
	fmt.Printf("URL:      %s\n", rec.URL)
	if rec.Degraded {
		fmt.Println("(analysis degraded: the model calls failed, fields below carry error text)")
	}
	fmt.Printf("\nGenre:\n%s\n", rec.Genre)
	fmt.Printf("\nSummary:\n%s\n", rec.Summary)
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the analysis record as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

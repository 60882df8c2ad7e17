package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/readwell-labs/bookscout/internal/analyze"
	"github.com/readwell-labs/bookscout/internal/extract"
	"github.com/readwell-labs/bookscout/internal/model"
	"github.com/readwell-labs/bookscout/internal/query"
	"github.com/readwell-labs/bookscout/internal/session"
	"github.com/readwell-labs/bookscout/pkg/gemini"
)

var askURL string

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Ask one question about a book",
	Long:  "Routes a free-text query (summary, genre, or chat). Without --url the most recently analyzed book from history is used.",
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

		targetURL := askURL
		if targetURL == "" && history != nil {
			latest, ok, lerr := history.Latest(ctx)
			if lerr != nil {
				zap.L().Warn("history lookup failed", zap.Error(lerr))
			} else if ok {
				targetURL = latest.URL
			}
		}

		analyzer := analyze.New(extract.NewFetcher(), llm)
		var recorder query.Recorder
		if history != nil {
			recorder = history
		}
		router := query.New(analyzer, llm, recorder)

		result := router.Route(ctx, session.New(), args[0], targetURL)
		printResult(result)
		return nil
	},
}

func printResult(res model.QueryResult) {
	switch res.Type {
	case model.ResultError:
		fmt.Println(res.Content)
	case model.ResultSummary:
		fmt.Printf("Summary of '%s'\n\n%s\n", res.Title, res.Content)
	case model.ResultGenre:
		fmt.Printf("Genre classification for '%s'\n\n%s\n", res.Title, res.Content)
	case model.ResultChat:
		fmt.Printf("Question: %s\nAnswer: %s\n", res.Query, res.Content)
	}
}

func init() {
	askCmd.Flags().StringVar(&askURL, "url", "", "book URL the query is about")
	rootCmd.AddCommand(askCmd)
}

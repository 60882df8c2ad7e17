package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/readwell-labs/bookscout/internal/analyze"
	"github.com/readwell-labs/bookscout/internal/extract"
	"github.com/readwell-labs/bookscout/internal/query"
	"github.com/readwell-labs/bookscout/internal/session"
	"github.com/readwell-labs/bookscout/pkg/gemini"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive session: analyze books and ask questions",
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
		var recorder query.Recorder
		if history != nil {
			recorder = history
		}
		router := query.New(analyzer, llm, recorder)
		sess := session.New()

		fmt.Println("bookscout interactive session")
		fmt.Println("  analyze <url>   analyze a Project Gutenberg book")
		fmt.Println("  <anything else> ask about the current book")
		fmt.Println("  exit            quit")
		fmt.Println()

		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			switch {
			case line == "exit" || line == "quit":
				return nil

			case strings.HasPrefix(line, "analyze "):
				url := strings.TrimSpace(strings.TrimPrefix(line, "analyze "))
				rec, aerr := analyzer.Analyze(ctx, url)
				if aerr != nil {
					fmt.Println(aerr.Error())
					continue
				}
				sess.Set(url, rec)
				if history != nil {
					if herr := history.Record(ctx, rec); herr != nil {
						zap.L().Warn("history write failed", zap.Error(herr))
					}
				}
				fmt.Printf("Analyzed '%s' by %s\n", rec.Title, rec.Author)

			default:
				printResult(router.Route(ctx, sess, line, ""))
			}
			fmt.Println()
		}

		return scanner.Err()
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}

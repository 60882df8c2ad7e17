package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past book analyses",
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := initHistory(cmd)
		if err != nil {
			return eris.Wrap(err, "open history")
		}
		if history == nil {
			return eris.New("history is disabled (store.path is empty)")
		}
		defer history.Close()

		recs, err := history.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("no analyses recorded yet")
			return nil
		}

		for _, rec := range recs {
			marker := ""
			if rec.Degraded {
				marker = " (degraded)"
			}
			fmt.Printf("%s  %s — %s%s\n  %s\n", rec.AnalyzedAt.Format("2006-01-02 15:04"), rec.Title, rec.Author, marker, rec.URL)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "max analyses to list")
	rootCmd.AddCommand(historyCmd)
}

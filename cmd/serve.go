package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/readwell-labs/bookscout/internal/analyze"
	"github.com/readwell-labs/bookscout/internal/extract"
	"github.com/readwell-labs/bookscout/internal/query"
	"github.com/readwell-labs/bookscout/internal/server"
	"github.com/readwell-labs/bookscout/pkg/gemini"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for book analysis and queries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

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

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: server.New(analyzer, router, recorder).Handler(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

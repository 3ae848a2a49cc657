package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/finease/finease-backend/config"
	"github.com/finease/finease-backend/engine"
	"github.com/finease/finease-backend/provider"
	"github.com/finease/finease-backend/rag/session/inmemory"
	"github.com/finease/finease-backend/tools/webfetch"
)

// qaCMD runs one comparison end to end from the terminal: ingest two URLs,
// ask a question, print the synthesized answer.
func qaCMD() *cobra.Command {
	var cfgPath, question, language string
	qa := &cobra.Command{
		Use:   "qa <url-a> <url-b>",
		Short: "Ask a comparative question about two product pages",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}

			prov, err := provider.NewProvider(cfg.Provider)
			if err != nil {
				return err
			}
			fetcher, closeFetcher, err := webfetch.NewFetcher(cfg.Fetcher)
			if err != nil {
				return err
			}
			defer closeFetcher()

			sessions := inmemory.NewStore(cfg.Sessions.TTL, cfg.Sessions.Capacity)
			defer sessions.Stop()
			svc := engine.NewService(prov, fetcher, sessions, cfg.RAG)

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			sessionID, err := svc.CreateSession(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			answer, err := svc.Compare(ctx, sessionID, question, language)
			if err != nil {
				return err
			}
			fmt.Println(answer)
			return nil
		},
	}
	qa.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config/config.yaml)")
	qa.Flags().StringVarP(&question, "question", "q", "Which product has the better interest rate?", "question to ask")
	qa.Flags().StringVarP(&language, "language", "l", "en", "answer language code (e.g. en, kn)")
	return qa
}

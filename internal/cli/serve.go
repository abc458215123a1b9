package cli

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgergate/ledgergate/internal/auth"
	"github.com/ledgergate/ledgergate/internal/config"
	"github.com/ledgergate/ledgergate/internal/kvstore"
	"github.com/ledgergate/ledgergate/internal/lists"
	"github.com/ledgergate/ledgergate/internal/server"
	"github.com/ledgergate/ledgergate/internal/sheets"
	"github.com/ledgergate/ledgergate/internal/version"
)

func cmdServe() *cobra.Command {
	var addr string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Start the ledger proxy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cfgErr := config.Load(cfgPath)
			if cfgErr != nil {
				// keep serving: every guarded route answers 500 until fixed
				slog.Error("starting misconfigured", "err", cfgErr)
			}

			deps := server.Deps{APIKey: cfg.APIKey, ConfigErr: cfgErr}
			if cfgErr == nil {
				signer, err := auth.NewSigner(cfg.ServiceAccountEmail, cfg.ServiceAccountKey, config.Scope, cfg.TokenURL)
				if err != nil {
					// a key that does not parse is as fatal as a missing one
					slog.Error("service account key rejected", "err", err)
					deps.ConfigErr = err
				} else {
					tokens := auth.NewTokenSource(signer, cfg.TokenURL)
					gateway := sheets.NewClient(cfg.SheetsBaseURL, cfg.SpreadsheetID, cfg.AppendRange, tokens)
					deps.Sheet = gateway
					deps.Lists = lists.NewCache(kvstore.NewMemory(), gateway,
						cfg.PurposeRange, cfg.AccountRange, cfg.ListsTTL, slog.Default())
				}
			}

			if addr == "" {
				addr = cfg.ListenAddr
			}
			if addr == "" {
				addr = ":8080"
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           server.New(deps),
				ReadHeaderTimeout: 10 * time.Second,
			}
			slog.Info("listening", "addr", addr, "version", version.Version)
			return srv.ListenAndServe()
		},
	}
	c.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return c
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trovekit/trove/internal/server"
	troveerr "github.com/trovekit/trove/pkg/errors"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the trove HTTP server",
		Long:  "Open the store, wire the embedder, and serve the REST API until interrupted.",
		RunE:  runServe,
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Server.Listen = listen
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Warn("closing store", "error", err)
		}
	}()

	// The embedder is optional for serving; without an API key the
	// endpoints that need an embedding return 503 and the rest work.
	embedder, err := buildEmbedder(cfg)
	if err != nil {
		if !troveerr.IsInvalidInput(err) {
			return err
		}
		slog.Warn("embedder not configured; semantic endpoints disabled", "error", err)
		embedder = nil
	}

	srv, err := server.New(server.Config{
		ListenAddr:  cfg.Server.Listen,
		CORSOrigins: cfg.Server.CORSOrigins,
	})
	if err != nil {
		return troveerr.Wrapf(err, troveerr.CodeServerStartFailure, "creating server")
	}
	srv.RegisterStore(st, embedder, server.SearchDefaults{
		Weight:              cfg.Search.Weight,
		Limit:               cfg.Search.Limit,
		SimilarityThreshold: cfg.Search.SimilarityThreshold,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("trove listening", "addr", cfg.Server.Listen, "db", cfg.Storage.Path)
	return srv.Start(ctx)
}

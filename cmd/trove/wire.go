// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/trovekit/trove/internal/config"
	"github.com/trovekit/trove/internal/embed"
	"github.com/trovekit/trove/internal/store"
	_ "github.com/trovekit/trove/internal/store/sqlite" // register sqlite backend
	troveerr "github.com/trovekit/trove/pkg/errors"
)

// loadConfig resolves the --config flag, falling back to auto-discovery
// from ./trove.yaml and ~/.config/trove/trove.yaml. When no config exists
// anywhere a commented default is bootstrapped to ~/.config/trove/;
// defaults and TROVE_ env vars apply either way.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = discoverConfig()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	config.WarnInsecurePermissions(path)
	return cfg, nil
}

func discoverConfig() string {
	if _, err := os.Stat("trove.yaml"); err == nil {
		return "trove.yaml"
	}
	if p, err := config.DefaultConfigPath(); err == nil {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	// No config found anywhere; write the default to ~/.config/trove/.
	// An empty return (bootstrap skipped or failed) is fine.
	return config.BootstrapConfig()
}

func openStore(cfg *config.Config) (store.MultiModal, error) {
	st, err := store.Open(&store.Config{
		Backend:    cfg.Storage.Backend,
		Path:       cfg.Storage.Path,
		Dimensions: cfg.Storage.Dimensions,
	})
	if err != nil {
		return nil, troveerr.Wrapf(err, troveerr.CodeCLISetupFailure, "opening store at %s", cfg.Storage.Path)
	}
	return st, nil
}

// buildEmbedder wires the OpenAI embedder behind the chunking pipeline
// configured for ingest.
func buildEmbedder(cfg *config.Config) (embed.Embedder, error) {
	inner, err := embed.NewOpenAIEmbedder(embed.OpenAIConfig{
		APIKey:     cfg.Embedder.APIKey,
		BaseURL:    cfg.Embedder.BaseURL,
		Model:      cfg.Embedder.Model,
		Dimensions: cfg.Storage.Dimensions,
	})
	if err != nil {
		return nil, err
	}

	return embed.NewChunkingEmbedder(inner, embed.Chunker{
		Strategy: embed.Strategy(cfg.Chunking.Strategy),
		Size:     cfg.Chunking.Size,
		Overlap:  cfg.Chunking.Overlap,
	}, embed.Pooling(cfg.Chunking.Pooling))
}

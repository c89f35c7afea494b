// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	troveerr "github.com/trovekit/trove/pkg/errors"
)

// initFile mirrors the config schema with yaml tags so `trove init`
// writes a file config.Load reads back unchanged.
type initFile struct {
	Server struct {
		Listen string `yaml:"listen"`
	} `yaml:"server"`
	Storage struct {
		Backend    string `yaml:"backend"`
		Path       string `yaml:"path"`
		Dimensions int    `yaml:"dimensions"`
	} `yaml:"storage"`
	Embedder struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
	} `yaml:"embedder"`
	Chunking struct {
		Strategy string `yaml:"strategy"`
		Size     int    `yaml:"size"`
		Overlap  int    `yaml:"overlap"`
		Pooling  string `yaml:"pooling"`
	} `yaml:"chunking"`
	Search struct {
		Weight              float64 `yaml:"weight"`
		Limit               int     `yaml:"limit"`
		SimilarityThreshold float64 `yaml:"similarity_threshold"`
	} `yaml:"search"`
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Long:  "Write a trove.yaml with sensible defaults. The embedder API key is read from TROVE_EMBEDDER_API_KEY, not stored in the file.",
		RunE:  runInit,
	}

	cmd.Flags().String("path", "trove.yaml", "where to write the config file")
	cmd.Flags().String("db", "trove.db", "database file path")
	cmd.Flags().String("listen", "127.0.0.1:8470", "HTTP listen address")
	cmd.Flags().Int("dimensions", 1536, "embedding dimensions (fixed at store creation)")
	cmd.Flags().Bool("force", false, "overwrite an existing config file")

	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("path")
	force, _ := cmd.Flags().GetBool("force")

	if !force {
		if _, err := os.Stat(path); err == nil {
			return troveerr.Errorf(troveerr.CodeCLIInputInvalid, "%s already exists (use --force to overwrite)", path)
		}
	}

	var f initFile
	f.Server.Listen, _ = cmd.Flags().GetString("listen")
	f.Storage.Backend = "sqlite"
	f.Storage.Path, _ = cmd.Flags().GetString("db")
	f.Storage.Dimensions, _ = cmd.Flags().GetInt("dimensions")
	f.Embedder.Provider = "openai"
	f.Embedder.Model = "text-embedding-3-small"
	f.Chunking.Strategy = "sentences"
	f.Chunking.Size = 1200
	f.Chunking.Overlap = 120
	f.Chunking.Pooling = "mean"
	f.Search.Weight = 0.5
	f.Search.Limit = 10
	f.Search.SimilarityThreshold = 0.95

	data, err := yaml.Marshal(&f)
	if err != nil {
		return troveerr.Wrapf(err, troveerr.CodeCLISetupFailure, "marshalling config")
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return troveerr.Wrapf(err, troveerr.CodeCLISetupFailure, "writing %s", path)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return err
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	troveerr "github.com/trovekit/trove/pkg/errors"
)

func newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Embed and upsert text files into the store",
		Long:  "Each file becomes one document: the content is chunked, embedded, pooled, and upserted with near-duplicate detection. All files in one run share a batch ID in their metadata.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runIngest,
	}

	cmd.Flags().Float64("threshold", 0, "similarity threshold for dedup; 0 uses the configured default")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	threshold, _ := cmd.Flags().GetFloat64("threshold")
	if threshold == 0 {
		threshold = cfg.Search.SimilarityThreshold
	}

	batch := uuid.NewString()
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	for _, path := range args {
		raw, err := os.ReadFile(path)
		if err != nil {
			return troveerr.Wrapf(err, troveerr.CodeCLIIngestFailure, "reading %s", path)
		}
		content := strings.TrimSpace(string(raw))
		if content == "" {
			fmt.Fprintf(out, "skipping %s: empty\n", path)
			continue
		}

		vec, err := embedder.Embed(ctx, content)
		if err != nil {
			return troveerr.Wrapf(err, troveerr.CodeCLIIngestFailure, "embedding %s", path)
		}

		meta, err := json.Marshal(map[string]string{"source": path, "batch": batch})
		if err != nil {
			return troveerr.Wrapf(err, troveerr.CodeCLIIngestFailure, "encoding metadata for %s", path)
		}

		title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		res, err := st.UpsertDocumentWithVector(ctx, title, content, string(meta), vec, threshold)
		if err != nil {
			return troveerr.Wrapf(err, troveerr.CodeCLIIngestFailure, "upserting %s", path)
		}

		fmt.Fprintf(out, "%s -> document %d (vector %d)\n", path, res.DocumentID, res.VectorID)
	}

	fmt.Fprintf(out, "batch %s: %d files\n", batch, len(args))
	return nil
}

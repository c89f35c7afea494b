// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trovekit/trove/internal/store"
	troveerr "github.com/trovekit/trove/pkg/errors"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Query the store",
		Long:  "Run a hybrid, semantic, or lexical query against the local store and print ranked results.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}

	cmd.Flags().String("mode", "hybrid", "search mode: hybrid, semantic, or lexical")
	cmd.Flags().Float64("weight", -1, "vector weight in [0,1] for hybrid mode; -1 uses the configured default")
	cmd.Flags().Int("limit", 0, "maximum results; 0 uses the configured default")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	mode, _ := cmd.Flags().GetString("mode")
	weight, _ := cmd.Flags().GetFloat64("weight")
	if weight < 0 {
		weight = cfg.Search.Weight
	}
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.Search.Limit
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch mode {
	case "lexical":
		hits, err := st.Lexical().Search(ctx, query, limit)
		if err != nil {
			return err
		}
		for i, h := range hits {
			fmt.Fprintf(out, "%2d. [document %d] %s\n    %s\n", i+1, h.ID, h.Title, h.Snippet)
		}
		return nil

	case "semantic", "hybrid":
		embedder, err := buildEmbedder(cfg)
		if err != nil {
			return err
		}
		vec, err := embedder.Embed(ctx, query)
		if err != nil {
			return err
		}

		var results []store.SearchResult
		if mode == "semantic" {
			results, err = st.SemanticSearch(ctx, vec, limit)
		} else {
			results, err = st.HybridSearch(ctx, query, vec, weight, limit)
		}
		if err != nil {
			return err
		}

		for i, r := range results {
			fmt.Fprintf(out, "%2d. [%s %d] %s (score %.3f)\n", i+1, r.Kind, r.EntityID, r.Title, r.Score)
			if r.Snippet != "" {
				fmt.Fprintf(out, "    %s\n", r.Snippet)
			}
		}
		return nil

	default:
		return troveerr.Errorf(troveerr.CodeCLIInputInvalid, "unknown search mode %q (use hybrid, semantic, or lexical)", mode)
	}
}

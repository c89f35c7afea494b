// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root trove command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "trove",
		Short:         "Trove — multi-modal knowledge store",
		Long:          "Trove unifies vector similarity, keyword ranking, and a property graph behind one store.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			setupLogging(verbose)
			return nil
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newInitCmd(),
		newServeCmd(),
		newIngestCmd(),
		newSearchCmd(),
		newVersionCmd(),
	)

	return root
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

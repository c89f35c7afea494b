// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trovekit/trove/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRootCommand_AllSubcommands(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)

	for _, cmd := range []string{"init", "serve", "ingest", "search", "version"} {
		assert.Contains(t, out, cmd, "root help should list %q subcommand", cmd)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "trove dev")
}

func TestInitCommand_WritesLoadableConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "trove.yaml")

	out, err := execute(t, "init", "--path", cfgPath, "--db", filepath.Join(dir, "trove.db"), "--dimensions", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Storage.Dimensions)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)

	info, err := os.Stat(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestInitCommand_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "trove.yaml")

	_, err := execute(t, "init", "--path", cfgPath)
	require.NoError(t, err)

	_, err = execute(t, "init", "--path", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "init", "--path", cfgPath, "--force")
	require.NoError(t, err)
}

func TestDiscoverConfig_BootstrapsDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	path := discoverConfig()
	require.Equal(t, filepath.Join(home, ".config", "trove", "trove.yaml"), path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Validate())

	// A second discovery finds the bootstrapped file instead of rewriting it.
	assert.Equal(t, path, discoverConfig())
}

// writeTestConfig writes a config pointing at a temp database with a tiny
// vector dimension.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "trove.yaml")
	_, err := execute(t, "init", "--path", cfgPath, "--db", filepath.Join(dir, "trove.db"), "--dimensions", "3")
	require.NoError(t, err)
	return cfgPath
}

func TestSearchCommand_UnknownMode(t *testing.T) {
	cfgPath := writeTestConfig(t)

	_, err := execute(t, "search", "--config", cfgPath, "--mode", "bogus", "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown search mode")
}

func TestSearchCommand_LexicalEmptyStore(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := execute(t, "search", "--config", cfgPath, "--mode", "lexical", "anything")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestIngestCommand_RequiresAPIKey(t *testing.T) {
	t.Setenv("TROVE_EMBEDDER_API_KEY", "")
	cfgPath := writeTestConfig(t)

	src := filepath.Join(t.TempDir(), "note.txt")
	require.NoError(t, os.WriteFile(src, []byte("some text"), 0o644))

	_, err := execute(t, "ingest", "--config", cfgPath, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package sqlite_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trovekit/trove/internal/store/sqlite"
)

// testDBPath returns a SQLite file path inside a per-test temp dir.
func testDBPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name+".db")
}

// openStore opens a store with the given dimensions and closes it when the
// test finishes.
func openStore(t *testing.T, name string, dimensions int) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(testDBPath(t, name), dimensions)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

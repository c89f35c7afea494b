// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trovekit/trove/internal/store"
)

func TestEntityKindValid(t *testing.T) {
	assert.True(t, store.KindDocument.Valid())
	assert.True(t, store.KindNode.Valid())
	assert.False(t, store.EntityKind("widget").Valid())
	assert.False(t, store.EntityKind("").Valid())
}

func TestDirectionValid(t *testing.T) {
	assert.True(t, store.DirectionOutgoing.Valid())
	assert.True(t, store.DirectionIncoming.Valid())
	assert.True(t, store.DirectionBoth.Valid())
	assert.False(t, store.Direction("sideways").Valid())
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := store.Open(&store.Config{Backend: "bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported storage backend")
}

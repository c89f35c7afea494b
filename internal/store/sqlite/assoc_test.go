// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trovekit/trove/internal/store"
	errs "github.com/trovekit/trove/pkg/errors"
)

func TestAssociationLinker_LinkAndList(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, "assoc", 3)
	al := s.Associations()

	require.NoError(t, al.Link(ctx, store.Association{
		VectorID: 1, Kind: store.KindDocument, EntityID: 10, Relevance: 0.9,
	}))
	require.NoError(t, al.Link(ctx, store.Association{
		VectorID: 1, Kind: store.KindNode, EntityID: 20,
	}))

	assocs, err := al.AssociationsOf(ctx, 1)
	require.NoError(t, err)
	require.Len(t, assocs, 2)

	// Ordered by relevance descending; unspecified relevance defaults
	// to 1.0.
	assert.Equal(t, store.KindNode, assocs[0].Kind)
	assert.Equal(t, 1.0, assocs[0].Relevance)
	assert.Equal(t, store.KindDocument, assocs[1].Kind)
	assert.Equal(t, 0.9, assocs[1].Relevance)
}

func TestAssociationLinker_RelinkOverwritesRelevance(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, "assoc-relink", 3)
	al := s.Associations()

	a := store.Association{VectorID: 1, Kind: store.KindDocument, EntityID: 10, Relevance: 0.5}
	require.NoError(t, al.Link(ctx, a))

	a.Relevance = 0.7
	require.NoError(t, al.Link(ctx, a))

	assocs, err := al.AssociationsOf(ctx, 1)
	require.NoError(t, err)
	require.Len(t, assocs, 1, "re-linking the same triple must not add a row")
	assert.Equal(t, 0.7, assocs[0].Relevance)
}

func TestAssociationLinker_RejectsInvalidKind(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, "assoc-kind", 3)

	err := s.Associations().Link(ctx, store.Association{
		VectorID: 1, Kind: store.EntityKind("widget"), EntityID: 10,
	})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

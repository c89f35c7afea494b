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

func TestStore_SemanticSearchResolvesOwners(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, "semantic", 3)

	doc, err := s.InsertDocumentWithVector(ctx, "Sky", "blue", "{}", []float32{1, 0, 0})
	require.NoError(t, err)

	nodeID, _, err := s.InsertNodeWithVector(ctx, "gravity", "concept", "{}", []float32{0, 1, 0})
	require.NoError(t, err)

	// An orphan vector with no association is discarded from results.
	_, err = s.Vectors().Insert(ctx, []float32{0.9, 0.1, 0})
	require.NoError(t, err)

	results, err := s.SemanticSearch(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, store.KindDocument, results[0].Kind)
	assert.Equal(t, doc.DocumentID, results[0].EntityID)
	assert.Equal(t, "Sky", results[0].Title)
	assert.InDelta(t, 1.0, results[0].Score, 1e-5)

	assert.Equal(t, store.KindNode, results[1].Kind)
	assert.Equal(t, nodeID, results[1].EntityID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestStore_HybridSearchEndToEnd(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, "hybrid-e2e", 3)

	doc, err := s.InsertDocumentWithVector(ctx, "Sky", "blue", "{}", []float32{1, 0, 0})
	require.NoError(t, err)

	hits, err := s.Vectors().KNN(ctx, []float32{0.99, 0.01, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, doc.VectorID, hits[0].ID)
	assert.InDelta(t, 0.0, hits[0].Distance, 1e-3)

	results, err := s.HybridSearch(ctx, "sky", []float32{0.99, 0.01, 0}, 0.7, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, store.KindDocument, results[0].Kind)
	assert.Equal(t, doc.DocumentID, results[0].EntityID)
	// Vector and lexical contributions are summed.
	assert.Greater(t, results[0].Score, 0.9)
}

func TestStore_HybridSearchPureVectorMatchesSemantic(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, "hybrid-pure-vec", 3)

	_, err := s.InsertDocumentWithVector(ctx, "Sky", "blue sky", "{}", []float32{1, 0, 0})
	require.NoError(t, err)
	_, err = s.InsertDocumentWithVector(ctx, "Sea", "blue sea", "{}", []float32{0.7, 0.7, 0})
	require.NoError(t, err)
	_, _, err = s.InsertNodeWithVector(ctx, "sky watching", "hobby", "{}", []float32{0.1, 0.2, 0.97})
	require.NoError(t, err)

	query := []float32{0.9, 0.1, 0}
	semantic, err := s.SemanticSearch(ctx, query, 10)
	require.NoError(t, err)

	hybrid, err := s.HybridSearch(ctx, "sky", query, 1.0, 10)
	require.NoError(t, err)

	require.Len(t, hybrid, len(semantic))
	for i := range semantic {
		assert.Equal(t, semantic[i].Kind, hybrid[i].Kind)
		assert.Equal(t, semantic[i].EntityID, hybrid[i].EntityID)
		assert.InDelta(t, semantic[i].Score, hybrid[i].Score, 1e-9)
	}
}

func TestStore_HybridSearchPureTextIgnoresVectors(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, "hybrid-pure-text", 3)

	skyDoc, err := s.InsertDocumentWithVector(ctx, "Sky", "sky sky sky", "{}", []float32{1, 0, 0})
	require.NoError(t, err)
	_, err = s.InsertDocumentWithVector(ctx, "Other", "nothing relevant", "{}", []float32{0.99, 0.01, 0})
	require.NoError(t, err)
	nodeID, _, err := s.InsertNodeWithVector(ctx, "sky watching", "hobby", "{}", []float32{0, 1, 0})
	require.NoError(t, err)

	results, err := s.HybridSearch(ctx, "sky", []float32{1, 0, 0}, 0.0, 10)
	require.NoError(t, err)

	// Only textual matches appear: the sky document, then the node
	// (lexical ranking precedes graph-label matches).
	require.Len(t, results, 2)
	assert.Equal(t, store.KindDocument, results[0].Kind)
	assert.Equal(t, skyDoc.DocumentID, results[0].EntityID)
	assert.Equal(t, store.KindNode, results[1].Kind)
	assert.Equal(t, nodeID, results[1].EntityID)

	// Position-decayed scores: (1 - 0/2) * 1 and (1 - 1/2) * 1.
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.InDelta(t, 0.5, results[1].Score, 1e-9)
}

func TestStore_HybridSearchSumsCrossModalScores(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, "hybrid-sum", 3)

	// Matches both by vector and by keyword.
	both, err := s.InsertDocumentWithVector(ctx, "Sky", "the sky is blue", "{}", []float32{1, 0, 0})
	require.NoError(t, err)
	// Matches by vector only.
	vecOnly, err := s.InsertDocumentWithVector(ctx, "Heavens", "azure firmament", "{}", []float32{0.95, 0.05, 0})
	require.NoError(t, err)

	results, err := s.HybridSearch(ctx, "sky", []float32{1, 0, 0}, 0.5, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// The doubly matched document outranks the vector-only one: its
	// lexical contribution is added on top of the vector score.
	assert.Equal(t, both.DocumentID, results[0].EntityID)
	assert.Equal(t, vecOnly.DocumentID, results[1].EntityID)
	assert.Greater(t, results[0].Score, results[1].Score)
	// sim*0.5 + (1-0/1)*0.5 ~ 1.0 for the fused entry.
	assert.InDelta(t, 1.0, results[0].Score, 1e-3)
}

func TestStore_HybridSearchValidatesWeight(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, "hybrid-weight", 3)

	_, err := s.HybridSearch(ctx, "sky", []float32{1, 0, 0}, 1.1, 10)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))

	_, err = s.HybridSearch(ctx, "sky", []float32{1, 0, 0}, -0.1, 10)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestStore_HybridSearchTruncatesToLimit(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, "hybrid-limit", 3)

	vecs := [][]float32{{1, 0, 0}, {0.9, 0.1, 0}, {0.8, 0.2, 0}, {0.7, 0.3, 0}}
	for i, v := range vecs {
		_, err := s.InsertDocumentWithVector(ctx, "Sky", "sky", "{}", v)
		require.NoError(t, err, "doc %d", i)
	}

	results, err := s.HybridSearch(ctx, "sky", []float32{1, 0, 0}, 0.5, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package sqlite

import (
	"context"

	"github.com/trovekit/trove/internal/store"
	errs "github.com/trovekit/trove/pkg/errors"
)

// dedupCandidates is how many nearest neighbors the upsert inspects when
// looking for a near-duplicate vector.
const dedupCandidates = 5

// InsertDocumentWithVector inserts a document, its vector, and the
// association between them inside one transaction. Any step's failure
// rolls back all three; the causing error surfaces unchanged.
func (s *Store) InsertDocumentWithVector(ctx context.Context, title, content, metadata string, vector []float32) (store.UpsertResult, error) {
	// Validation failures happen before the transaction opens.
	if err := s.vectors.validate(vector); err != nil {
		return store.UpsertResult{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.UpsertResult{}, errs.Wrap(err, errs.CodeStoreTransactionFailure, "beginning compound insert")
	}
	defer func() { _ = tx.Rollback() }()

	docID, err := s.lexical.insertDocument(ctx, tx, title, content, metadata)
	if err != nil {
		return store.UpsertResult{}, err
	}

	vecID, err := s.vectors.insert(ctx, tx, vector)
	if err != nil {
		return store.UpsertResult{}, err
	}

	if err := s.assoc.link(ctx, tx, store.Association{
		VectorID: vecID,
		Kind:     store.KindDocument,
		EntityID: docID,
	}); err != nil {
		return store.UpsertResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return store.UpsertResult{}, errs.Wrap(err, errs.CodeStoreTransactionFailure, "committing compound insert")
	}
	return store.UpsertResult{DocumentID: docID, VectorID: vecID}, nil
}

// InsertNodeWithVector inserts a graph node, its vector, and the
// association between them inside one transaction.
func (s *Store) InsertNodeWithVector(ctx context.Context, label, typ, properties string, vector []float32) (int64, int64, error) {
	if err := s.vectors.validate(vector); err != nil {
		return 0, 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, errs.Wrap(err, errs.CodeStoreTransactionFailure, "beginning compound insert")
	}
	defer func() { _ = tx.Rollback() }()

	nodeID, err := s.graph.insertNode(ctx, tx, label, typ, properties)
	if err != nil {
		return 0, 0, err
	}

	vecID, err := s.vectors.insert(ctx, tx, vector)
	if err != nil {
		return 0, 0, err
	}

	if err := s.assoc.link(ctx, tx, store.Association{
		VectorID: vecID,
		Kind:     store.KindNode,
		EntityID: nodeID,
	}); err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, errs.Wrap(err, errs.CodeStoreTransactionFailure, "committing compound insert")
	}
	return nodeID, vecID, nil
}

// UpsertDocumentWithVector deduplicates on write. When a stored vector
// lies within cosine distance 1-threshold of vector it becomes the
// canonical vector: its owning document's content is replaced (delete-
// then-insert, association repaired to the fresh ID) and no new vector is
// written. A canonical vector owning no document gains a second entity.
// Otherwise this degenerates to InsertDocumentWithVector.
//
// The whole sequence runs in one transaction, but there is no cross-call
// lock: two concurrent upserts of near-identical vectors can each decide
// no duplicate exists and both insert.
func (s *Store) UpsertDocumentWithVector(ctx context.Context, title, content, metadata string, vector []float32, threshold float64) (store.UpsertResult, error) {
	if err := s.vectors.validate(vector); err != nil {
		return store.UpsertResult{}, err
	}
	if threshold == 0 {
		threshold = store.DefaultSimilarityThreshold
	}
	if threshold < 0 || threshold > 1 {
		return store.UpsertResult{}, errs.Errorf(errs.CodeUpsertThresholdInvalid,
			"similarity threshold must be in [0, 1], got %v", threshold)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.UpsertResult{}, errs.Wrap(err, errs.CodeStoreTransactionFailure, "beginning upsert")
	}
	defer func() { _ = tx.Rollback() }()

	hits, err := s.vectors.knn(ctx, tx, vector, dedupCandidates)
	if err != nil {
		return store.UpsertResult{}, err
	}

	// Cosine similarity >= threshold means distance <= 1 - threshold.
	// Hits are ordered ascending, so the first qualifying hit is the
	// nearest canonical candidate.
	maxDistance := 1 - threshold
	canonical, found := int64(0), false
	for _, h := range hits {
		if h.Distance <= maxDistance {
			canonical, found = h.ID, true
			break
		}
	}

	var result store.UpsertResult
	if found {
		result, err = s.reuseCanonicalVector(ctx, tx, canonical, title, content, metadata)
	} else {
		result, err = s.insertFresh(ctx, tx, title, content, metadata, vector)
	}
	if err != nil {
		return store.UpsertResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return store.UpsertResult{}, errs.Wrap(err, errs.CodeStoreTransactionFailure, "committing upsert")
	}
	return result, nil
}

// reuseCanonicalVector routes an upsert onto an existing near-duplicate
// vector: replace the owning document's content, or link a new document
// when the vector owns none.
func (s *Store) reuseCanonicalVector(ctx context.Context, tx dbtx, vectorID int64, title, content, metadata string) (store.UpsertResult, error) {
	assocs, err := s.assoc.associationsOf(ctx, tx, vectorID)
	if err != nil {
		return store.UpsertResult{}, err
	}

	for _, a := range assocs {
		if a.Kind != store.KindDocument {
			continue
		}

		newID, err := s.lexical.replaceDocument(ctx, tx, a.EntityID, title, content, metadata)
		if err != nil {
			return store.UpsertResult{}, err
		}
		if newID != a.EntityID {
			if err := s.assoc.retarget(ctx, tx, vectorID, store.KindDocument, a.EntityID, newID); err != nil {
				return store.UpsertResult{}, err
			}
		}
		return store.UpsertResult{DocumentID: newID, VectorID: vectorID}, nil
	}

	// No document owns this vector yet; the same vector now serves a
	// second entity.
	docID, err := s.lexical.insertDocument(ctx, tx, title, content, metadata)
	if err != nil {
		return store.UpsertResult{}, err
	}
	if err := s.assoc.link(ctx, tx, store.Association{
		VectorID: vectorID,
		Kind:     store.KindDocument,
		EntityID: docID,
	}); err != nil {
		return store.UpsertResult{}, err
	}
	return store.UpsertResult{DocumentID: docID, VectorID: vectorID}, nil
}

func (s *Store) insertFresh(ctx context.Context, tx dbtx, title, content, metadata string, vector []float32) (store.UpsertResult, error) {
	docID, err := s.lexical.insertDocument(ctx, tx, title, content, metadata)
	if err != nil {
		return store.UpsertResult{}, err
	}

	vecID, err := s.vectors.insert(ctx, tx, vector)
	if err != nil {
		return store.UpsertResult{}, err
	}

	if err := s.assoc.link(ctx, tx, store.Association{
		VectorID: vecID,
		Kind:     store.KindDocument,
		EntityID: docID,
	}); err != nil {
		return store.UpsertResult{}, err
	}
	return store.UpsertResult{DocumentID: docID, VectorID: vecID}, nil
}

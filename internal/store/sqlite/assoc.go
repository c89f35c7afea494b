// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package sqlite

import (
	"context"
	"database/sql"

	"github.com/trovekit/trove/internal/store"
	errs "github.com/trovekit/trove/pkg/errors"
)

// Compile-time interface check.
var _ store.AssociationLinker = (*AssociationLinker)(nil)

// AssociationLinker implements store.AssociationLinker: a many-to-many
// join surface keyed by (vector_id, entity_kind, entity_id).
type AssociationLinker struct {
	db *sql.DB
}

// Link inserts or replaces the association row. A zero Relevance means
// unspecified and defaults to 1.0.
func (a *AssociationLinker) Link(ctx context.Context, assoc store.Association) error {
	return a.link(ctx, a.db, assoc)
}

func (a *AssociationLinker) link(ctx context.Context, q dbtx, assoc store.Association) error {
	if !assoc.Kind.Valid() {
		return errs.Errorf(errs.CodeAssociationKindInvalid, "invalid entity kind %q", assoc.Kind)
	}
	if assoc.Relevance == 0 {
		assoc.Relevance = 1.0
	}

	const linkQ = `INSERT INTO associations(vector_id, entity_kind, entity_id, relevance)
VALUES (?, ?, ?, ?)
ON CONFLICT(vector_id, entity_kind, entity_id) DO UPDATE SET relevance = excluded.relevance`

	if _, err := q.ExecContext(ctx, linkQ, assoc.VectorID, string(assoc.Kind), assoc.EntityID, assoc.Relevance); err != nil {
		return errs.Wrap(err, errs.CodeStoreDatabaseFailure, "linking association",
			errs.FieldVectorID(assoc.VectorID), errs.FieldEntityKind(string(assoc.Kind)))
	}
	return nil
}

func (a *AssociationLinker) AssociationsOf(ctx context.Context, vectorID int64) ([]store.Association, error) {
	return a.associationsOf(ctx, a.db, vectorID)
}

func (a *AssociationLinker) associationsOf(ctx context.Context, q dbtx, vectorID int64) ([]store.Association, error) {
	const assocQ = `SELECT entity_kind, entity_id, relevance FROM associations
WHERE vector_id = ?
ORDER BY relevance DESC, entity_kind, entity_id`

	rows, err := q.QueryContext(ctx, assocQ, vectorID)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "querying associations", errs.FieldVectorID(vectorID))
	}
	defer func() { _ = rows.Close() }()

	var assocs []store.Association
	for rows.Next() {
		assoc := store.Association{VectorID: vectorID}
		var kind string
		if err := rows.Scan(&kind, &assoc.EntityID, &assoc.Relevance); err != nil {
			return nil, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "scanning association")
		}
		assoc.Kind = store.EntityKind(kind)
		assocs = append(assocs, assoc)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "iterating associations")
	}

	return assocs, nil
}

// retarget repoints one association row at a new entity ID after a
// delete-then-insert replacement changed the entity's identity.
func (a *AssociationLinker) retarget(ctx context.Context, q dbtx, vectorID int64, kind store.EntityKind, oldID, newID int64) error {
	const retargetQ = `UPDATE associations SET entity_id = ?
WHERE vector_id = ? AND entity_kind = ? AND entity_id = ?`

	if _, err := q.ExecContext(ctx, retargetQ, newID, vectorID, string(kind), oldID); err != nil {
		return errs.Wrap(err, errs.CodeStoreDatabaseFailure, "retargeting association",
			errs.FieldVectorID(vectorID), errs.FieldEntityKind(string(kind)))
	}
	return nil
}

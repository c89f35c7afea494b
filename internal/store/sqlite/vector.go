// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package sqlite

import (
	"context"
	"database/sql"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"

	"github.com/trovekit/trove/internal/store"
	errs "github.com/trovekit/trove/pkg/errors"
)

// Compile-time interface check.
var _ store.VectorIndex = (*VectorIndex)(nil)

// VectorIndex implements store.VectorIndex on a vec0 virtual table with
// cosine distance. Rows are keyed by rowid; the coordinator aligns those
// rowids with association rows.
type VectorIndex struct {
	db         *sql.DB
	dimensions int
}

// validate rejects a wrong-length vector before any SQL executes, so a
// failed insert leaves the index size unchanged.
func (v *VectorIndex) validate(values []float32) error {
	if len(values) != v.dimensions {
		return errs.Errorf(errs.CodeVectorDimensionMismatch,
			"expected %d dimensions, got %d", v.dimensions, len(values))
	}
	return nil
}

func (v *VectorIndex) Insert(ctx context.Context, values []float32) (int64, error) {
	return v.insert(ctx, v.db, values)
}

func (v *VectorIndex) insert(ctx context.Context, q dbtx, values []float32) (int64, error) {
	if err := v.validate(values); err != nil {
		return 0, err
	}

	blob, err := sqlite_vec.SerializeFloat32(values)
	if err != nil {
		return 0, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "serializing embedding")
	}

	res, err := q.ExecContext(ctx, `INSERT INTO vectors(embedding) VALUES (?)`, blob)
	if err != nil {
		return 0, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "inserting vector")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "resolving vector id")
	}
	return id, nil
}

func (v *VectorIndex) InsertWithID(ctx context.Context, id int64, values []float32) error {
	return v.insertWithID(ctx, v.db, id, values)
}

func (v *VectorIndex) insertWithID(ctx context.Context, q dbtx, id int64, values []float32) error {
	if err := v.validate(values); err != nil {
		return err
	}

	blob, err := sqlite_vec.SerializeFloat32(values)
	if err != nil {
		return errs.Wrap(err, errs.CodeStoreDatabaseFailure, "serializing embedding")
	}

	if _, err := q.ExecContext(ctx, `INSERT INTO vectors(rowid, embedding) VALUES (?, ?)`, id, blob); err != nil {
		return errs.Wrap(err, errs.CodeStoreDatabaseFailure, "inserting vector", errs.FieldVectorID(id))
	}
	return nil
}

func (v *VectorIndex) KNN(ctx context.Context, query []float32, k int) ([]store.VectorHit, error) {
	return v.knn(ctx, v.db, query, k)
}

func (v *VectorIndex) knn(ctx context.Context, q dbtx, query []float32, k int) ([]store.VectorHit, error) {
	if err := v.validate(query); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	blob, err := sqlite_vec.SerializeFloat32(query)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "serializing query vector")
	}

	const knnQ = `SELECT rowid, distance FROM vectors
WHERE embedding MATCH ? AND k = ?
ORDER BY distance`

	rows, err := q.QueryContext(ctx, knnQ, blob, k)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "querying nearest neighbors")
	}
	defer func() { _ = rows.Close() }()

	var hits []store.VectorHit
	for rows.Next() {
		var h store.VectorHit
		if err := rows.Scan(&h.ID, &h.Distance); err != nil {
			return nil, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "scanning nearest neighbor")
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "iterating nearest neighbors")
	}

	return hits, nil
}

// Delete removes the vector row. Deleting an absent ID is a no-op.
func (v *VectorIndex) Delete(ctx context.Context, id int64) error {
	return v.delete(ctx, v.db, id)
}

func (v *VectorIndex) delete(ctx context.Context, q dbtx, id int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM vectors WHERE rowid = ?`, id); err != nil {
		return errs.Wrap(err, errs.CodeStoreDatabaseFailure, "deleting vector", errs.FieldVectorID(id))
	}
	return nil
}

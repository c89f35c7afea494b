// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

// Package sqlite implements the multi-modal store on a single SQLite
// database: a sqlite-vec vec0 virtual table for vectors, an FTS5 index for
// documents, plain tables for the property graph and associations. All four
// indices share one connection owned by the coordinator.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/trovekit/trove/internal/store"
	errs "github.com/trovekit/trove/pkg/errors"
)

func init() {
	sqlite_vec.Auto()
	store.RegisterBackend("sqlite", func(path string, dimensions int) (store.MultiModal, error) {
		return Open(path, dimensions)
	})
}

// dbtx is the subset of *sql.DB and *sql.Tx the index types run on, so the
// coordinator can route compound writes through a single transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Compile-time interface check.
var _ store.MultiModal = (*Store)(nil)

// Store coordinates the vector, lexical, and graph indices over one shared
// SQLite database. The coordinator owns the connection; the index types it
// hands out operate through it.
type Store struct {
	db         *sql.DB
	dimensions int
	vectors    *VectorIndex
	lexical    *LexicalIndex
	graph      *GraphStore
	assoc      *AssociationLinker
	logger     *slog.Logger
}

// Open opens (or creates) the SQLite database at path and initialises the
// vec0 virtual table and companion tables. Construction fails if the
// vector extension cannot load or any table cannot be created; the
// connection is released on every failure path.
func Open(path string, dimensions int) (*Store, error) {
	if dimensions <= 0 {
		return nil, errs.Errorf(errs.CodeStoreOpenFailure, "vector dimensions must be positive, got %d", dimensions)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeStoreOpenFailure, "opening sqlite db")
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errs.Wrap(err, errs.CodeStoreOpenFailure, "pinging sqlite db")
	}

	if err := migrate(db, dimensions); err != nil {
		_ = db.Close()
		return nil, errs.Wrap(err, errs.CodeStoreOpenFailure, "migrating store tables")
	}

	return &Store{
		db:         db,
		dimensions: dimensions,
		vectors:    &VectorIndex{db: db, dimensions: dimensions},
		lexical:    &LexicalIndex{db: db},
		graph:      &GraphStore{db: db},
		assoc:      &AssociationLinker{db: db},
		logger:     slog.Default(),
	}, nil
}

func migrate(db *sql.DB, dimensions int) error {
	// The dimension comes from store construction, never from a caller
	// string; the schema is otherwise fixed.
	vecDDL := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS vectors USING vec0(embedding float[%d] distance_metric=cosine)`,
		dimensions,
	)
	if _, err := db.Exec(vecDDL); err != nil {
		return fmt.Errorf("creating vectors virtual table: %w", err)
	}

	const docsDDL = `
CREATE TABLE IF NOT EXISTS documents (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	title    TEXT NOT NULL,
	content  TEXT NOT NULL,
	metadata TEXT NOT NULL DEFAULT '{}'
);

CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
	title, content,
	content='documents', content_rowid='id'
);

CREATE TRIGGER IF NOT EXISTS documents_fts_insert AFTER INSERT ON documents BEGIN
	INSERT INTO documents_fts(rowid, title, content) VALUES (new.id, new.title, new.content);
END;

CREATE TRIGGER IF NOT EXISTS documents_fts_delete AFTER DELETE ON documents BEGIN
	INSERT INTO documents_fts(documents_fts, rowid, title, content)
	VALUES ('delete', old.id, old.title, old.content);
END;
`
	if _, err := db.Exec(docsDDL); err != nil {
		return fmt.Errorf("creating document tables: %w", err)
	}

	const graphDDL = `
CREATE TABLE IF NOT EXISTS nodes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	label      TEXT NOT NULL,
	type       TEXT NOT NULL DEFAULT '',
	properties TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS edges (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	source     INTEGER NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
	target     INTEGER NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
	relation   TEXT NOT NULL,
	weight     REAL NOT NULL DEFAULT 1.0,
	properties TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_nodes_label ON nodes(label);
CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target);
`
	if _, err := db.Exec(graphDDL); err != nil {
		return fmt.Errorf("creating graph tables: %w", err)
	}

	const assocDDL = `
CREATE TABLE IF NOT EXISTS associations (
	vector_id   INTEGER NOT NULL,
	entity_kind TEXT NOT NULL CHECK (entity_kind IN ('document', 'node')),
	entity_id   INTEGER NOT NULL,
	relevance   REAL NOT NULL DEFAULT 1.0,
	PRIMARY KEY (vector_id, entity_kind, entity_id)
);
`
	if _, err := db.Exec(assocDDL); err != nil {
		return fmt.Errorf("creating associations table: %w", err)
	}

	return nil
}

func (s *Store) Vectors() store.VectorIndex           { return s.vectors }
func (s *Store) Lexical() store.LexicalIndex          { return s.lexical }
func (s *Store) Graph() store.GraphStore              { return s.graph }
func (s *Store) Associations() store.AssociationLinker { return s.assoc }

// Close releases the shared database connection.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errs.Wrap(err, errs.CodeStoreCloseFailure, "closing sqlite db")
	}
	return nil
}

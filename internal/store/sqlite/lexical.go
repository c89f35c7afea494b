// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/trovekit/trove/internal/store"
	errs "github.com/trovekit/trove/pkg/errors"
)

// Compile-time interface check.
var _ store.LexicalIndex = (*LexicalIndex)(nil)

// LexicalIndex implements store.LexicalIndex on a documents table mirrored
// into an external-content FTS5 index. The substrate is append-only:
// replacing a document's content is delete-then-insert and assigns a new
// rowid, which the coordinator must repair in dependent associations.
type LexicalIndex struct {
	db *sql.DB
}

func (l *LexicalIndex) InsertDocument(ctx context.Context, title, content, metadata string) (int64, error) {
	return l.insertDocument(ctx, l.db, title, content, metadata)
}

func (l *LexicalIndex) insertDocument(ctx context.Context, q dbtx, title, content, metadata string) (int64, error) {
	if metadata == "" {
		metadata = "{}"
	}

	res, err := q.ExecContext(ctx,
		`INSERT INTO documents(title, content, metadata) VALUES (?, ?, ?)`,
		title, content, metadata,
	)
	if err != nil {
		return 0, errs.Wrap(err, errs.CodeLexicalIndexFailed, "inserting document")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errs.Wrap(err, errs.CodeLexicalIndexFailed, "resolving document id")
	}
	return id, nil
}

// Search returns BM25-ranked matches, most relevant first, with query
// terms highlighted in the snippet. A query that sanitizes to nothing
// matches nothing.
func (l *LexicalIndex) Search(ctx context.Context, query string, limit int) ([]store.LexicalHit, error) {
	match := sanitizeQuery(query)
	if match == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	const q = `SELECT d.id, d.title,
	snippet(documents_fts, 1, '<b>', '</b>', '…', 12),
	d.metadata
FROM documents_fts
JOIN documents d ON d.id = documents_fts.rowid
WHERE documents_fts MATCH ?
ORDER BY bm25(documents_fts)
LIMIT ?`

	rows, err := l.db.QueryContext(ctx, q, match, limit)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "searching documents")
	}
	defer func() { _ = rows.Close() }()

	var hits []store.LexicalHit
	for rows.Next() {
		var h store.LexicalHit
		if err := rows.Scan(&h.ID, &h.Title, &h.Snippet, &h.Metadata); err != nil {
			return nil, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "scanning document hit")
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "iterating document hits")
	}

	return hits, nil
}

func (l *LexicalIndex) GetDocument(ctx context.Context, id int64) (*store.Document, error) {
	return l.getDocument(ctx, l.db, id)
}

func (l *LexicalIndex) getDocument(ctx context.Context, q dbtx, id int64) (*store.Document, error) {
	const docQ = `SELECT id, title, content, metadata FROM documents WHERE id = ?`

	doc := &store.Document{}
	err := q.QueryRowContext(ctx, docQ, id).Scan(&doc.ID, &doc.Title, &doc.Content, &doc.Metadata)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.New(errs.CodeDocumentNotFound, "document not found", errs.FieldDocumentID(id))
		}
		return nil, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "getting document", errs.FieldDocumentID(id))
	}
	return doc, nil
}

// DeleteDocument removes the document row. Deleting an absent ID is a no-op.
func (l *LexicalIndex) DeleteDocument(ctx context.Context, id int64) error {
	return l.deleteDocument(ctx, l.db, id)
}

func (l *LexicalIndex) deleteDocument(ctx context.Context, q dbtx, id int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return errs.Wrap(err, errs.CodeStoreDatabaseFailure, "deleting document", errs.FieldDocumentID(id))
	}
	return nil
}

// ReplaceDocument deletes id and reinserts the new fields. The documents
// table uses AUTOINCREMENT, so the returned ID is always fresh.
func (l *LexicalIndex) ReplaceDocument(ctx context.Context, id int64, title, content, metadata string) (int64, error) {
	return l.replaceDocument(ctx, l.db, id, title, content, metadata)
}

func (l *LexicalIndex) replaceDocument(ctx context.Context, q dbtx, id int64, title, content, metadata string) (int64, error) {
	if err := l.deleteDocument(ctx, q, id); err != nil {
		return 0, err
	}
	return l.insertDocument(ctx, q, title, content, metadata)
}

// sanitizeQuery neutralizes reserved FTS5 syntax in a user query: `?` and
// `.` are stripped outright while the remaining reserved characters are
// escaped by doubling quotes and phrase-quoting each token. The
// strip-versus-escape asymmetry is longstanding behavior, kept as is.
func sanitizeQuery(raw string) string {
	cleaned := strings.NewReplacer("?", "", ".", "").Replace(raw)

	fields := strings.Fields(cleaned)
	quoted := make([]string, 0, len(fields))
	for _, tok := range fields {
		tok = strings.ReplaceAll(tok, `"`, `""`)
		quoted = append(quoted, `"`+tok+`"`)
	}
	return strings.Join(quoted, " ")
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

// Package store defines the multi-modal knowledge store contract: a vector
// index, a lexical index, and a property graph joined by vector-to-entity
// associations, coordinated behind compound transactional writes and a
// rank-fusing hybrid query.
package store

import "context"

// DefaultSimilarityThreshold is the cosine-similarity cutoff above which
// an incoming vector is treated as a near-duplicate of a stored one.
const DefaultSimilarityThreshold = 0.95

// VectorIndex stores fixed-dimension embedding vectors keyed by integer ID
// and answers k-nearest-neighbor queries by cosine distance.
type VectorIndex interface {
	// Insert stores values under a freshly assigned ID. Fails with a
	// dimension_mismatch code if len(values) differs from the configured
	// dimension; no row is written in that case.
	Insert(ctx context.Context, values []float32) (int64, error)
	// InsertWithID stores values under a caller-supplied ID, with the
	// same dimension validation as Insert.
	InsertWithID(ctx context.Context, id int64, values []float32) error
	// KNN returns up to k hits ordered by ascending cosine distance.
	KNN(ctx context.Context, query []float32, k int) ([]VectorHit, error)
	// Delete removes the vector. Deleting an absent ID is a no-op.
	Delete(ctx context.Context, id int64) error
}

// LexicalIndex stores documents and answers BM25-ranked keyword queries
// with highlighted snippets.
type LexicalIndex interface {
	InsertDocument(ctx context.Context, title, content, metadata string) (int64, error)
	// Search ranks matching documents most relevant first. The query is
	// sanitized before matching so reserved full-text syntax cannot be
	// injected.
	Search(ctx context.Context, query string, limit int) ([]LexicalHit, error)
	// GetDocument returns the document or a not_found coded error.
	GetDocument(ctx context.Context, id int64) (*Document, error)
	DeleteDocument(ctx context.Context, id int64) error
	// ReplaceDocument deletes id and reinserts the new fields. The
	// lexical substrate is append-only, so the returned ID differs from
	// the one deleted; callers that track identity must repair dependent
	// rows.
	ReplaceDocument(ctx context.Context, id int64, title, content, metadata string) (int64, error)
}

// GraphStore stores labeled nodes and weighted, typed, directed edges.
type GraphStore interface {
	InsertNode(ctx context.Context, label, typ, properties string) (int64, error)
	// InsertEdge fails with a missing_endpoint code when either endpoint
	// does not exist.
	InsertEdge(ctx context.Context, source, target int64, relation string, weight float64, properties string) (int64, error)
	// GetNode returns the node or a not_found coded error.
	GetNode(ctx context.Context, id int64) (*Node, error)
	// DeleteNode removes the node and cascades deletion of every edge
	// referencing it.
	DeleteNode(ctx context.Context, id int64) error
	// SearchNodes matches labels: substring when fuzzy, exact otherwise.
	SearchNodes(ctx context.Context, pattern string, fuzzy bool, limit int) ([]Node, error)
	// Neighbors returns edge-endpoint pairs reached from nodeID. An empty
	// relation matches every relation. DirectionBoth follows edges either
	// way and reports the far endpoint per edge, without dedup.
	Neighbors(ctx context.Context, nodeID int64, relation string, dir Direction, limit int) ([]Neighbor, error)
}

// AssociationLinker is the many-to-many join surface between vectors and
// the entities they represent.
type AssociationLinker interface {
	// Link inserts or replaces the association row for its primary-key
	// triple; re-linking overwrites Relevance.
	Link(ctx context.Context, a Association) error
	AssociationsOf(ctx context.Context, vectorID int64) ([]Association, error)
}

// MultiModal coordinates the three indices and the linker. Compound writes
// execute inside one transaction: a failure in any step rolls back every
// step. There is no cross-call concurrency control; two concurrent upserts
// of near-identical vectors can each conclude no duplicate exists.
type MultiModal interface {
	Vectors() VectorIndex
	Lexical() LexicalIndex
	Graph() GraphStore
	Associations() AssociationLinker

	// InsertDocumentWithVector atomically inserts a document, its vector,
	// and the association between them.
	InsertDocumentWithVector(ctx context.Context, title, content, metadata string, vector []float32) (UpsertResult, error)
	// InsertNodeWithVector atomically inserts a graph node, its vector,
	// and the association between them.
	InsertNodeWithVector(ctx context.Context, label, typ, properties string, vector []float32) (nodeID, vectorID int64, err error)
	// UpsertDocumentWithVector deduplicates on write: when a stored
	// vector lies within cosine distance 1-threshold of vector, that
	// canonical vector is reused and its document's content replaced
	// instead of inserting a second copy.
	UpsertDocumentWithVector(ctx context.Context, title, content, metadata string, vector []float32, threshold float64) (UpsertResult, error)

	// SemanticSearch runs KNN and materializes each hit's owning entity
	// with a cosine-similarity score. Hits whose owner cannot be resolved
	// are discarded.
	SemanticSearch(ctx context.Context, query []float32, limit int) ([]SearchResult, error)
	// HybridSearch fuses vector, lexical, and graph-label rankings into
	// one list by a weighted positional score. This is a heuristic linear
	// rank fusion, reproducible but not a calibrated relevance model.
	HybridSearch(ctx context.Context, queryText string, queryVector []float32, vectorWeight float64, limit int) ([]SearchResult, error)

	Close() error
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package store

// EntityKind identifies which index owns an entity linked to a vector.
// It is a closed set: only KindDocument and KindNode are valid.
type EntityKind string

const (
	KindDocument EntityKind = "document"
	KindNode     EntityKind = "node"
)

// Valid reports whether k is a member of the closed kind set.
func (k EntityKind) Valid() bool {
	return k == KindDocument || k == KindNode
}

// Direction selects which edges Neighbors follows relative to the start node.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
	DirectionBoth     Direction = "both"
)

// Valid reports whether d is a recognized traversal direction.
func (d Direction) Valid() bool {
	return d == DirectionOutgoing || d == DirectionIncoming || d == DirectionBoth
}

// Document is an entry in the lexical index. Documents are immutable once
// written; replacing content is delete-then-insert and assigns a new ID.
type Document struct {
	ID       int64
	Title    string
	Content  string
	Metadata string // opaque JSON, stored verbatim
}

// Node is a labeled vertex in the property graph.
type Node struct {
	ID         int64
	Label      string
	Type       string
	Properties string // opaque JSON, stored verbatim
}

// Edge is a weighted, typed, directed relation between two nodes.
type Edge struct {
	ID         int64
	Source     int64
	Target     int64
	Relation   string
	Weight     float64
	Properties string
}

// Association links a vector to the entity it semantically represents.
// The triple (VectorID, Kind, EntityID) is unique; re-linking the same
// triple overwrites Relevance.
type Association struct {
	VectorID  int64
	Kind      EntityKind
	EntityID  int64
	Relevance float64
}

// VectorHit is a single k-nearest-neighbor result. Distance is cosine
// distance in [0, 2]; 0 means identical direction.
type VectorHit struct {
	ID       int64
	Distance float64
}

// LexicalHit is a single full-text search result, most relevant first.
type LexicalHit struct {
	ID       int64
	Title    string
	Snippet  string // query terms wrapped in highlight markers
	Metadata string
}

// Neighbor is one edge-endpoint pair reached from a start node. A node
// reachable through two distinct edges appears twice, once per edge.
type Neighbor struct {
	NodeID         int64
	Label          string
	Relation       string
	EdgeProperties string
}

// SearchResult is one fused entry from a semantic or hybrid query.
// Title holds the document title or node label; Snippet is set only for
// lexical matches.
type SearchResult struct {
	Kind     EntityKind
	EntityID int64
	Title    string
	Snippet  string
	Score    float64
}

// UpsertResult reports the document and vector that survived an upsert.
// On a near-duplicate write VectorID is the canonical (reused) vector.
type UpsertResult struct {
	DocumentID int64
	VectorID   int64
}

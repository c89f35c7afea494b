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
var _ store.GraphStore = (*GraphStore)(nil)

// GraphStore implements store.GraphStore on plain nodes and edges tables.
// Edge endpoints are checked before insert and enforced again by foreign
// keys with ON DELETE CASCADE.
type GraphStore struct {
	db *sql.DB
}

func (g *GraphStore) InsertNode(ctx context.Context, label, typ, properties string) (int64, error) {
	return g.insertNode(ctx, g.db, label, typ, properties)
}

func (g *GraphStore) insertNode(ctx context.Context, q dbtx, label, typ, properties string) (int64, error) {
	if properties == "" {
		properties = "{}"
	}

	res, err := q.ExecContext(ctx,
		`INSERT INTO nodes(label, type, properties) VALUES (?, ?, ?)`,
		label, typ, properties,
	)
	if err != nil {
		return 0, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "inserting node")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "resolving node id")
	}
	return id, nil
}

func (g *GraphStore) InsertEdge(ctx context.Context, source, target int64, relation string, weight float64, properties string) (int64, error) {
	return g.insertEdge(ctx, g.db, source, target, relation, weight, properties)
}

func (g *GraphStore) insertEdge(ctx context.Context, q dbtx, source, target int64, relation string, weight float64, properties string) (int64, error) {
	for _, id := range []int64{source, target} {
		ok, err := g.nodeExists(ctx, q, id)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, errs.New(errs.CodeEdgeMissingEndpoint, "edge endpoint does not exist", errs.FieldNodeID(id))
		}
	}

	if properties == "" {
		properties = "{}"
	}

	res, err := q.ExecContext(ctx,
		`INSERT INTO edges(source, target, relation, weight, properties) VALUES (?, ?, ?, ?, ?)`,
		source, target, relation, weight, properties,
	)
	if err != nil {
		return 0, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "inserting edge")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "resolving edge id")
	}
	return id, nil
}

func (g *GraphStore) nodeExists(ctx context.Context, q dbtx, id int64) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM nodes WHERE id = ?`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "checking node existence", errs.FieldNodeID(id))
	}
	return true, nil
}

func (g *GraphStore) GetNode(ctx context.Context, id int64) (*store.Node, error) {
	return g.getNode(ctx, g.db, id)
}

func (g *GraphStore) getNode(ctx context.Context, q dbtx, id int64) (*store.Node, error) {
	const nodeQ = `SELECT id, label, type, properties FROM nodes WHERE id = ?`

	node := &store.Node{}
	err := q.QueryRowContext(ctx, nodeQ, id).Scan(&node.ID, &node.Label, &node.Type, &node.Properties)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.New(errs.CodeNodeNotFound, "node not found", errs.FieldNodeID(id))
		}
		return nil, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "getting node", errs.FieldNodeID(id))
	}
	return node, nil
}

// DeleteNode removes the node and every edge referencing it. The edge
// delete is explicit rather than left to the cascade so the invariant
// holds even on connections opened without the foreign_keys pragma.
func (g *GraphStore) DeleteNode(ctx context.Context, id int64) error {
	return g.deleteNode(ctx, g.db, id)
}

func (g *GraphStore) deleteNode(ctx context.Context, q dbtx, id int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM edges WHERE source = ? OR target = ?`, id, id); err != nil {
		return errs.Wrap(err, errs.CodeStoreDatabaseFailure, "deleting node edges", errs.FieldNodeID(id))
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id); err != nil {
		return errs.Wrap(err, errs.CodeStoreDatabaseFailure, "deleting node", errs.FieldNodeID(id))
	}
	return nil
}

// SearchNodes matches labels: substring match when fuzzy, exact equality
// otherwise.
func (g *GraphStore) SearchNodes(ctx context.Context, pattern string, fuzzy bool, limit int) ([]store.Node, error) {
	if limit <= 0 {
		limit = 10
	}

	var (
		q    string
		args []any
	)
	if fuzzy {
		q = `SELECT id, label, type, properties FROM nodes
WHERE label LIKE '%' || ? || '%' ESCAPE '\'
ORDER BY id LIMIT ?`
		args = []any{escapeLike(pattern), limit}
	} else {
		q = `SELECT id, label, type, properties FROM nodes
WHERE label = ?
ORDER BY id LIMIT ?`
		args = []any{pattern, limit}
	}

	rows, err := g.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "searching nodes")
	}
	defer func() { _ = rows.Close() }()

	var nodes []store.Node
	for rows.Next() {
		var n store.Node
		if err := rows.Scan(&n.ID, &n.Label, &n.Type, &n.Properties); err != nil {
			return nil, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "scanning node")
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "iterating nodes")
	}

	return nodes, nil
}

// Neighbors returns edge-endpoint pairs reached from nodeID. With
// DirectionBoth a node reachable through two distinct edges appears twice,
// once per edge.
func (g *GraphStore) Neighbors(ctx context.Context, nodeID int64, relation string, dir store.Direction, limit int) ([]store.Neighbor, error) {
	if !dir.Valid() {
		return nil, errs.Errorf(errs.CodeGraphDirectionInvalid, "invalid traversal direction %q", dir)
	}
	if limit <= 0 {
		limit = 10
	}

	relFilter := ""
	if relation != "" {
		relFilter = ` AND e.relation = ?`
	}

	outgoing := `SELECT e.target, n.label, e.relation, e.properties
FROM edges e JOIN nodes n ON n.id = e.target
WHERE e.source = ?` + relFilter

	incoming := `SELECT e.source, n.label, e.relation, e.properties
FROM edges e JOIN nodes n ON n.id = e.source
WHERE e.target = ?` + relFilter

	var (
		qb   strings.Builder
		args []any
	)
	appendDirection := func(q string) {
		qb.WriteString(q)
		args = append(args, nodeID)
		if relation != "" {
			args = append(args, relation)
		}
	}

	switch dir {
	case store.DirectionOutgoing:
		appendDirection(outgoing)
	case store.DirectionIncoming:
		appendDirection(incoming)
	case store.DirectionBoth:
		appendDirection(outgoing)
		qb.WriteString(`
UNION ALL
`)
		appendDirection(incoming)
	}

	qb.WriteString(`
LIMIT ?`)
	args = append(args, limit)

	rows, err := g.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "querying neighbors", errs.FieldNodeID(nodeID))
	}
	defer func() { _ = rows.Close() }()

	var neighbors []store.Neighbor
	for rows.Next() {
		var nb store.Neighbor
		if err := rows.Scan(&nb.NodeID, &nb.Label, &nb.Relation, &nb.EdgeProperties); err != nil {
			return nil, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "scanning neighbor")
		}
		neighbors = append(neighbors, nb)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, errs.CodeStoreDatabaseFailure, "iterating neighbors")
	}

	return neighbors, nil
}

// escapeLike escapes LIKE wildcards in a user pattern so it matches
// literally as a substring.
func escapeLike(pattern string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(pattern)
}

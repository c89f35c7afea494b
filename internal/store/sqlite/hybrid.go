// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package sqlite

import (
	"context"
	"sort"

	"github.com/trovekit/trove/internal/store"
	errs "github.com/trovekit/trove/pkg/errors"
)

// entityKey merges fused results across modalities.
type entityKey struct {
	kind store.EntityKind
	id   int64
}

// SemanticSearch runs KNN and materializes each hit's owning entities with
// a cosine-similarity score. Hits whose owner cannot be resolved are
// discarded. When two vectors resolve to the same entity the higher
// similarity wins.
func (s *Store) SemanticSearch(ctx context.Context, query []float32, limit int) ([]store.SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	hits, err := s.vectors.KNN(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	var results []store.SearchResult
	seen := make(map[entityKey]int)

	for _, h := range hits {
		assocs, err := s.assoc.AssociationsOf(ctx, h.ID)
		if err != nil {
			return nil, err
		}

		similarity := 1 - h.Distance
		for _, a := range assocs {
			title, err := s.entityTitle(ctx, a)
			if errs.IsNotFound(err) {
				continue
			}
			if err != nil {
				return nil, err
			}

			key := entityKey{kind: a.Kind, id: a.EntityID}
			if idx, ok := seen[key]; ok {
				if similarity > results[idx].Score {
					results[idx].Score = similarity
				}
				continue
			}

			seen[key] = len(results)
			results = append(results, store.SearchResult{
				Kind:     a.Kind,
				EntityID: a.EntityID,
				Title:    title,
				Score:    similarity,
			})
		}
	}

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *Store) entityTitle(ctx context.Context, a store.Association) (string, error) {
	switch a.Kind {
	case store.KindDocument:
		doc, err := s.lexical.GetDocument(ctx, a.EntityID)
		if err != nil {
			return "", err
		}
		return doc.Title, nil
	case store.KindNode:
		node, err := s.graph.GetNode(ctx, a.EntityID)
		if err != nil {
			return "", err
		}
		return node.Label, nil
	default:
		return "", errs.Errorf(errs.CodeAssociationKindInvalid, "invalid entity kind %q", a.Kind)
	}
}

// HybridSearch fuses three independently ranked lists — vector neighbors,
// BM25 document matches, and graph-label substring matches — into one
// ordering. Vector results carry similarity * vectorWeight; each textual
// result at position i of N carries (1 - i/N) * (1 - vectorWeight). Keys
// appearing in both sets have their scores summed. This is a weighted
// Borda-style heuristic: reproducible, not a calibrated relevance model.
func (s *Store) HybridSearch(ctx context.Context, queryText string, queryVector []float32, vectorWeight float64, limit int) ([]store.SearchResult, error) {
	if vectorWeight < 0 || vectorWeight > 1 {
		return nil, errs.Errorf(errs.CodeHybridWeightInvalid,
			"vector weight must be in [0, 1], got %v", vectorWeight)
	}
	if limit <= 0 {
		limit = 10
	}

	vecResults, err := s.SemanticSearch(ctx, queryVector, limit*2)
	if err != nil {
		return nil, err
	}

	docHits, err := s.lexical.Search(ctx, queryText, limit*2)
	if err != nil {
		return nil, err
	}

	nodeHits, err := s.graph.SearchNodes(ctx, queryText, true, limit*2)
	if err != nil {
		return nil, err
	}

	// Insertion order matters: fused entries are built vector-first so a
	// stable sort breaks score ties exactly as SemanticSearch would.
	var fused []store.SearchResult
	index := make(map[entityKey]int)

	add := func(r store.SearchResult, contribution float64) {
		if contribution <= 0 {
			return
		}
		key := entityKey{kind: r.Kind, id: r.EntityID}
		if idx, ok := index[key]; ok {
			fused[idx].Score += contribution
			if fused[idx].Snippet == "" {
				fused[idx].Snippet = r.Snippet
			}
			return
		}
		r.Score = contribution
		index[key] = len(fused)
		fused = append(fused, r)
	}

	for _, r := range vecResults {
		add(r, r.Score*vectorWeight)
	}

	// Lexical hits then graph-label hits form one positional ranking.
	textual := make([]store.SearchResult, 0, len(docHits)+len(nodeHits))
	for _, h := range docHits {
		textual = append(textual, store.SearchResult{
			Kind:     store.KindDocument,
			EntityID: h.ID,
			Title:    h.Title,
			Snippet:  h.Snippet,
		})
	}
	for _, n := range nodeHits {
		textual = append(textual, store.SearchResult{
			Kind:     store.KindNode,
			EntityID: n.ID,
			Title:    n.Label,
		})
	}

	total := len(textual)
	for i, r := range textual {
		decay := 1 - float64(i)/float64(total)
		add(r, decay*(1-vectorWeight))
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})

	if len(fused) > limit {
		fused = fused[:limit]
	}
	return fused, nil
}

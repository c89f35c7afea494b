// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/trovekit/trove/internal/embed"
	"github.com/trovekit/trove/internal/store"
	troveerr "github.com/trovekit/trove/pkg/errors"
)

// RegisterStore sets the store and embedder dependencies and registers the
// REST routes. The embedder may be nil, in which case endpoints that need
// an embedding return 503.
func (s *Server) RegisterStore(st store.MultiModal, embedder embed.Embedder, defaults SearchDefaults) {
	s.store = st
	s.embedder = embedder
	s.search = defaults
	if s.search.Limit <= 0 {
		s.search.Limit = 10
	}
	if s.search.SimilarityThreshold == 0 {
		s.search.SimilarityThreshold = store.DefaultSimilarityThreshold
	}
	s.registerRoutes()
}

func (s *Server) registerRoutes() {
	// Document endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "upsert-document",
		Method:      http.MethodPost,
		Path:        "/api/v1/documents",
		Summary:     "Upsert a document with deduplication",
		Tags:        []string{"documents"},
	}, s.handleUpsertDocument)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-document",
		Method:      http.MethodGet,
		Path:        "/api/v1/documents/{id}",
		Summary:     "Get a document",
		Tags:        []string{"documents"},
	}, s.handleGetDocument)

	// Graph endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "create-node",
		Method:      http.MethodPost,
		Path:        "/api/v1/nodes",
		Summary:     "Create a graph node",
		Tags:        []string{"graph"},
	}, s.handleCreateNode)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-node",
		Method:      http.MethodGet,
		Path:        "/api/v1/nodes/{id}",
		Summary:     "Get a graph node",
		Tags:        []string{"graph"},
	}, s.handleGetNode)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-node",
		Method:      http.MethodDelete,
		Path:        "/api/v1/nodes/{id}",
		Summary:     "Delete a node and its edges",
		Tags:        []string{"graph"},
	}, s.handleDeleteNode)

	huma.Register(s.api, huma.Operation{
		OperationID: "create-edge",
		Method:      http.MethodPost,
		Path:        "/api/v1/edges",
		Summary:     "Create a directed edge between nodes",
		Tags:        []string{"graph"},
	}, s.handleCreateEdge)

	huma.Register(s.api, huma.Operation{
		OperationID: "node-neighbors",
		Method:      http.MethodGet,
		Path:        "/api/v1/nodes/{id}/neighbors",
		Summary:     "List a node's neighbors",
		Tags:        []string{"graph"},
	}, s.handleNeighbors)

	// Search endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "search-lexical",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/lexical",
		Summary:     "Keyword search over documents",
		Tags:        []string{"search"},
	}, s.handleSearchLexical)

	huma.Register(s.api, huma.Operation{
		OperationID: "search-nodes",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/nodes",
		Summary:     "Search graph nodes by label",
		Tags:        []string{"search"},
	}, s.handleSearchNodes)

	huma.Register(s.api, huma.Operation{
		OperationID: "search-semantic",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/semantic",
		Summary:     "Vector similarity search",
		Tags:        []string{"search"},
	}, s.handleSearchSemantic)

	huma.Register(s.api, huma.Operation{
		OperationID: "search-hybrid",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/hybrid",
		Summary:     "Fused vector, keyword, and graph search",
		Tags:        []string{"search"},
	}, s.handleSearchHybrid)
}

// --- Request/Response types for huma ---

type upsertDocumentInput struct {
	Body struct {
		Title     string    `json:"title" minLength:"1" doc:"Document title"`
		Content   string    `json:"content" minLength:"1" doc:"Document body text"`
		Metadata  string    `json:"metadata,omitempty" doc:"Opaque JSON metadata"`
		Vector    []float32 `json:"vector,omitempty" doc:"Precomputed embedding; omitted means the server embeds the content"`
		Threshold float64   `json:"threshold,omitempty" minimum:"0" maximum:"1" doc:"Similarity threshold for dedup; 0 uses the server default"`
	}
}
type upsertDocumentOutput struct {
	Body struct {
		DocumentID int64 `json:"document_id"`
		VectorID   int64 `json:"vector_id" doc:"Canonical vector; reused when the content was a near-duplicate"`
	}
}

type documentIDInput struct {
	ID int64 `path:"id"`
}
type getDocumentOutput struct {
	Body struct {
		ID       int64  `json:"id"`
		Title    string `json:"title"`
		Content  string `json:"content"`
		Metadata string `json:"metadata,omitempty"`
	}
}

type createNodeInput struct {
	Body struct {
		Label      string `json:"label" minLength:"1" doc:"Node label"`
		Type       string `json:"type,omitempty" doc:"Node type tag"`
		Properties string `json:"properties,omitempty" doc:"Opaque JSON properties"`
		Embed      bool   `json:"embed,omitempty" doc:"Embed the label so the node is reachable by semantic search"`
	}
}
type createNodeOutput struct {
	Body struct {
		NodeID   int64 `json:"node_id"`
		VectorID int64 `json:"vector_id,omitempty"`
	}
}

type nodeIDInput struct {
	ID int64 `path:"id"`
}
type getNodeOutput struct {
	Body struct {
		ID         int64  `json:"id"`
		Label      string `json:"label"`
		Type       string `json:"type,omitempty"`
		Properties string `json:"properties,omitempty"`
	}
}

type deleteNodeOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

type createEdgeInput struct {
	Body struct {
		Source     int64   `json:"source"`
		Target     int64   `json:"target"`
		Relation   string  `json:"relation" minLength:"1" doc:"Edge relation type"`
		Weight     float64 `json:"weight,omitempty" doc:"Edge weight; defaults to 1.0"`
		Properties string  `json:"properties,omitempty"`
	}
}
type createEdgeOutput struct {
	Body struct {
		EdgeID int64 `json:"edge_id"`
	}
}

type neighborsInput struct {
	ID        int64  `path:"id"`
	Relation  string `query:"relation" doc:"Filter by relation; empty matches all"`
	Direction string `query:"direction" default:"both" enum:"outgoing,incoming,both"`
	Limit     int    `query:"limit" default:"0" doc:"0 uses the server default"`
}
type neighborsOutput struct {
	Body struct {
		Neighbors []neighborView `json:"neighbors"`
	}
}
type neighborView struct {
	NodeID     int64  `json:"node_id"`
	Label      string `json:"label"`
	Relation   string `json:"relation"`
	Properties string `json:"properties,omitempty"`
}

type lexicalSearchInput struct {
	Query string `query:"q" required:"true" doc:"Keyword query"`
	Limit int    `query:"limit" default:"0"`
}
type lexicalSearchOutput struct {
	Body struct {
		Hits []lexicalHitView `json:"hits"`
	}
}
type lexicalHitView struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
	Metadata string `json:"metadata,omitempty"`
}

type nodeSearchInput struct {
	Query string `query:"q" required:"true" doc:"Label pattern"`
	Fuzzy bool   `query:"fuzzy" default:"true" doc:"Substring match when true, exact otherwise"`
	Limit int    `query:"limit" default:"0"`
}
type nodeSearchOutput struct {
	Body struct {
		Hits []nodeView `json:"nodes"`
	}
}
type nodeView struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type,omitempty"`
}

type semanticSearchInput struct {
	Query string `query:"q" required:"true" doc:"Text to embed and match"`
	Limit int    `query:"limit" default:"0"`
}

type hybridSearchInput struct {
	Query  string  `query:"q" required:"true" doc:"Text to embed and match"`
	Weight float64 `query:"weight" default:"-1" doc:"Vector weight in [0,1]; -1 uses the server default"`
	Limit  int     `query:"limit" default:"0"`
}

type searchOutput struct {
	Body struct {
		Results []searchResultView `json:"results"`
	}
}
type searchResultView struct {
	Kind     string  `json:"kind" enum:"document,node"`
	EntityID int64   `json:"entity_id"`
	Title    string  `json:"title"`
	Snippet  string  `json:"snippet,omitempty"`
	Score    float64 `json:"score"`
}

// --- Handlers ---

// apiError maps a coded store error onto the matching HTTP status.
func apiError(err error, msg string) error {
	return huma.NewError(troveerr.HTTPStatus(err), msg, err)
}

func (s *Server) embedText(ctx context.Context, text string) ([]float32, error) {
	if s.embedder == nil {
		return nil, huma.Error503ServiceUnavailable("embedder not configured")
	}
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, apiError(err, "embedding text")
	}
	return vec, nil
}

func (s *Server) handleUpsertDocument(ctx context.Context, input *upsertDocumentInput) (*upsertDocumentOutput, error) {
	vec := input.Body.Vector
	if len(vec) == 0 {
		var err error
		vec, err = s.embedText(ctx, input.Body.Content)
		if err != nil {
			return nil, err
		}
	}

	threshold := input.Body.Threshold
	if threshold == 0 {
		threshold = s.search.SimilarityThreshold
	}

	res, err := s.store.UpsertDocumentWithVector(ctx, input.Body.Title, input.Body.Content, input.Body.Metadata, vec, threshold)
	if err != nil {
		return nil, apiError(err, "upserting document")
	}

	out := &upsertDocumentOutput{}
	out.Body.DocumentID = res.DocumentID
	out.Body.VectorID = res.VectorID
	return out, nil
}

func (s *Server) handleGetDocument(ctx context.Context, input *documentIDInput) (*getDocumentOutput, error) {
	doc, err := s.store.Lexical().GetDocument(ctx, input.ID)
	if err != nil {
		return nil, apiError(err, fmt.Sprintf("document %d", input.ID))
	}

	out := &getDocumentOutput{}
	out.Body.ID = doc.ID
	out.Body.Title = doc.Title
	out.Body.Content = doc.Content
	out.Body.Metadata = doc.Metadata
	return out, nil
}

func (s *Server) handleCreateNode(ctx context.Context, input *createNodeInput) (*createNodeOutput, error) {
	out := &createNodeOutput{}

	if input.Body.Embed {
		vec, err := s.embedText(ctx, input.Body.Label)
		if err != nil {
			return nil, err
		}
		nodeID, vectorID, err := s.store.InsertNodeWithVector(ctx, input.Body.Label, input.Body.Type, input.Body.Properties, vec)
		if err != nil {
			return nil, apiError(err, "creating node")
		}
		out.Body.NodeID = nodeID
		out.Body.VectorID = vectorID
		return out, nil
	}

	nodeID, err := s.store.Graph().InsertNode(ctx, input.Body.Label, input.Body.Type, input.Body.Properties)
	if err != nil {
		return nil, apiError(err, "creating node")
	}
	out.Body.NodeID = nodeID
	return out, nil
}

func (s *Server) handleGetNode(ctx context.Context, input *nodeIDInput) (*getNodeOutput, error) {
	node, err := s.store.Graph().GetNode(ctx, input.ID)
	if err != nil {
		return nil, apiError(err, fmt.Sprintf("node %d", input.ID))
	}

	out := &getNodeOutput{}
	out.Body.ID = node.ID
	out.Body.Label = node.Label
	out.Body.Type = node.Type
	out.Body.Properties = node.Properties
	return out, nil
}

func (s *Server) handleDeleteNode(ctx context.Context, input *nodeIDInput) (*deleteNodeOutput, error) {
	if err := s.store.Graph().DeleteNode(ctx, input.ID); err != nil {
		return nil, apiError(err, fmt.Sprintf("deleting node %d", input.ID))
	}
	out := &deleteNodeOutput{}
	out.Body.Status = "deleted"
	return out, nil
}

func (s *Server) handleCreateEdge(ctx context.Context, input *createEdgeInput) (*createEdgeOutput, error) {
	weight := input.Body.Weight
	if weight == 0 {
		weight = 1.0
	}

	edgeID, err := s.store.Graph().InsertEdge(ctx, input.Body.Source, input.Body.Target, input.Body.Relation, weight, input.Body.Properties)
	if err != nil {
		return nil, apiError(err, "creating edge")
	}

	out := &createEdgeOutput{}
	out.Body.EdgeID = edgeID
	return out, nil
}

func (s *Server) handleNeighbors(ctx context.Context, input *neighborsInput) (*neighborsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = s.search.Limit
	}

	neighbors, err := s.store.Graph().Neighbors(ctx, input.ID, input.Relation, store.Direction(input.Direction), limit)
	if err != nil {
		return nil, apiError(err, fmt.Sprintf("neighbors of node %d", input.ID))
	}

	out := &neighborsOutput{}
	out.Body.Neighbors = make([]neighborView, 0, len(neighbors))
	for _, n := range neighbors {
		out.Body.Neighbors = append(out.Body.Neighbors, neighborView{
			NodeID:     n.NodeID,
			Label:      n.Label,
			Relation:   n.Relation,
			Properties: n.EdgeProperties,
		})
	}
	return out, nil
}

func (s *Server) handleSearchLexical(ctx context.Context, input *lexicalSearchInput) (*lexicalSearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = s.search.Limit
	}

	hits, err := s.store.Lexical().Search(ctx, input.Query, limit)
	if err != nil {
		return nil, apiError(err, "keyword search")
	}

	out := &lexicalSearchOutput{}
	out.Body.Hits = make([]lexicalHitView, 0, len(hits))
	for _, h := range hits {
		out.Body.Hits = append(out.Body.Hits, lexicalHitView{
			ID:       h.ID,
			Title:    h.Title,
			Snippet:  h.Snippet,
			Metadata: h.Metadata,
		})
	}
	return out, nil
}

func (s *Server) handleSearchNodes(ctx context.Context, input *nodeSearchInput) (*nodeSearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = s.search.Limit
	}

	nodes, err := s.store.Graph().SearchNodes(ctx, input.Query, input.Fuzzy, limit)
	if err != nil {
		return nil, apiError(err, "node search")
	}

	out := &nodeSearchOutput{}
	out.Body.Hits = make([]nodeView, 0, len(nodes))
	for _, n := range nodes {
		out.Body.Hits = append(out.Body.Hits, nodeView{ID: n.ID, Label: n.Label, Type: n.Type})
	}
	return out, nil
}

func (s *Server) handleSearchSemantic(ctx context.Context, input *semanticSearchInput) (*searchOutput, error) {
	vec, err := s.embedText(ctx, input.Query)
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = s.search.Limit
	}

	results, err := s.store.SemanticSearch(ctx, vec, limit)
	if err != nil {
		return nil, apiError(err, "semantic search")
	}
	return newSearchOutput(results), nil
}

func (s *Server) handleSearchHybrid(ctx context.Context, input *hybridSearchInput) (*searchOutput, error) {
	vec, err := s.embedText(ctx, input.Query)
	if err != nil {
		return nil, err
	}

	weight := input.Weight
	if weight < 0 {
		weight = s.search.Weight
	}
	limit := input.Limit
	if limit <= 0 {
		limit = s.search.Limit
	}

	results, err := s.store.HybridSearch(ctx, input.Query, vec, weight, limit)
	if err != nil {
		return nil, apiError(err, "hybrid search")
	}
	return newSearchOutput(results), nil
}

func newSearchOutput(results []store.SearchResult) *searchOutput {
	out := &searchOutput{}
	out.Body.Results = make([]searchResultView, 0, len(results))
	for _, r := range results {
		out.Body.Results = append(out.Body.Results, searchResultView{
			Kind:     string(r.Kind),
			EntityID: r.EntityID,
			Title:    r.Title,
			Snippet:  r.Snippet,
			Score:    r.Score,
		})
	}
	return out
}

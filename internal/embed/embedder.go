// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

// Package embed provides the embedding-generator boundary: an Embedder
// interface, an OpenAI-backed implementation, and a chunking pipeline for
// text too long for a single embedding call. The store consumes only the
// final fixed-length vector and is agnostic to this pipeline.
package embed

import (
	"context"

	errs "github.com/trovekit/trove/pkg/errors"
)

// Embedder maps text to a fixed-length vector. Implementations must
// produce vectors whose length equals Dimensions() on every call.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// ChunkingEmbedder wraps an Embedder for long inputs: the text is split by
// the configured strategy, each chunk embedded separately, the chunk
// vectors combined by the pooling rule, and the result L2-normalized.
type ChunkingEmbedder struct {
	inner   Embedder
	chunker Chunker
	pooling Pooling
}

// NewChunkingEmbedder validates the chunker and pooling configuration up
// front so a misconfigured pipeline fails at construction, not mid-ingest.
func NewChunkingEmbedder(inner Embedder, chunker Chunker, pooling Pooling) (*ChunkingEmbedder, error) {
	if err := chunker.validate(); err != nil {
		return nil, err
	}
	if !pooling.valid() {
		return nil, errs.Errorf(errs.CodeEmbedChunkerInvalid, "unknown pooling strategy %q", pooling)
	}
	return &ChunkingEmbedder{inner: inner, chunker: chunker, pooling: pooling}, nil
}

func (c *ChunkingEmbedder) Dimensions() int {
	return c.inner.Dimensions()
}

func (c *ChunkingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	chunks := c.chunker.Split(text)
	if len(chunks) == 0 {
		return nil, errs.New(errs.CodeEmbedInputEmpty, "no text to embed")
	}

	vectors := make([][]float32, 0, len(chunks))
	for _, chunk := range chunks {
		vec, err := c.inner.Embed(ctx, chunk)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vec)
	}

	combined, err := c.pooling.combine(vectors, chunks)
	if err != nil {
		return nil, err
	}
	return l2Normalize(combined), nil
}

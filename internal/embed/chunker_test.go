// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package embed_test

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trovekit/trove/internal/embed"
	errs "github.com/trovekit/trove/pkg/errors"
)

func TestChunker_ShortTextPassesThrough(t *testing.T) {
	c := embed.Chunker{Strategy: embed.StrategyCharacters, Size: 100, Overlap: 10}

	chunks := c.Split("short text")
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])

	assert.Empty(t, c.Split("   "))
}

func TestChunker_CharacterWindowsOverlap(t *testing.T) {
	c := embed.Chunker{Strategy: embed.StrategyCharacters, Size: 10, Overlap: 3}

	text := "abcdefghijklmnopqrstuvwxyz"
	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)

	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 10, "chunk %d", i)
	}
	// Consecutive chunks share exactly the overlap.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		assert.Equal(t, prev[len(prev)-3:], chunks[i][:3], "chunk %d overlap", i)
	}
	// Windows advance by size-overlap, so the full text is covered.
	assert.Equal(t, "abcdefghij", chunks[0])
	assert.Equal(t, "hijklmnopq", chunks[1])
}

func TestChunker_SentencesKeepBoundaries(t *testing.T) {
	c := embed.Chunker{Strategy: embed.StrategySentences, Size: 30, Overlap: 0}

	text := "One sentence here. Another one follows! A third? Short."
	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 30)
	}
	assert.Equal(t, "One sentence here.", chunks[0])
}

func TestChunker_Paragraphs(t *testing.T) {
	c := embed.Chunker{Strategy: embed.StrategyParagraphs, Size: 20, Overlap: 0}

	text := "first paragraph\n\nsecond paragraph\n\nthird"
	chunks := c.Split(text)
	require.Len(t, chunks, 3)
	assert.Equal(t, "first paragraph", chunks[0])
}

// stubEmbedder returns a fixed vector per known chunk.
type stubEmbedder struct {
	dims    int
	vectors map[string][]float32
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v, ok := s.vectors[text]
	if !ok {
		v = make([]float32, s.dims)
	}
	return v, nil
}

func (s *stubEmbedder) Dimensions() int { return s.dims }

func TestChunkingEmbedder_MeanPoolingNormalized(t *testing.T) {
	stub := &stubEmbedder{dims: 2, vectors: map[string][]float32{
		"aaaa": {1, 0},
		"bbbb": {0, 1},
	}}

	ce, err := embed.NewChunkingEmbedder(stub,
		embed.Chunker{Strategy: embed.StrategyParagraphs, Size: 5, Overlap: 0},
		embed.PoolingMean,
	)
	require.NoError(t, err)

	vec, err := ce.Embed(context.Background(), "aaaa\n\nbbbb")
	require.NoError(t, err)
	require.Len(t, vec, 2)

	// Mean of (1,0) and (0,1) is (0.5,0.5); normalized to (1/√2, 1/√2).
	inv := float32(1 / math.Sqrt2)
	assert.InDelta(t, inv, vec[0], 1e-6)
	assert.InDelta(t, inv, vec[1], 1e-6)

	// Unit length after pooling.
	var norm float64
	for _, x := range vec {
		norm += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, norm, 1e-6)
}

func TestChunkingEmbedder_MaxPooling(t *testing.T) {
	stub := &stubEmbedder{dims: 2, vectors: map[string][]float32{
		"aaaa": {0.6, 0.1},
		"bbbb": {0.2, 0.8},
	}}

	ce, err := embed.NewChunkingEmbedder(stub,
		embed.Chunker{Strategy: embed.StrategyParagraphs, Size: 5, Overlap: 0},
		embed.PoolingMax,
	)
	require.NoError(t, err)

	vec, err := ce.Embed(context.Background(), "aaaa\n\nbbbb")
	require.NoError(t, err)

	// Per-dimension max (0.6, 0.8), then normalized.
	assert.InDelta(t, 0.6, vec[0]/vec[1]*0.8, 1e-5)
	assert.Greater(t, vec[1], vec[0])
}

func TestChunkingEmbedder_WeightedPooling(t *testing.T) {
	stub := &stubEmbedder{dims: 1, vectors: map[string][]float32{
		"aaaaaa": {1},  // 6 runes
		"bb":     {-1}, // 2 runes
	}}

	ce, err := embed.NewChunkingEmbedder(stub,
		embed.Chunker{Strategy: embed.StrategyParagraphs, Size: 7, Overlap: 0},
		embed.PoolingWeighted,
	)
	require.NoError(t, err)

	vec, err := ce.Embed(context.Background(), "aaaaaa\n\nbb")
	require.NoError(t, err)
	require.Len(t, vec, 1)
	// 0.75*1 + 0.25*(-1) = 0.5 > 0, normalized to 1 in one dimension.
	assert.InDelta(t, 1.0, vec[0], 1e-6)
}

func TestChunkingEmbedder_RejectsBadConfig(t *testing.T) {
	stub := &stubEmbedder{dims: 2}

	_, err := embed.NewChunkingEmbedder(stub,
		embed.Chunker{Strategy: embed.Strategy("words"), Size: 10},
		embed.PoolingMean,
	)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))

	_, err = embed.NewChunkingEmbedder(stub,
		embed.Chunker{Strategy: embed.StrategyCharacters, Size: 10, Overlap: 10},
		embed.PoolingMean,
	)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))

	_, err = embed.NewChunkingEmbedder(stub,
		embed.Chunker{Strategy: embed.StrategyCharacters, Size: 10, Overlap: 2},
		embed.Pooling("median"),
	)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestChunkingEmbedder_EmptyInput(t *testing.T) {
	stub := &stubEmbedder{dims: 2}
	ce, err := embed.NewChunkingEmbedder(stub,
		embed.Chunker{Strategy: embed.StrategyCharacters, Size: 10, Overlap: 0},
		embed.PoolingMean,
	)
	require.NoError(t, err)

	_, err = ce.Embed(context.Background(), strings.Repeat(" ", 5))
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestNewOpenAIEmbedderValidation(t *testing.T) {
	_, err := embed.NewOpenAIEmbedder(embed.OpenAIConfig{Dimensions: 3})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))

	_, err = embed.NewOpenAIEmbedder(embed.OpenAIConfig{APIKey: "k", Dimensions: 0})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

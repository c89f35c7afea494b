// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package embed

import (
	"math"
	"strings"

	errs "github.com/trovekit/trove/pkg/errors"
)

// Strategy selects how long text is split before embedding.
type Strategy string

const (
	// StrategyCharacters cuts fixed-size rune windows.
	StrategyCharacters Strategy = "characters"
	// StrategySentences accumulates whole sentences up to the chunk size.
	StrategySentences Strategy = "sentences"
	// StrategyParagraphs accumulates whole paragraphs up to the chunk size.
	StrategyParagraphs Strategy = "paragraphs"
)

// Pooling selects how per-chunk vectors are combined into one.
type Pooling string

const (
	// PoolingMean averages chunk vectors per dimension.
	PoolingMean Pooling = "mean"
	// PoolingWeighted averages chunk vectors weighted by chunk length.
	PoolingWeighted Pooling = "weighted"
	// PoolingMax takes the per-dimension maximum across chunks.
	PoolingMax Pooling = "max"
)

func (p Pooling) valid() bool {
	return p == PoolingMean || p == PoolingWeighted || p == PoolingMax
}

// Chunker splits text into overlapping chunks of at most Size runes.
// Overlap is the number of trailing runes of one chunk repeated at the
// start of the next.
type Chunker struct {
	Strategy Strategy
	Size     int
	Overlap  int
}

func (c Chunker) validate() error {
	switch c.Strategy {
	case StrategyCharacters, StrategySentences, StrategyParagraphs:
	default:
		return errs.Errorf(errs.CodeEmbedChunkerInvalid, "unknown chunking strategy %q", c.Strategy)
	}
	if c.Size <= 0 {
		return errs.Errorf(errs.CodeEmbedChunkerInvalid, "chunk size must be positive, got %d", c.Size)
	}
	if c.Overlap < 0 || c.Overlap >= c.Size {
		return errs.Errorf(errs.CodeEmbedChunkerInvalid, "overlap must be in [0, size), got %d", c.Overlap)
	}
	return nil
}

// Split breaks text into chunks. Text that fits in one chunk passes
// through unchanged; blank text yields no chunks.
func (c Chunker) Split(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if len([]rune(trimmed)) <= c.Size {
		return []string{trimmed}
	}

	switch c.Strategy {
	case StrategySentences:
		return c.merge(splitSentences(trimmed))
	case StrategyParagraphs:
		return c.merge(splitParagraphs(trimmed))
	default:
		return c.windows(trimmed)
	}
}

// windows cuts fixed-size rune windows advancing by size-overlap.
func (c Chunker) windows(text string) []string {
	runes := []rune(text)
	step := c.Size - c.Overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + c.Size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// merge packs whole units (sentences or paragraphs) into chunks of at
// most Size runes, carrying the trailing Overlap runes of each chunk into
// the next. A single unit longer than Size falls back to rune windows.
func (c Chunker) merge(units []string) []string {
	var (
		chunks  []string
		current strings.Builder
	)

	flush := func() string {
		if current.Len() == 0 {
			return ""
		}
		chunk := strings.TrimSpace(current.String())
		current.Reset()
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		return chunk
	}

	for _, unit := range units {
		if len([]rune(unit)) > c.Size {
			flush()
			chunks = append(chunks, c.windows(unit)...)
			continue
		}

		if current.Len() > 0 && len([]rune(current.String()))+len([]rune(unit))+1 > c.Size {
			prev := flush()
			if c.Overlap > 0 && prev != "" {
				current.WriteString(tail(prev, c.Overlap))
				current.WriteString(" ")
			}
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(unit)
	}
	flush()

	return chunks
}

// tail returns the last n runes of s.
func tail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

func splitSentences(text string) []string {
	var (
		units   []string
		current strings.Builder
	)
	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') &&
			(i == len(runes)-1 || runes[i+1] == ' ' || runes[i+1] == '\n') {
			if s := strings.TrimSpace(current.String()); s != "" {
				units = append(units, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		units = append(units, s)
	}
	return units
}

func splitParagraphs(text string) []string {
	var units []string
	for _, p := range strings.Split(text, "\n\n") {
		if s := strings.TrimSpace(p); s != "" {
			units = append(units, s)
		}
	}
	return units
}

// combine pools chunk vectors into one vector of the same dimension.
func (p Pooling) combine(vectors [][]float32, chunks []string) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, errs.New(errs.CodeEmbedResponseInvalid, "no chunk vectors to combine")
	}

	dims := len(vectors[0])
	for _, v := range vectors {
		if len(v) != dims {
			return nil, errs.Errorf(errs.CodeEmbedDimensionMismatch,
				"chunk vectors disagree on dimension: %d vs %d", dims, len(v))
		}
	}

	out := make([]float32, dims)
	switch p {
	case PoolingMax:
		copy(out, vectors[0])
		for _, v := range vectors[1:] {
			for i, x := range v {
				if x > out[i] {
					out[i] = x
				}
			}
		}
	case PoolingWeighted:
		var total float64
		for _, chunk := range chunks {
			total += float64(len([]rune(chunk)))
		}
		if total == 0 {
			return nil, errs.New(errs.CodeEmbedInputEmpty, "no text to weight chunks by")
		}
		for ci, v := range vectors {
			w := float64(len([]rune(chunks[ci]))) / total
			for i, x := range v {
				out[i] += float32(float64(x) * w)
			}
		}
	default: // PoolingMean
		for _, v := range vectors {
			for i, x := range v {
				out[i] += x
			}
		}
		n := float32(len(vectors))
		for i := range out {
			out[i] /= n
		}
	}

	return out, nil
}

// l2Normalize scales v to unit length. The zero vector passes through
// unchanged.
func l2Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

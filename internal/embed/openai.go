// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package embed

import (
	"context"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	errs "github.com/trovekit/trove/pkg/errors"
)

// OpenAIConfig holds embedding API configuration.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string // optional, useful for testing against a mock server
	Model      string
	Dimensions int
}

// Compile-time interface check.
var _ Embedder = (*OpenAIEmbedder)(nil)

// OpenAIEmbedder implements Embedder using the OpenAI Embeddings API.
type OpenAIEmbedder struct {
	client     openaisdk.Client
	model      string
	dimensions int
}

// NewOpenAIEmbedder creates an OpenAI-backed embedder. The API key and a
// positive dimension are required; the output dimension must equal the
// store's configured dimension.
func NewOpenAIEmbedder(cfg OpenAIConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, errs.New(errs.CodeConfigValidateInvalidValue, "missing embedder api key")
	}
	if cfg.Dimensions <= 0 {
		return nil, errs.Errorf(errs.CodeConfigValidateInvalidValue,
			"embedder dimensions must be positive, got %d", cfg.Dimensions)
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIEmbedder{
		client:     openaisdk.NewClient(opts...),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

func (e *OpenAIEmbedder) Dimensions() int { return e.dimensions }

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errs.New(errs.CodeEmbedInputEmpty, "no text to embed")
	}

	resp, err := e.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfString: param.NewOpt(text),
		},
		Model:      openaisdk.EmbeddingModel(e.model),
		Dimensions: param.NewOpt(int64(e.dimensions)),
	})
	if err != nil {
		return nil, errs.Wrap(err, errs.CodeEmbedRequestFailure, "requesting embedding")
	}

	if len(resp.Data) != 1 {
		return nil, errs.Errorf(errs.CodeEmbedResponseInvalid,
			"expected 1 embedding, got %d", len(resp.Data))
	}

	raw := resp.Data[0].Embedding
	if len(raw) != e.dimensions {
		return nil, errs.Errorf(errs.CodeEmbedDimensionMismatch,
			"expected %d dimensions, got %d", e.dimensions, len(raw))
	}

	vec := make([]float32, len(raw))
	for i, x := range raw {
		vec[i] = float32(x)
	}
	return vec, nil
}

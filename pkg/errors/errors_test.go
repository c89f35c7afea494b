// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package errors_test

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/trovekit/trove/pkg/errors"
)

func TestCodeOf(t *testing.T) {
	err := errs.New(errs.CodeDocumentNotFound, "document 42 not found")
	assert.Equal(t, errs.CodeDocumentNotFound, errs.CodeOf(err))

	assert.Equal(t, errs.Code(""), errs.CodeOf(nil))
	assert.Equal(t, errs.Code(""), errs.CodeOf(stderrors.New("plain")))
}

func TestWrapPreservesChain(t *testing.T) {
	base := stderrors.New("disk full")
	err := errs.Wrap(base, errs.CodeStoreDatabaseFailure, "committing upsert")

	require.Error(t, err)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, errs.CodeStoreDatabaseFailure, errs.CodeOf(err))

	assert.NoError(t, errs.Wrap(nil, errs.CodeStoreDatabaseFailure, "ignored"))
}

func TestFieldsOf(t *testing.T) {
	err := errs.New(errs.CodeVectorDimensionMismatch, "expected 3 got 4",
		errs.FieldVectorID(7),
		errs.Field("got", 4),
	)

	fields := errs.FieldsOf(err)
	require.NotNil(t, fields)
	assert.Equal(t, int64(7), fields["vector_id"])
	assert.Equal(t, 4, fields["got"])
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		pred func(error) bool
		want bool
	}{
		{"not found", errs.New(errs.CodeDocumentNotFound, "x"), errs.IsNotFound, true},
		{"node not found", errs.New(errs.CodeNodeNotFound, "x"), errs.IsNotFound, true},
		{"dimension mismatch", errs.New(errs.CodeVectorDimensionMismatch, "x"), errs.IsDimensionMismatch, true},
		{"embed dimension mismatch", errs.New(errs.CodeEmbedDimensionMismatch, "x"), errs.IsDimensionMismatch, true},
		{"missing endpoint", errs.New(errs.CodeEdgeMissingEndpoint, "x"), errs.IsMissingEndpoint, true},
		{"invalid kind", errs.New(errs.CodeAssociationKindInvalid, "x"), errs.IsInvalidInput, true},
		{"invalid chunker", errs.New(errs.CodeEmbedChunkerInvalid, "x"), errs.IsInvalidInput, true},
		{"upstream", errs.New(errs.CodeEmbedRequestFailure, "x"), errs.IsUpstreamFailure, true},
		{"database failure is not not-found", errs.New(errs.CodeStoreDatabaseFailure, "x"), errs.IsNotFound, false},
		{"plain error", stderrors.New("x"), errs.IsNotFound, false},
		{"nil", nil, errs.IsNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pred(tt.err))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", errs.New(errs.CodeDocumentNotFound, "x"), http.StatusNotFound},
		{"dimension mismatch", errs.New(errs.CodeVectorDimensionMismatch, "x"), http.StatusBadRequest},
		{"missing endpoint", errs.New(errs.CodeEdgeMissingEndpoint, "x"), http.StatusBadRequest},
		{"invalid input", errs.New(errs.CodeServerRequestInvalid, "x"), http.StatusBadRequest},
		{"upstream", errs.New(errs.CodeEmbedRequestFailure, "x"), http.StatusBadGateway},
		{"internal", errs.New(errs.CodeStoreDatabaseFailure, "x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errs.HTTPStatus(tt.err))
		})
	}
}

func TestWithAddsFieldsAndKeepsCode(t *testing.T) {
	err := errs.New(errs.CodeEdgeMissingEndpoint, "no such node")
	err = errs.With(err, errs.FieldNodeID(99))

	assert.Equal(t, errs.CodeEdgeMissingEndpoint, errs.CodeOf(err))
	assert.Equal(t, int64(99), errs.FieldsOf(err)["node_id"])
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeStoreDatabaseFailure    Code = "store.database.failure"
	CodeStoreOpenFailure        Code = "store.open.failure"
	CodeStoreTransactionFailure Code = "store.transaction.failure"
	CodeStoreCloseFailure       Code = "store.close.failure"

	CodeVectorDimensionMismatch Code = "store.vector.insert.dimension_mismatch"
	CodeVectorNotFound          Code = "store.vector.get.not_found"

	CodeDocumentNotFound       Code = "store.document.get.not_found"
	CodeUpsertThresholdInvalid Code = "store.document.upsert.invalid_value"
	CodeLexicalQueryEmpty      Code = "store.lexical.query.invalid_input"
	CodeLexicalIndexFailed     Code = "store.lexical.index.failure"

	CodeNodeNotFound           Code = "store.graph.node.not_found"
	CodeEdgeMissingEndpoint    Code = "store.graph.edge.missing_endpoint"
	CodeGraphDirectionInvalid  Code = "store.graph.neighbors.invalid_input"
	CodeAssociationKindInvalid Code = "store.association.link.invalid_input"
	CodeHybridWeightInvalid    Code = "store.hybrid.search.invalid_value"

	CodeConfigLoadReadFailure      Code = "config.load.read.failure"
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"

	CodeEmbedRequestFailure    Code = "embed.request.upstream.failure"
	CodeEmbedResponseInvalid   Code = "embed.response.invalid"
	CodeEmbedDimensionMismatch Code = "embed.response.dimension_mismatch"
	CodeEmbedInputEmpty        Code = "embed.input.invalid_input"
	CodeEmbedChunkerInvalid    Code = "embed.chunker.invalid_value"

	CodeServerRequestInvalid  Code = "server.request.invalid"
	CodeServerInternalFailure Code = "server.internal.failure"
	CodeServerStartFailure    Code = "server.start.failure"

	CodeCLIInputInvalid  Code = "cli.input.invalid"
	CodeCLISetupFailure  Code = "cli.setup.failure"
	CodeCLIIngestFailure Code = "cli.ingest.failure"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func FieldVectorID(value int64) Attr {
	return Field("vector_id", value)
}

func FieldDocumentID(value int64) Attr {
	return Field("document_id", value)
}

func FieldNodeID(value int64) Attr {
	return Field("node_id", value)
}

func FieldEntityKind(value string) Attr {
	return Field("entity_kind", value)
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).Wrapf(err, format, args...)
}

// With adds structured fields to an existing error chain.
func With(err error, fields ...Attr) error {
	if err == nil {
		return nil
	}

	code := CodeOf(err)
	if code == "" {
		code = CodeServerInternalFailure
	}

	return oops.Code(code).With(flatten(fields)...).Wrap(err)
}

func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	if code, ok := oopsErr.Code().(Code); ok {
		return code
	}

	if code, ok := oopsErr.Code().(string); ok {
		return Code(code)
	}

	return Code(fmt.Sprintf("%v", oopsErr.Code()))
}

func FieldsOf(err error) map[string]any {
	if err == nil {
		return nil
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}

	return oopsErr.Context()
}

func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

func IsNotFound(err error) bool {
	return reason(CodeOf(err)) == "not_found"
}

func IsInvalidInput(err error) bool {
	r := reason(CodeOf(err))
	return r == "invalid" || r == "invalid_input" || r == "invalid_value"
}

// IsDimensionMismatch reports whether err was caused by a vector (or an
// embedding response) whose length does not match the configured dimension.
func IsDimensionMismatch(err error) bool {
	return reason(CodeOf(err)) == "dimension_mismatch"
}

// IsMissingEndpoint reports whether err was caused by an edge referencing
// a node that does not exist.
func IsMissingEndpoint(err error) bool {
	return reason(CodeOf(err)) == "missing_endpoint"
}

func IsUpstreamFailure(err error) bool {
	code := CodeOf(err)
	return strings.Contains(string(code), "upstream") && reason(code) == "failure"
}

func HTTPStatus(err error) int {
	switch {
	case IsNotFound(err):
		return http.StatusNotFound
	case IsInvalidInput(err), IsDimensionMismatch(err), IsMissingEndpoint(err):
		return http.StatusBadRequest
	case IsUpstreamFailure(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func Join(errs ...error) error {
	return oops.Code(CodeServerInternalFailure).Wrap(stderrors.Join(errs...))
}

func flatten(fields []Attr) []any {
	pairs := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		if field.Key == "" {
			continue
		}
		pairs = append(pairs, field.Key, field.Value)
	}
	return pairs
}

func reason(code Code) string {
	if code == "" {
		return ""
	}

	raw := string(code)
	idx := strings.LastIndex(raw, ".")
	if idx == -1 || idx == len(raw)-1 {
		return raw
	}
	return raw[idx+1:]
}

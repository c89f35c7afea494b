// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package store

// Config controls which backend the store factory uses.
type Config struct {
	Backend    string // "sqlite" is the only supported backend for now.
	Path       string // Database file path.
	Dimensions int    // Embedding dimensions; 0 uses the default (1536).
}

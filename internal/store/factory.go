// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package store

import (
	"fmt"
	"sync"
)

// defaultDimensions is the default embedding dimension (matches OpenAI
// text-embedding-3-small).
const defaultDimensions = 1536

// Factory creates a MultiModal store given a database path and vector
// dimensions.
type Factory func(path string, dimensions int) (MultiModal, error)

var (
	factories   = map[string]Factory{}
	factoriesMu sync.RWMutex
)

// RegisterBackend registers a factory for a named storage backend.
// Backend packages call this from init(). Goroutine-safe.
func RegisterBackend(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// Open creates a MultiModal store using the configured backend.
func Open(cfg *Config) (MultiModal, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = "sqlite"
	}

	factoriesMu.RLock()
	factory, ok := factories[backend]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage backend: %q", backend)
	}

	dims := defaultDimensions
	if cfg.Dimensions > 0 {
		dims = cfg.Dimensions
	}

	return factory(cfg.Path, dims)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Trove Contributors

package config

import (
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	troveerr "github.com/trovekit/trove/pkg/errors"
)

// Config is the top-level Trove configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Embedder EmbedderConfig `mapstructure:"embedder"`
	Chunking ChunkingConfig `mapstructure:"chunking"`
	Search   SearchConfig   `mapstructure:"search"`
}

// ServerConfig controls how the HTTP API listens for connections.
type ServerConfig struct {
	Listen      string   `mapstructure:"listen"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// StorageConfig selects the storage backend and its vector dimension.
// The dimension is fixed at store creation; every vector written later
// must match it.
type StorageConfig struct {
	Backend    string `mapstructure:"backend"`
	Path       string `mapstructure:"path"`
	Dimensions int    `mapstructure:"dimensions"`
}

// EmbedderConfig holds credentials and endpoint for the embedding provider.
type EmbedderConfig struct {
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	Model    string `mapstructure:"model"`
}

// ChunkingConfig controls how long documents are split before embedding.
type ChunkingConfig struct {
	Strategy string `mapstructure:"strategy"`
	Size     int    `mapstructure:"size"`
	Overlap  int    `mapstructure:"overlap"`
	Pooling  string `mapstructure:"pooling"`
}

// SearchConfig sets the default ranking knobs for hybrid search and the
// similarity threshold for dedup-on-write.
type SearchConfig struct {
	Weight              float64 `mapstructure:"weight"`
	Limit               int     `mapstructure:"limit"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix TROVE_).
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.listen", "127.0.0.1:8470")
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.path", "trove.db")
	v.SetDefault("storage.dimensions", 1536)
	v.SetDefault("embedder.provider", "openai")
	v.SetDefault("embedder.model", "text-embedding-3-small")
	v.SetDefault("chunking.strategy", "sentences")
	v.SetDefault("chunking.size", 1200)
	v.SetDefault("chunking.overlap", 120)
	v.SetDefault("chunking.pooling", "mean")
	v.SetDefault("search.weight", 0.5)
	v.SetDefault("search.limit", 10)
	v.SetDefault("search.similarity_threshold", 0.95)

	// Environment
	v.SetEnvPrefix("TROVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// File
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, troveerr.Errorf(troveerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, troveerr.Errorf(troveerr.CodeConfigValidateInvalidValue, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, troveerr.Errorf(troveerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors.
// It returns a slice of all validation errors found, collecting all issues
// rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateChunking()...)
	errs = append(errs, c.validateSearch()...)

	return errs
}

func (c *Config) validateServer() []error {
	var errs []error

	if c.Server.Listen == "" {
		errs = append(errs, troveerr.Errorf(troveerr.CodeConfigValidateInvalidValue, "config: server.listen must not be empty"))
		return errs
	}

	host, portStr, err := net.SplitHostPort(c.Server.Listen)
	if err != nil {
		errs = append(errs, troveerr.Errorf(troveerr.CodeConfigValidateInvalidValue,
			"config: server.listen must be a valid host:port address, got %q: %w",
			c.Server.Listen, err,
		))
		return errs
	}
	_ = host // host can be empty (e.g., ":8080"), which is valid

	port, err := strconv.Atoi(portStr)
	if err != nil {
		errs = append(errs, troveerr.Errorf(troveerr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be a number, got %q",
			portStr,
		))
	} else if port < 1 || port > 65535 {
		errs = append(errs, troveerr.Errorf(troveerr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be between 1 and 65535, got %d",
			port,
		))
	}

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	validBackends := map[string]bool{"sqlite": true}
	if !validBackends[c.Storage.Backend] {
		errs = append(errs, troveerr.Errorf(troveerr.CodeConfigValidateInvalidValue,
			"config: storage.backend must be one of [sqlite], got %q",
			c.Storage.Backend,
		))
	}

	if c.Storage.Path == "" {
		errs = append(errs, troveerr.Errorf(troveerr.CodeConfigValidateInvalidValue, "config: storage.path must not be empty"))
	}

	if c.Storage.Dimensions <= 0 {
		errs = append(errs, troveerr.Errorf(troveerr.CodeConfigValidateInvalidValue,
			"config: storage.dimensions must be greater than 0, got %d",
			c.Storage.Dimensions,
		))
	}

	return errs
}

func (c *Config) validateChunking() []error {
	var errs []error

	validStrategies := map[string]bool{"characters": true, "sentences": true, "paragraphs": true}
	if !validStrategies[c.Chunking.Strategy] {
		errs = append(errs, troveerr.Errorf(troveerr.CodeConfigValidateInvalidValue,
			"config: chunking.strategy must be one of [characters, sentences, paragraphs], got %q",
			c.Chunking.Strategy,
		))
	}

	validPooling := map[string]bool{"mean": true, "weighted": true, "max": true}
	if !validPooling[c.Chunking.Pooling] {
		errs = append(errs, troveerr.Errorf(troveerr.CodeConfigValidateInvalidValue,
			"config: chunking.pooling must be one of [mean, weighted, max], got %q",
			c.Chunking.Pooling,
		))
	}

	if c.Chunking.Size <= 0 {
		errs = append(errs, troveerr.Errorf(troveerr.CodeConfigValidateInvalidValue,
			"config: chunking.size must be greater than 0, got %d",
			c.Chunking.Size,
		))
	} else if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		errs = append(errs, troveerr.Errorf(troveerr.CodeConfigValidateInvalidValue,
			"config: chunking.overlap must be in [0, chunking.size), got %d",
			c.Chunking.Overlap,
		))
	}

	return errs
}

func (c *Config) validateSearch() []error {
	var errs []error

	if c.Search.Weight < 0 || c.Search.Weight > 1 {
		errs = append(errs, troveerr.Errorf(troveerr.CodeConfigValidateInvalidValue,
			"config: search.weight must be between 0 and 1, got %g",
			c.Search.Weight,
		))
	}

	if c.Search.Limit <= 0 {
		errs = append(errs, troveerr.Errorf(troveerr.CodeConfigValidateInvalidValue,
			"config: search.limit must be greater than 0, got %d",
			c.Search.Limit,
		))
	}

	if c.Search.SimilarityThreshold < 0 || c.Search.SimilarityThreshold > 1 {
		errs = append(errs, troveerr.Errorf(troveerr.CodeConfigValidateInvalidValue,
			"config: search.similarity_threshold must be between 0 and 1, got %g",
			c.Search.SimilarityThreshold,
		))
	}

	return errs
}

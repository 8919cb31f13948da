// Package file provides a TOML file-based implementation of the config
// store port.
//
// Configuration lives in ~/.pdfrag/config.toml by default. Nested TOML
// tables are flattened to dot-notation keys (e.g. [retrieval] top_k becomes
// "retrieval.top_k"). Settings resolves the typed runtime configuration
// from the store, applying defaults and environment overrides.
package file

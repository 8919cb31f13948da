// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the pipelines to function:
//
//   - Fetcher: Downloads document bytes from a URL
//   - Normaliser: Decodes document bytes into ordered pages of text
//   - Splitter: Cuts page text into overlapping chunks
//   - EmbeddingService: Generates vector embeddings
//   - DocumentStore: Document and chunk persistence plus similarity search
//
// ConfigStore is consumed by the driving side only; core services never
// read configuration directly.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven

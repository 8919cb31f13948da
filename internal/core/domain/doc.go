// Package domain defines the core business entities for Pdfrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested PDF with its content checksum
//   - Chunk: An embedded unit of document text
//   - Page: A page of extracted text before chunking
//   - ChunkMatch / RetrievedContext: Similarity search results
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

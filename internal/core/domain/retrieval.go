package domain

import (
	"math"
	"sort"
)

// Default retrieval parameters.
const (
	DefaultTopK = 8

	// DefaultOverfetch is the candidate over-fetch multiplier: stores
	// retrieve up to topK * DefaultOverfetch candidate rows before the
	// application-side ranking pass.
	DefaultOverfetch = 3
)

// RetrieveOptions configures a retrieval query.
type RetrieveOptions struct {
	// TopK is the maximum number of contexts to return (default 8).
	TopK int

	// MinSimilarity discards matches scoring below this threshold.
	// Cosine similarity, theoretical range [-1, 1].
	MinSimilarity float64
}

// ChunkMatch is a raw similarity search hit from a document store.
type ChunkMatch struct {
	// Content is the chunk text.
	Content string

	// Metadata is the stored chunk metadata.
	Metadata map[string]any

	// Similarity is the cosine similarity between the query vector
	// and the chunk embedding (1 - cosine distance).
	Similarity float64
}

// RetrievedContext is the public shape handed to answer generation.
type RetrievedContext struct {
	// Content is the chunk text.
	Content string `json:"content"`

	// Page is the 1-based page number, zero when unknown.
	Page int `json:"page,omitempty"`

	// Similarity is the match score.
	Similarity float64 `json:"similarity"`

	// SourceURL is the owning document's URL, empty when unknown.
	SourceURL string `json:"sourceUrl,omitempty"`
}

// RankMatches finalises similarity ranking for a candidate set that a
// store retrieved without any ordering guarantee: sort descending by
// similarity, discard rows below minSimilarity, take the first topK.
// Ties keep their original retrieval order. Not all vector backends
// reliably support ordering on distance operators, so the contract is
// enforced here regardless of what the storage layer returned.
func RankMatches(matches []ChunkMatch, topK int, minSimilarity float64) []ChunkMatch {
	ranked := make([]ChunkMatch, len(matches))
	copy(ranked, matches)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})

	filtered := ranked[:0]
	for _, m := range ranked {
		if m.Similarity >= minSimilarity {
			filtered = append(filtered, m)
		}
	}

	if topK >= 0 && len(filtered) > topK {
		filtered = filtered[:topK]
	}
	return filtered
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns 0 when either vector has zero magnitude or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

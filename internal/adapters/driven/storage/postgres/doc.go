// Package postgres provides a PostgreSQL implementation of the document
// store port, built on the pgvector extension.
//
// This adapter uses the pgx driver through database/sql. Embeddings are
// stored in a vector column and candidate retrieval uses the cosine
// distance operator; final ranking, thresholding and truncation happen in
// the application so every backend returns results the same way.
//
// The chunks query over-fetches beyond the requested top-k before ranking,
// which keeps the SQL cheap while leaving enough candidates to survive the
// similarity threshold.
package postgres

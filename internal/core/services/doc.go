// Package services contains the application core: the ingestion and
// retrieval pipelines expressed against the driven ports, with no
// knowledge of concrete adapters.
package services

package contract

import (
	"context"
	"errors"

	"pergunte-ao-passado/internal/entity"
)

// ErrCollectionNotFound signals that the corpus table is missing or was
// never ingested. Callers treat it as fatal at startup.
var ErrCollectionNotFound = errors.New("corpus collection not found")

// ScoredDocument wraps a Document with its cosine distance to the query
// vector. Distance is what pgvector's <=> operator returns; similarity
// is 1 - distance.
type ScoredDocument struct {
	Document *entity.Document
	Distance float64
}

// CorpusStats summarizes the loaded corpus without shipping embeddings.
type CorpusStats struct {
	Count              int64
	SampleIds          []string
	SampleDocuments    []string
	SampleMetadatas    []map[string]string
	CollectionMetadata map[string]string
}

type DocumentRepository interface {
	CreateBulk(ctx context.Context, documents []*entity.Document) error
	Count(ctx context.Context) (int64, error)
	FindAll(ctx context.Context) ([]*entity.Document, error)
	// SearchSimilar returns up to limit documents ordered by ascending
	// cosine distance to the query vector. Fewer rows than limit is a
	// normal outcome on a small corpus.
	SearchSimilar(ctx context.Context, vector []float32, limit int) ([]*ScoredDocument, error)
	Stats(ctx context.Context, sampleSize int) (*CorpusStats, error)
	// EnsureCollection verifies the corpus table exists and holds rows.
	// Returns ErrCollectionNotFound otherwise.
	EnsureCollection(ctx context.Context) error
}

package service

import (
	"context"

	"pergunte-ao-passado/internal/repository/contract"
	"pergunte-ao-passado/pkg/store"
)

// DocumentSearcher adapts the document repository to the retrieval
// pipeline's Searcher interface, flattening scored rows into the
// transport-agnostic retrieved-item form.
type DocumentSearcher struct {
	documents contract.DocumentRepository
}

func NewDocumentSearcher(documents contract.DocumentRepository) *DocumentSearcher {
	return &DocumentSearcher{documents: documents}
}

func (s *DocumentSearcher) SearchSimilar(ctx context.Context, vector []float32, limit int) ([]store.RetrievedItem, error) {
	scored, err := s.documents.SearchSimilar(ctx, vector, limit)
	if err != nil {
		return nil, err
	}

	items := make([]store.RetrievedItem, len(scored))
	for i, sd := range scored {
		distance := sd.Distance
		items[i] = store.RetrievedItem{
			ID:       sd.Document.Id,
			Content:  sd.Document.Text,
			Metadata: sd.Document.Metadata,
			Distance: &distance,
		}
	}
	return items, nil
}

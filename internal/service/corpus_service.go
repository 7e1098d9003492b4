package service

import (
	"context"

	"pergunte-ao-passado/internal/dto"
	"pergunte-ao-passado/internal/pkg/logger"
	"pergunte-ao-passado/internal/repository/contract"
)

// ICorpusService exposes read-only corpus diagnostics.
type ICorpusService interface {
	GetStats(ctx context.Context) (*dto.CorpusStatsResponse, error)
	ListDocuments(ctx context.Context) ([]*dto.CorpusDocumentResponse, error)
}

type corpusService struct {
	documents contract.DocumentRepository
	logger    logger.ILogger
}

func NewCorpusService(documents contract.DocumentRepository, log logger.ILogger) ICorpusService {
	return &corpusService{
		documents: documents,
		logger:    log,
	}
}

func (s *corpusService) GetStats(ctx context.Context) (*dto.CorpusStatsResponse, error) {
	stats, err := s.documents.Stats(ctx, 5)
	if err != nil {
		return nil, err
	}

	return &dto.CorpusStatsResponse{
		Count:              stats.Count,
		SampleIds:          stats.SampleIds,
		SampleDocuments:    stats.SampleDocuments,
		SampleMetadatas:    stats.SampleMetadatas,
		CollectionMetadata: stats.CollectionMetadata,
	}, nil
}

// ListDocuments returns every corpus entry without embeddings. The
// projection tool joins these rows with highlight indices by row_index.
func (s *corpusService) ListDocuments(ctx context.Context) ([]*dto.CorpusDocumentResponse, error) {
	documents, err := s.documents.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.CorpusDocumentResponse, len(documents))
	for i, d := range documents {
		responses[i] = &dto.CorpusDocumentResponse{
			Id:       d.Id,
			RowIndex: d.RowIndex,
			Text:     d.Text,
			Metadata: d.Metadata,
		}
	}
	return responses, nil
}

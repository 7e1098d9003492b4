package implementation

import (
	"context"

	"pergunte-ao-passado/internal/entity"
	"pergunte-ao-passado/internal/mapper"
	"pergunte-ao-passado/internal/model"
	"pergunte-ao-passado/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &DocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

func (r *DocumentRepositoryImpl) CreateBulk(ctx context.Context, documents []*entity.Document) error {
	models := make([]*model.Document, len(documents))
	for i, d := range documents {
		models[i] = r.mapper.ToModel(d)
	}

	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return err
	}

	for i, m := range models {
		*documents[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *DocumentRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Document{}).Count(&count).Error
	return count, err
}

func (r *DocumentRepositoryImpl) FindAll(ctx context.Context) ([]*entity.Document, error) {
	var models []*model.Document
	if err := r.db.WithContext(ctx).
		Omit("embedding").
		Order("row_index ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DocumentRepositoryImpl) SearchSimilar(ctx context.Context, vector []float32, limit int) ([]*contract.ScoredDocument, error) {
	if limit <= 0 {
		limit = 3
	}

	// Raw select to get the cosine distance alongside the row. pgvector's
	// <=> is cosine distance; ordering ascending puts the closest match
	// first, which is the order callers must preserve.
	type result struct {
		model.Document
		Distance float64
	}
	var results []result

	queryVector := pgvector.NewVector(vector)

	err := r.db.WithContext(ctx).
		Table("documents").
		Select("documents.*, embedding <=> ? AS distance", queryVector).
		Order("distance ASC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredDocument, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredDocument{
			Document: r.mapper.ToEntity(&res.Document),
			Distance: res.Distance,
		}
	}
	return scored, nil
}

func (r *DocumentRepositoryImpl) Stats(ctx context.Context, sampleSize int) (*contract.CorpusStats, error) {
	if sampleSize <= 0 {
		sampleSize = 5
	}

	count, err := r.Count(ctx)
	if err != nil {
		return nil, err
	}

	var models []*model.Document
	if err := r.db.WithContext(ctx).
		Omit("embedding").
		Order("row_index ASC").
		Limit(sampleSize).
		Find(&models).Error; err != nil {
		return nil, err
	}

	stats := &contract.CorpusStats{
		Count:           count,
		SampleIds:       make([]string, 0, len(models)),
		SampleDocuments: make([]string, 0, len(models)),
		SampleMetadatas: make([]map[string]string, 0, len(models)),
		CollectionMetadata: map[string]string{
			"metric": "cosine",
		},
	}
	for _, m := range models {
		e := r.mapper.ToEntity(m)
		stats.SampleIds = append(stats.SampleIds, e.Id)
		stats.SampleDocuments = append(stats.SampleDocuments, e.Text)
		stats.SampleMetadatas = append(stats.SampleMetadatas, e.Metadata)
	}
	return stats, nil
}

func (r *DocumentRepositoryImpl) EnsureCollection(ctx context.Context) error {
	if !r.db.WithContext(ctx).Migrator().HasTable(&model.Document{}) {
		return contract.ErrCollectionNotFound
	}
	count, err := r.Count(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		return contract.ErrCollectionNotFound
	}
	return nil
}

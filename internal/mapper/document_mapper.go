package mapper

import (
	"fmt"

	"pergunte-ao-passado/internal/entity"
	"pergunte-ao-passado/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	return &entity.Document{
		Id:        d.Id,
		RowIndex:  d.RowIndex,
		Text:      d.Text,
		Metadata:  jsonMapToStrings(d.Metadata),
		Embedding: d.Embedding.Slice(),
		CreatedAt: d.CreatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	return &model.Document{
		Id:        d.Id,
		RowIndex:  d.RowIndex,
		Text:      d.Text,
		Metadata:  stringsToJSONMap(d.Metadata),
		Embedding: pgvector.NewVector(d.Embedding),
		CreatedAt: d.CreatedAt,
	}
}

func (m *DocumentMapper) ToEntities(documents []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(documents))
	for i, d := range documents {
		entities[i] = m.ToEntity(d)
	}
	return entities
}

func (m *DocumentMapper) ToModels(documents []*entity.Document) []*model.Document {
	models := make([]*model.Document, len(documents))
	for i, d := range documents {
		models[i] = m.ToModel(d)
	}
	return models
}

// jsonMapToStrings flattens the stored JSONB object. Values arrive from
// ingestion as strings; anything else is stringified rather than dropped.
func jsonMapToStrings(jm datatypes.JSONMap) map[string]string {
	if len(jm) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(jm))
	for k, v := range jm {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}

func stringsToJSONMap(meta map[string]string) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}

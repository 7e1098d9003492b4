package model

import (
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// EmbeddingDim is the width pinned by the Embedding column tag below.
// Keep both in sync when changing the embedding model.
const EmbeddingDim = 1536

// ValidateEmbeddingWidth rejects embedding providers whose vector width
// does not match the pinned column, so a misconfigured model fails at
// startup instead of on the first insert or search.
func ValidateEmbeddingWidth(dim int) error {
	if dim != EmbeddingDim {
		return fmt.Errorf("embedding width %d does not match the documents table vector(%d) column", dim, EmbeddingDim)
	}
	return nil
}

type Document struct {
	Id        string            `gorm:"type:varchar(64);primaryKey"` // stable "doc_<row>" ingestion id
	RowIndex  int               `gorm:"uniqueIndex;not null"`
	Text      string            `gorm:"type:text;not null"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb"`
	Embedding pgvector.Vector   `gorm:"type:vector(1536)"` // text-embedding-3-small uses 1536 dimensions
	CreatedAt time.Time         `gorm:"autoCreateTime"`
}

func (Document) TableName() string {
	return "documents"
}

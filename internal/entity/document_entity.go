package entity

import "time"

// Document is one retrievable chunk of the archive corpus. Id carries the
// stable "doc_<row>" form assigned at ingestion time.
type Document struct {
	Id        string
	RowIndex  int
	Text      string
	Metadata  map[string]string
	Embedding []float32
	CreatedAt time.Time
}

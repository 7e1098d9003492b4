package dto

// CorpusStatsResponse summarizes the loaded corpus for diagnostics and
// the external projection tool.
type CorpusStatsResponse struct {
	Count              int64               `json:"count"`
	SampleIds          []string            `json:"sample_ids"`
	SampleDocuments    []string            `json:"sample_documents"`
	SampleMetadatas    []map[string]string `json:"sample_metadatas"`
	CollectionMetadata map[string]string   `json:"collection_metadata"`
}

// CorpusDocumentResponse is one corpus entry without its embedding.
type CorpusDocumentResponse struct {
	Id       string            `json:"id"`
	RowIndex int               `json:"row_index"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

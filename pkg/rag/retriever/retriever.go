package retriever

import (
	"context"
	"errors"
	"log"

	"pergunte-ao-passado/pkg/embedding"
	"pergunte-ao-passado/pkg/retry"
	"pergunte-ao-passado/pkg/store"
)

// Searcher is the slice of the vector store the pipeline needs: a cosine
// nearest-neighbor query returning text, metadata and distance inline,
// ordered by ascending distance.
type Searcher interface {
	SearchSimilar(ctx context.Context, vector []float32, limit int) ([]store.RetrievedItem, error)
}

// Pipeline orchestrates embed -> vector query for a single turn.
type Pipeline struct {
	embedder embedding.Provider
	searcher Searcher
	logger   *log.Logger

	// Policy covers the vector query; the embedder retries internally.
	Policy retry.Policy
}

func NewPipeline(embedder embedding.Provider, searcher Searcher, logger *log.Logger) *Pipeline {
	return &Pipeline{
		embedder: embedder,
		searcher: searcher,
		logger:   logger,
		Policy:   retry.DefaultPolicy(),
	}
}

// Retrieve returns up to topK items ordered by ascending distance, exactly
// as the store ranked them. Fewer than topK matches is not an error; an
// empty result is the valid "no relevant sources" outcome. An embedding
// failure after exhausted retries degrades to that same empty outcome
// rather than failing the turn.
func (p *Pipeline) Retrieve(ctx context.Context, query string, topK int) ([]store.RetrievedItem, error) {
	if topK <= 0 {
		topK = 3
	}

	vector, err := p.embedder.Embed(ctx, query)
	if err != nil {
		if errors.Is(err, embedding.ErrExhaustedRetries) {
			p.logger.Printf("[RETRIEVAL] Query embedding failed after retries, returning no sources: %v", err)
			return []store.RetrievedItem{}, nil
		}
		return nil, err
	}

	var items []store.RetrievedItem
	err = p.Policy.Do(ctx, func() error {
		found, err := p.searcher.SearchSimilar(ctx, vector, topK)
		if err != nil {
			return err
		}
		items = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.logger.Printf("[RETRIEVAL] %d source(s) for top-%d query", len(items), topK)
	return items, nil
}

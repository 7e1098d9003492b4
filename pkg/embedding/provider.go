package embedding

import (
	"context"
	"errors"
)

// ErrExhaustedRetries wraps transport failures that survived the retry
// policy. A turn that hits this error fails; prior session state is kept.
var ErrExhaustedRetries = errors.New("embedding retries exhausted")

// Provider defines the interface for generating text embeddings
type Provider interface {
	// Embed returns a single embedding vector for the given text
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, in input order
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension reports the vector width produced by the configured model
	Dimension() int
}

// Package embedding maps text to fixed-width vectors. Providers cover a
// local ONNX sentence-transformer model and an Ollama HTTP backend; a
// deterministic mock serves tests and development.
package embedding

import "context"

// Embedder turns text into vectors of a fixed dimension. Every provider
// L2-normalizes its output, so the inner product of two embeddings is
// already their cosine similarity. Safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

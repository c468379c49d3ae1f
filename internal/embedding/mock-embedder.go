package embedding

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/legalbot/jai/pkg/utils"
)

// MockEmbedder derives unit vectors from a hash of the input text. Identical
// text always produces the identical vector, while distinct texts come out
// effectively uncorrelated, so retrieval behaves predictably in tests and
// development without a real model.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns a mock embedder producing vectors of the given
// width, defaulting to 384 to mirror common sentence-transformer models.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed expands an FNV hash of text into a pseudo-random unit vector.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	state := h.Sum64()

	vec := make([]float32, e.dimensions)
	for i := range vec {
		state = state*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int32(state>>32)) / math.MaxInt32
	}
	utils.NormalizeL2(vec)
	return vec, nil
}

// EmbedBatch embeds each text independently.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vecs[i] = vec
	}
	return vecs, nil
}

// Dimensions returns the configured vector width.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op.
func (e *MockEmbedder) Close() error {
	return nil
}

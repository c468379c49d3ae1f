package embedding

import (
	"fmt"

	"github.com/legalbot/jai/internal/config"
)

// Provider represents the embedding implementation to use.
type Provider string

const (
	// ProviderONNX runs a local ONNX model. Requires CGO and the onnxruntime library.
	ProviderONNX Provider = "onnx"
	// ProviderOllama calls an Ollama-compatible HTTP embeddings endpoint.
	ProviderOllama Provider = "ollama"
	// ProviderMock produces deterministic hash-derived vectors. For tests and development.
	ProviderMock Provider = "mock"
)

// New creates an embedder for the configured provider.
// Supported providers: "onnx" (default), "ollama", "mock".
func New(cfg config.EmbeddingConfig) (Embedder, error) {
	switch Provider(cfg.Provider) {
	case ProviderONNX, "":
		return NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens, cfg.CacheSize)
	case ProviderOllama:
		return NewOllamaEmbedder(cfg.OllamaURL, cfg.OllamaModel, cfg.Dimensions, cfg.CacheSize, cfg.TimeoutSeconds), nil
	case ProviderMock:
		return NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: onnx, ollama, mock)", cfg.Provider)
	}
}

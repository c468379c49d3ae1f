//go:build cgo
// +build cgo

// ONNX Runtime provider. Compiled only with CGO; otherwise the stub in
// onnx_stub.go takes its place.

package embedding

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/legalbot/jai/pkg/utils"
)

// sessionTensors are the fixed input and output tensors bound to an ONNX
// session. They are allocated once and rewritten on every inference.
type sessionTensors struct {
	inputIDs  *ort.Tensor[int64]
	attention *ort.Tensor[int64]
	tokenType *ort.Tensor[int64]
	output    *ort.Tensor[float32]
}

func newSessionTensors(maxTokens, dims int) (*sessionTensors, error) {
	st := &sessionTensors{}
	inShape := ort.NewShape(1, int64(maxTokens))

	var err error
	if st.inputIDs, err = ort.NewTensor(inShape, make([]int64, maxTokens)); err != nil {
		return nil, fmt.Errorf("input_ids tensor: %w", err)
	}
	if st.attention, err = ort.NewTensor(inShape, make([]int64, maxTokens)); err != nil {
		st.destroy()
		return nil, fmt.Errorf("attention_mask tensor: %w", err)
	}
	if st.tokenType, err = ort.NewTensor(inShape, make([]int64, maxTokens)); err != nil {
		st.destroy()
		return nil, fmt.Errorf("token_type_ids tensor: %w", err)
	}
	if st.output, err = ort.NewTensor(ort.NewShape(1, int64(dims)), make([]float32, dims)); err != nil {
		st.destroy()
		return nil, fmt.Errorf("output tensor: %w", err)
	}
	return st, nil
}

func (st *sessionTensors) destroy() {
	if st.inputIDs != nil {
		_ = st.inputIDs.Destroy()
	}
	if st.attention != nil {
		_ = st.attention.Destroy()
	}
	if st.tokenType != nil {
		_ = st.tokenType.Destroy()
	}
	if st.output != nil {
		_ = st.output.Destroy()
	}
}

// ONNXEmbedder runs a local sentence-transformer model through ONNX Runtime.
type ONNXEmbedder struct {
	session   *ort.AdvancedSession
	tensors   *sessionTensors
	tokenizer Tokenizer
	dims      int
	maxTokens int
	cache     *EmbeddingCache

	// Guards the shared tensors across Run calls.
	mu sync.Mutex
}

// NewONNXEmbedder loads the model at modelPath. The runtime environment is
// initialized on first use and shared between embedders.
func NewONNXEmbedder(modelPath string, dimensions, maxTokens, cacheSize int) (*ONNXEmbedder, error) {
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize onnxruntime: %w", err)
		}
	}

	tensors, err := newSessionTensors(maxTokens, dimensions)
	if err != nil {
		return nil, err
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"output"},
		[]ort.ArbitraryTensor{tensors.inputIDs, tensors.attention, tensors.tokenType},
		[]ort.ArbitraryTensor{tensors.output},
		nil,
	)
	if err != nil {
		tensors.destroy()
		return nil, fmt.Errorf("failed to load model %s: %w", modelPath, err)
	}

	return &ONNXEmbedder{
		session:   session,
		tensors:   tensors,
		tokenizer: HashTokenizer{},
		dims:      dimensions,
		maxTokens: maxTokens,
		cache:     NewEmbeddingCache(cacheSize),
	}, nil
}

// Embed runs one inference, reusing cached vectors for repeated text.
func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := e.cache.Get(text); ok {
		return vec, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ids, mask, tokenTypes := e.tokenizer.Tokenize(text, e.maxTokens)
	copy(e.tensors.inputIDs.GetData(), ids)
	copy(e.tensors.attention.GetData(), mask)
	copy(e.tensors.tokenType.GetData(), tokenTypes)

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	vec := make([]float32, e.dims)
	copy(vec, e.tensors.output.GetData()[:e.dims])
	utils.NormalizeL2(vec)

	e.cache.Set(text, vec)
	return vec, nil
}

// EmbedBatch embeds texts one at a time; the session takes a single sequence per run.
func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed text %d of %d: %w", i+1, len(texts), err)
		}
		vecs[i] = vec
	}
	return vecs, nil
}

// Dimensions returns the model output width.
func (e *ONNXEmbedder) Dimensions() int {
	return e.dims
}

// Close tears down the session and its tensors.
func (e *ONNXEmbedder) Close() error {
	var err error
	if e.session != nil {
		err = e.session.Destroy()
		e.session = nil
	}
	if e.tensors != nil {
		e.tensors.destroy()
		e.tensors = nil
	}
	return err
}

package retrieval

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/legalbot/jai/internal/config"
	"github.com/legalbot/jai/internal/embedding"
	"github.com/legalbot/jai/internal/models"
	"github.com/legalbot/jai/pkg/utils"
)

// AnswerLister is the slice of the store the engine needs.
type AnswerLister interface {
	ListAnswers(ctx context.Context) ([]*models.AnswerRecord, error)
}

// Engine answers free-text questions by finding the stored record whose
// reference question is closest by cosine similarity. Load once before
// serving; Answer is safe for concurrent use.
type Engine struct {
	store    AnswerLister
	embedder embedding.Embedder
	cfg      *config.RetrievalConfig

	mu     sync.RWMutex
	corpus *Corpus
}

// NewEngine creates a retrieval engine with the given dependencies.
func NewEngine(store AnswerLister, embedder embedding.Embedder, cfg *config.RetrievalConfig) *Engine {
	return &Engine{
		store:    store,
		embedder: embedder,
		cfg:      cfg,
	}
}

// Load reads every answer record in one call and builds the corpus.
// An unreachable store or an empty result is an error; callers treat it as
// fatal at startup.
func (e *Engine) Load(ctx context.Context) error {
	recs, err := e.store.ListAnswers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load answers: %w", err)
	}
	corpus, err := BuildCorpus(recs)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.corpus = corpus
	e.mu.Unlock()
	return nil
}

// Reload rebuilds the corpus wholesale and atomically swaps it in.
// Concurrent Answer calls see either the old corpus or the new one.
func (e *Engine) Reload(ctx context.Context) error {
	return e.Load(ctx)
}

// Answer returns the stored answer whose reference question is closest to
// query. A query that is empty after trimming returns (nil, nil). When a
// minimum score is configured and the best score falls below it, Answer
// also returns (nil, nil).
func (e *Engine) Answer(ctx context.Context, query string) (*models.Match, error) {
	corpus := e.snapshot()
	if corpus == nil {
		return nil, ErrNotLoaded
	}

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, nil
	}

	vec, err := e.embedder.Embed(ctx, trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vec) != corpus.Dimensions() {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(vec), corpus.Dimensions())
	}
	if utils.L2Norm(vec) == 0 {
		return nil, fmt.Errorf("query %q: %w", utils.Truncate(trimmed, 60), ErrZeroVector)
	}

	// Embedders may hand back a cached slice; normalize a copy.
	q := make([]float32, len(vec))
	copy(q, vec)
	utils.NormalizeL2(q)

	idx, score := corpus.Best(q)
	if e.cfg != nil && e.cfg.MinScore > 0 && score < e.cfg.MinScore {
		return nil, nil
	}
	return &models.Match{Record: corpus.Record(idx), Score: score, Index: idx}, nil
}

// Size returns the number of records in the loaded corpus, or 0 before Load.
func (e *Engine) Size() int {
	if c := e.snapshot(); c != nil {
		return c.Size()
	}
	return 0
}

// Dimensions returns the corpus embedding dimension, or 0 before Load.
func (e *Engine) Dimensions() int {
	if c := e.snapshot(); c != nil {
		return c.Dimensions()
	}
	return 0
}

// LoadedAt returns the load time of the current corpus, or the zero time before Load.
func (e *Engine) LoadedAt() time.Time {
	if c := e.snapshot(); c != nil {
		return c.LoadedAt()
	}
	return time.Time{}
}

func (e *Engine) snapshot() *Corpus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.corpus
}

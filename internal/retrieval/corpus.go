// Package retrieval implements exact cosine-similarity retrieval over an
// in-memory corpus of answer embeddings.
package retrieval

import (
	"errors"
	"fmt"
	"time"

	"github.com/legalbot/jai/internal/models"
	"github.com/legalbot/jai/pkg/utils"
)

// ErrEmptyCorpus is returned when the store holds no answer records.
// Serving with no answers is a startup failure, not a degraded mode.
var ErrEmptyCorpus = errors.New("answer corpus is empty")

// ErrZeroVector is returned when an embedding has zero L2 norm and cannot
// be normalized. Failing fast here keeps NaN out of every similarity score.
var ErrZeroVector = errors.New("embedding has zero norm")

// ErrNotLoaded is returned by Answer before the corpus has been loaded.
var ErrNotLoaded = errors.New("answer corpus not loaded")

// Corpus holds answer records and their unit-normalized embedding matrix.
// Row i of the matrix belongs to records[i]. A corpus is immutable after build.
type Corpus struct {
	records    []*models.AnswerRecord
	matrix     [][]float32
	dimensions int
	loadedAt   time.Time
}

// BuildCorpus validates record embeddings and normalizes them into a corpus.
// Record order is preserved; it defines the index used for tie-breaking.
func BuildCorpus(recs []*models.AnswerRecord) (*Corpus, error) {
	if len(recs) == 0 {
		return nil, ErrEmptyCorpus
	}

	dims := len(recs[0].Embedding)
	matrix := make([][]float32, len(recs))
	for i, rec := range recs {
		if len(rec.Embedding) != dims {
			return nil, fmt.Errorf("record %s: embedding dimension mismatch: got %d, expected %d",
				rec.ID, len(rec.Embedding), dims)
		}
		if utils.L2Norm(rec.Embedding) == 0 {
			return nil, fmt.Errorf("record %s (%q): %w", rec.ID, utils.Truncate(rec.Question, 60), ErrZeroVector)
		}
		row := make([]float32, dims)
		copy(row, rec.Embedding)
		utils.NormalizeL2(row)
		matrix[i] = row
	}

	return &Corpus{
		records:    recs,
		matrix:     matrix,
		dimensions: dims,
		loadedAt:   time.Now(),
	}, nil
}

// Size returns the number of records in the corpus.
func (c *Corpus) Size() int {
	return len(c.records)
}

// Dimensions returns the embedding dimension of the corpus rows.
func (c *Corpus) Dimensions() int {
	return c.dimensions
}

// LoadedAt returns the time the corpus was built.
func (c *Corpus) LoadedAt() time.Time {
	return c.loadedAt
}

// Record returns the record at index i.
func (c *Corpus) Record(i int) *models.AnswerRecord {
	return c.records[i]
}

// Best scans every row and returns the index and inner-product score of the
// closest record for a unit query vector. Equal scores keep the lowest index,
// so results are deterministic for a given corpus.
func (c *Corpus) Best(query []float32) (int, float64) {
	best := 0
	bestScore := utils.InnerProduct(query, c.matrix[0])
	for i := 1; i < len(c.matrix); i++ {
		if score := utils.InnerProduct(query, c.matrix[i]); score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, bestScore
}

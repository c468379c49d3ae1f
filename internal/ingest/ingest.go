// Package ingest loads question/answer files into the answer store.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/legalbot/jai/internal/embedding"
	"github.com/legalbot/jai/internal/models"
)

// AnswerWriter is the slice of the storage layer the ingestor needs.
type AnswerWriter interface {
	ReplaceAnswersBySource(ctx context.Context, source string, records []*models.AnswerRecord) error
}

// Ingestor parses question/answer files, embeds the reference questions,
// and writes the records to storage. Re-ingesting a file replaces all
// records previously loaded from it.
type Ingestor struct {
	store    AnswerWriter
	embedder embedding.Embedder
	logger   *zap.Logger // optional; when set, logs debug events
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithLogger sets a logger for debug output (file ingested, pair skipped, etc.).
func WithLogger(l *zap.Logger) IngestorOption {
	return func(ing *Ingestor) { ing.logger = l }
}

// NewIngestor creates an ingestor with the given dependencies.
func NewIngestor(store AnswerWriter, embedder embedding.Embedder, opts ...IngestorOption) *Ingestor {
	ing := &Ingestor{store: store, embedder: embedder}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// IngestFile parses the file at path and stores one answer record per valid
// question/answer pair. Pairs with an empty question or answer are skipped.
// All records previously ingested from the same file are replaced, so a file
// that shrank sheds its stale records. If allowedExts is non-empty, the
// file's extension must be in the list (case-insensitive). Returns the
// number of records stored.
func (ing *Ingestor) IngestFile(ctx context.Context, path string, allowedExts []string) (int, error) {
	if ing.logger != nil {
		ing.logger.Debug("ingesting file", zap.String("path", path))
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(absPath))
	if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
		return 0, fmt.Errorf("extension %q not in allowed list", ext)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return 0, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("not a regular file: %s", absPath)
	}
	content, err := os.ReadFile(absPath)
	if err != nil {
		return 0, fmt.Errorf("read file: %w", err)
	}
	pairs, err := parsePairs(content, ext)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", absPath, err)
	}

	valid := make([]qaPair, 0, len(pairs))
	for i, pair := range pairs {
		question := strings.TrimSpace(pair.Question)
		answer := strings.TrimSpace(pair.Answer)
		if question == "" || answer == "" {
			if ing.logger != nil {
				ing.logger.Debug("skipping pair with empty fields",
					zap.String("file", absPath), zap.Int("index", i))
			}
			continue
		}
		valid = append(valid, qaPair{Question: question, Answer: answer})
	}

	records := make([]*models.AnswerRecord, 0, len(valid))
	if len(valid) > 0 {
		texts := make([]string, len(valid))
		for i, pair := range valid {
			texts[i] = pair.Question
		}
		embeddings, err := ing.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("failed to embed questions: %w", err)
		}
		now := time.Now()
		for i, pair := range valid {
			records = append(records, &models.AnswerRecord{
				ID:        uuid.New().String(),
				Question:  pair.Question,
				Answer:    pair.Answer,
				Embedding: embeddings[i],
				Source:    absPath,
				CreatedAt: now,
			})
		}
	}

	if err := ing.store.ReplaceAnswersBySource(ctx, absPath, records); err != nil {
		return 0, fmt.Errorf("failed to store answers: %w", err)
	}
	if ing.logger != nil {
		ing.logger.Debug("file ingested",
			zap.String("path", absPath), zap.Int("records", len(records)))
	}
	return len(records), nil
}

// IngestDirectory ingests each regular file in dir (non-recursive) whose
// extension is in allowedExts (if non-empty; otherwise all files). Returns
// the total number of records stored and the first error encountered.
func (ing *Ingestor) IngestDirectory(ctx context.Context, dir string, allowedExts []string) (int, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return 0, fmt.Errorf("read directory: %w", err)
	}

	total := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(absDir, entry.Name())
		ext := strings.ToLower(filepath.Ext(path))
		if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
			continue
		}
		// Resolve symlinks so we only ingest regular files
		finfo, statErr := os.Stat(path)
		if statErr != nil {
			continue
		}
		if !finfo.Mode().IsRegular() {
			continue
		}
		n, err := ing.IngestFile(ctx, path, allowedExts)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}

// Package ingest turns a raw PDF into a stored, embedded resume row.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshevko/talentsift/internal/ai"
	"github.com/dshevko/talentsift/internal/extract"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FileStore persists the raw PDF bytes.
type FileStore interface {
	Upload(ctx context.Context, path string, data []byte) error
}

// Inserter persists the resume row with its embedding.
type Inserter interface {
	InsertResume(ctx context.Context, batchName, candidateName, fileName, storagePath, extractedText string, embedding []float32) (string, error)
}

// Result describes one ingested resume.
type Result struct {
	ID            string
	CandidateName string
	StoragePath   string
}

// Service runs the upload flow: extract text, detect the candidate name,
// embed, store the object, insert the row.
type Service struct {
	embedder ai.Embedder
	namer    ai.NameExtractor
	files    FileStore
	store    Inserter
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(embedder ai.Embedder, namer ai.NameExtractor, files FileStore, store Inserter, logger *zap.Logger) *Service {
	return &Service{
		embedder: embedder,
		namer:    namer,
		files:    files,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) Ingest(ctx context.Context, batch, fileName string, data []byte) (*Result, error) {
	text, err := extract.Text(data)
	if err != nil {
		return nil, err
	}

	name, err := s.namer.ExtractName(ctx, text)
	if err != nil || name == "Unknown" {
		if err != nil {
			s.logger.Debug("ai name extraction failed, using heuristic",
				zap.String("file", fileName),
				zap.Error(err),
			)
		}
		name = extract.NameHeuristic(text)
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed resume: %w", err)
	}

	storagePath := storagePathFor(fileName, s.now())
	if err := s.files.Upload(ctx, storagePath, data); err != nil {
		return nil, err
	}

	id, err := s.store.InsertResume(ctx, batch, name, fileName, storagePath, text, embedding)
	if err != nil {
		return nil, err
	}

	s.logger.Info("resume ingested",
		zap.String("id", id),
		zap.String("batch", batch),
		zap.String("candidate", name),
	)

	return &Result{ID: id, CandidateName: name, StoragePath: storagePath}, nil
}

// storagePathFor builds a collision-free object path for an uploaded PDF,
// e.g. 2026-09-01/jane_doe_1a2b3c4d.pdf.
func storagePathFor(fileName string, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	base = strings.ToLower(strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, base))

	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%s/%s_%s.pdf", now.Format("2006-01-02"), base, suffix)
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Resume is an uploaded resume row. Immutable after insert except for its
// shortlist associations.
type Resume struct {
	ID            string    `json:"id"`
	BatchName     string    `json:"batch_name"`
	CandidateName string    `json:"candidate_name"`
	FileName      string    `json:"file_name"`
	StoragePath   string    `json:"storage_path"`
	ExtractedText string    `json:"extracted_text"`
	UploadedAt    time.Time `json:"uploaded_at"`
}

// CandidateMatch is one similarity-search result: resume display fields
// plus the 1-based rank assigned by the store's ordering.
type CandidateMatch struct {
	ID            string
	CandidateName string
	BatchName     string
	FileName      string
	StoragePath   string
	ExtractedText string
	Rank          int
}

// BatchStat summarizes one upload batch.
type BatchStat struct {
	BatchName string    `json:"batch_name"`
	Count     int       `json:"count"`
	Latest    time.Time `json:"latest"`
}

// InsertResume stores a resume with its embedding and returns the new id.
func (db *DB) InsertResume(ctx context.Context, batchName, candidateName, fileName, storagePath, extractedText string, embedding []float32) (string, error) {
	id := uuid.NewString()

	query := `INSERT INTO resumes (id, batch_name, candidate_name, file_name, storage_path, extracted_text, embedding, uploaded_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7::vector, NOW())`

	_, err := db.conn.ExecContext(ctx, query,
		id, batchName, candidateName, fileName, storagePath, extractedText, vectorLiteral(embedding),
	)
	if err != nil {
		return "", fmt.Errorf("insert resume: %w", err)
	}

	return id, nil
}

// GetResume fetches a resume by id. A missing id yields (nil, nil).
func (db *DB) GetResume(ctx context.Context, id string) (*Resume, error) {
	query := `SELECT id, batch_name, candidate_name, file_name, storage_path, extracted_text, uploaded_at
	          FROM resumes WHERE id = $1`

	r := &Resume{}
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.BatchName, &r.CandidateName, &r.FileName, &r.StoragePath, &r.ExtractedText, &r.UploadedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get resume: %w", err)
	}

	return r, nil
}

// ListBatches returns distinct batch labels, most recently uploaded first.
func (db *DB) ListBatches(ctx context.Context) ([]string, error) {
	query := `SELECT batch_name FROM resumes GROUP BY batch_name ORDER BY MAX(uploaded_at) DESC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var batches []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		batches = append(batches, name)
	}
	return batches, rows.Err()
}

// BatchStats returns resume count and latest upload per batch, most
// recently active batch first.
func (db *DB) BatchStats(ctx context.Context) ([]BatchStat, error) {
	query := `SELECT batch_name, COUNT(*), MAX(uploaded_at)
	          FROM resumes GROUP BY batch_name ORDER BY MAX(uploaded_at) DESC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("batch stats: %w", err)
	}
	defer rows.Close()

	var stats []BatchStat
	for rows.Next() {
		var s BatchStat
		if err := rows.Scan(&s.BatchName, &s.Count, &s.Latest); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// SearchByEmbedding invokes the search_resumes pgvector function and
// returns up to limit rows ordered by cosine similarity. An empty
// batchFilter means no batch restriction.
func (db *DB) SearchByEmbedding(ctx context.Context, embedding []float32, batchFilter []string, limit int) ([]CandidateMatch, error) {
	if batchFilter == nil {
		batchFilter = []string{}
	}

	query := `SELECT id, candidate_name, batch_name, file_name, storage_path, extracted_text
	          FROM search_resumes($1::vector, $2, $3)`

	rows, err := db.conn.QueryContext(ctx, query, vectorLiteral(embedding), limit, pq.Array(batchFilter))
	if err != nil {
		return nil, fmt.Errorf("search resumes: %w", err)
	}
	defer rows.Close()

	var matches []CandidateMatch
	for rows.Next() {
		var m CandidateMatch
		if err := rows.Scan(&m.ID, &m.CandidateName, &m.BatchName, &m.FileName, &m.StoragePath, &m.ExtractedText); err != nil {
			return nil, err
		}
		m.Rank = len(matches) + 1
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

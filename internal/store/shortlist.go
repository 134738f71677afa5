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

// Pipeline statuses a shortlist entry moves through.
const (
	StatusShortlisted = "Shortlisted"
	StatusReviewing   = "Reviewing"
	StatusInterview   = "Interview"
	StatusHired       = "Hired"
	StatusRejected    = "Rejected"
)

// Statuses lists the valid shortlist statuses in pipeline order.
var Statuses = []string{StatusShortlisted, StatusReviewing, StatusInterview, StatusHired, StatusRejected}

// ValidStatus reports whether s is a known shortlist status.
func ValidStatus(s string) bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ShortlistEntry is a (resume, role) pairing tracked through the hiring
// pipeline, enriched with resume display fields on listing.
type ShortlistEntry struct {
	ID            string    `json:"id"`
	ResumeID      string    `json:"resume_id"`
	RoleName      string    `json:"role_name"`
	Status        string    `json:"status"`
	Notes         string    `json:"notes"`
	ShortlistedAt time.Time `json:"shortlisted_at"`

	CandidateName string `json:"candidate_name,omitempty"`
	FileName      string `json:"file_name,omitempty"`
	BatchName     string `json:"batch_name,omitempty"`
	StoragePath   string `json:"storage_path,omitempty"`
}

// AddToShortlist bulk-adds resumes to the shortlist for a role. Pairs
// already present are skipped; the return value counts only new rows.
func (db *DB) AddToShortlist(ctx context.Context, resumeIDs []string, roleName string) (int, error) {
	if len(resumeIDs) == 0 {
		return 0, nil
	}

	existing, err := db.shortlistedResumeIDs(ctx, roleName, resumeIDs)
	if err != nil {
		return 0, err
	}

	newIDs := missingResumeIDs(resumeIDs, existing)
	if len(newIDs) == 0 {
		return 0, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin shortlist insert: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO shortlists (id, resume_id, role_name, status, notes, shortlisted_at)
	          VALUES ($1, $2, $3, $4, '', NOW())`
	for _, resumeID := range newIDs {
		if _, err := tx.ExecContext(ctx, query, uuid.NewString(), resumeID, roleName, StatusShortlisted); err != nil {
			return 0, fmt.Errorf("insert shortlist entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit shortlist insert: %w", err)
	}

	return len(newIDs), nil
}

func (db *DB) shortlistedResumeIDs(ctx context.Context, roleName string, resumeIDs []string) (map[string]struct{}, error) {
	query := `SELECT resume_id FROM shortlists WHERE role_name = $1 AND resume_id = ANY($2)`

	rows, err := db.conn.QueryContext(ctx, query, roleName, pq.Array(resumeIDs))
	if err != nil {
		return nil, fmt.Errorf("query existing shortlist entries: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		existing[id] = struct{}{}
	}
	return existing, rows.Err()
}

// missingResumeIDs returns requested ids not yet shortlisted, input order
// preserved and duplicates collapsed.
func missingResumeIDs(requested []string, existing map[string]struct{}) []string {
	seen := make(map[string]struct{}, len(requested))
	missing := make([]string, 0, len(requested))
	for _, id := range requested {
		if _, ok := existing[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		missing = append(missing, id)
	}
	return missing
}

// ListShortlisted returns shortlist entries joined with resume display
// fields, most recent first. An empty roleFilter lists all roles.
func (db *DB) ListShortlisted(ctx context.Context, roleFilter string) ([]ShortlistEntry, error) {
	query := `SELECT s.id, s.resume_id, s.role_name, s.status, s.notes, s.shortlisted_at,
	                 r.candidate_name, r.file_name, r.batch_name, r.storage_path
	          FROM shortlists s
	          JOIN resumes r ON r.id = s.resume_id`
	var args []interface{}
	if roleFilter != "" {
		query += ` WHERE s.role_name = $1`
		args = append(args, roleFilter)
	}
	query += ` ORDER BY s.shortlisted_at DESC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shortlisted: %w", err)
	}
	defer rows.Close()

	var entries []ShortlistEntry
	for rows.Next() {
		var e ShortlistEntry
		if err := rows.Scan(
			&e.ID, &e.ResumeID, &e.RoleName, &e.Status, &e.Notes, &e.ShortlistedAt,
			&e.CandidateName, &e.FileName, &e.BatchName, &e.StoragePath,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListShortlistRoles returns distinct role names, most recently
// shortlisted first.
func (db *DB) ListShortlistRoles(ctx context.Context) ([]string, error) {
	query := `SELECT role_name FROM shortlists GROUP BY role_name ORDER BY MAX(shortlisted_at) DESC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list shortlist roles: %w", err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// UpdateShortlist overwrites status and notes for an entry. A missing id
// yields (nil, nil), not an error.
func (db *DB) UpdateShortlist(ctx context.Context, id, status, notes string) (*ShortlistEntry, error) {
	query := `UPDATE shortlists SET status = $1, notes = $2 WHERE id = $3
	          RETURNING id, resume_id, role_name, status, notes, shortlisted_at`

	e := &ShortlistEntry{}
	err := db.conn.QueryRowContext(ctx, query, status, notes, id).Scan(
		&e.ID, &e.ResumeID, &e.RoleName, &e.Status, &e.Notes, &e.ShortlistedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update shortlist entry: %w", err)
	}

	return e, nil
}

// RemoveFromShortlist deletes an entry. Removing an unknown id is a no-op.
func (db *DB) RemoveFromShortlist(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM shortlists WHERE id = $1`, id); err != nil {
		return fmt.Errorf("remove shortlist entry: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"os"
	"testing"

	"go.uber.org/zap"
)

// Integration tests run against a real Postgres with the pgvector
// extension and the schema from schema.sql applied. They are skipped
// unless TALENTSIFT_TEST_DATABASE_URL is set.
func newIntegrationDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TALENTSIFT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TALENTSIFT_TEST_DATABASE_URL not set, skipping integration test")
	}

	db, err := NewDB(dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	t.Cleanup(db.Close)

	return db
}

func insertTestResume(t *testing.T, db *DB, batch, name string) string {
	t.Helper()

	embedding := make([]float32, 768)
	embedding[0] = 1

	id, err := db.InsertResume(context.Background(), batch, name, name+".pdf", "test/"+name+".pdf", "resume text for "+name, embedding)
	if err != nil {
		t.Fatalf("inserting test resume: %v", err)
	}
	t.Cleanup(func() {
		db.conn.ExecContext(context.Background(), `DELETE FROM resumes WHERE id = $1`, id)
	})

	return id
}

func TestResumeRoundTrip(t *testing.T) {
	db := newIntegrationDB(t)
	ctx := context.Background()

	id := insertTestResume(t, db, "integration-batch", "roundtrip")

	resume, err := db.GetResume(ctx, id)
	if err != nil {
		t.Fatalf("get resume: %v", err)
	}
	if resume == nil {
		t.Fatal("inserted resume not found")
	}
	if resume.BatchName != "integration-batch" || resume.CandidateName != "roundtrip" {
		t.Fatalf("unexpected row: %+v", resume)
	}
}

func TestGetResumeMissing(t *testing.T) {
	db := newIntegrationDB(t)

	resume, err := db.GetResume(context.Background(), "00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resume != nil {
		t.Fatalf("expected nil for a missing id, got %+v", resume)
	}
}

func TestShortlistDedup(t *testing.T) {
	db := newIntegrationDB(t)
	ctx := context.Background()

	first := insertTestResume(t, db, "integration-batch", "dedup-a")
	second := insertTestResume(t, db, "integration-batch", "dedup-b")
	t.Cleanup(func() {
		db.conn.ExecContext(ctx, `DELETE FROM shortlists WHERE role_name = 'Integration Role'`)
	})

	added, err := db.AddToShortlist(ctx, []string{first, second}, "Integration Role")
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	if added != 2 {
		t.Fatalf("expected 2 added, got %d", added)
	}

	added, err = db.AddToShortlist(ctx, []string{first, second}, "Integration Role")
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if added != 0 {
		t.Fatalf("expected duplicate add to report 0, got %d", added)
	}

	entries, err := db.ListShortlisted(ctx, "Integration Role")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].CandidateName == "" {
		t.Fatalf("expected joined resume fields, got %+v", entries[0])
	}
}

func TestShortlistUpdateAndRemove(t *testing.T) {
	db := newIntegrationDB(t)
	ctx := context.Background()

	id := insertTestResume(t, db, "integration-batch", "lifecycle")
	t.Cleanup(func() {
		db.conn.ExecContext(ctx, `DELETE FROM shortlists WHERE role_name = 'Lifecycle Role'`)
	})

	if _, err := db.AddToShortlist(ctx, []string{id}, "Lifecycle Role"); err != nil {
		t.Fatalf("add: %v", err)
	}

	entries, err := db.ListShortlisted(ctx, "Lifecycle Role")
	if err != nil || len(entries) != 1 {
		t.Fatalf("list: %v, %d entries", err, len(entries))
	}
	entry := entries[0]
	if entry.Status != StatusShortlisted {
		t.Fatalf("new entry should start as %s, got %s", StatusShortlisted, entry.Status)
	}

	updated, err := db.UpdateShortlist(ctx, entry.ID, StatusInterview, "phone screen done")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated == nil || updated.Status != StatusInterview || updated.Notes != "phone screen done" {
		t.Fatalf("unexpected updated entry: %+v", updated)
	}

	missing, err := db.UpdateShortlist(ctx, "00000000-0000-0000-0000-000000000000", StatusHired, "")
	if err != nil {
		t.Fatalf("update missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for a missing entry, got %+v", missing)
	}

	if err := db.RemoveFromShortlist(ctx, entry.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	// Removing again is a no-op.
	if err := db.RemoveFromShortlist(ctx, entry.ID); err != nil {
		t.Fatalf("repeated remove: %v", err)
	}

	entries, err = db.ListShortlisted(ctx, "Lifecycle Role")
	if err != nil {
		t.Fatalf("list after remove: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty shortlist, got %d entries", len(entries))
	}
}

func TestSearchByEmbeddingFindsInsertedResume(t *testing.T) {
	db := newIntegrationDB(t)
	ctx := context.Background()

	id := insertTestResume(t, db, "search-batch", "searchable")

	embedding := make([]float32, 768)
	embedding[0] = 1

	matches, err := db.SearchByEmbedding(ctx, embedding, []string{"search-batch"}, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	found := false
	for i, m := range matches {
		if m.Rank != i+1 {
			t.Fatalf("rank not sequential at %d: %+v", i, m)
		}
		if m.ID == id {
			found = true
		}
	}
	if !found {
		t.Fatal("inserted resume not returned by similarity search")
	}
}

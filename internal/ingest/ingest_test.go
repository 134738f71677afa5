package ingest

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestStoragePathFor(t *testing.T) {
	now := time.Date(2026, 9, 1, 15, 4, 5, 0, time.UTC)

	pattern := regexp.MustCompile(`^2026-09-01/[a-z0-9_]+_[0-9a-f]{8}\.pdf$`)

	cases := []struct {
		name     string
		fileName string
		prefix   string
	}{
		{"plain", "resume.pdf", "2026-09-01/resume_"},
		{"spaces and case", "Jane Doe CV.pdf", "2026-09-01/jane_doe_cv_"},
		{"strips directories", "/tmp/uploads/cv.pdf", "2026-09-01/cv_"},
		{"special characters", "résumé (final).PDF", "2026-09-01/r_sum___final__"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := storagePathFor(tc.fileName, now)
			if !strings.HasPrefix(got, tc.prefix) {
				t.Fatalf("storagePathFor(%q) = %q, want prefix %q", tc.fileName, got, tc.prefix)
			}
			if !pattern.MatchString(got) {
				t.Fatalf("storagePathFor(%q) = %q does not match expected shape", tc.fileName, got)
			}
		})
	}
}

func TestStoragePathForUniqueness(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	first := storagePathFor("resume.pdf", now)
	second := storagePathFor("resume.pdf", now)
	if first == second {
		t.Fatalf("expected distinct paths for repeated file names, got %q twice", first)
	}
}

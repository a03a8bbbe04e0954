package store

import (
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndListOperations(t *testing.T) {
	s := newTestStore(t)

	ops := []Operation{
		{Profile: "DEV1", Kind: KindBackup, File: "/b/dev1_1.sql", SizeBytes: 100, Duration: 2 * time.Second, Status: StatusOK},
		{Profile: "PROD", Kind: KindBackup, File: "/b/prod_1.backup", SizeBytes: 5000, Duration: 30 * time.Second, Status: StatusOK},
		{Profile: "DEV1", Kind: KindRestore, File: "/b/dev1_1.sql", Status: StatusError, Error: "pg_restore failed"},
	}
	for _, op := range ops {
		id, err := s.RecordOperation(op)
		if err != nil {
			t.Fatalf("RecordOperation failed: %v", err)
		}
		if id <= 0 {
			t.Errorf("RecordOperation returned id %d", id)
		}
	}

	got, err := s.RecentOperations("", 10)
	if err != nil {
		t.Fatalf("RecentOperations failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d operations, want 3", len(got))
	}

	// Newest first: ids share a created_at second, so the id tiebreaker
	// keeps insertion order reversed.
	if got[0].Kind != KindRestore || got[0].Profile != "DEV1" {
		t.Errorf("first row = %+v, want the restore", got[0])
	}
	if got[0].Error != "pg_restore failed" || got[0].Status != StatusError {
		t.Errorf("error fields not round-tripped: %+v", got[0])
	}
	if got[2].Duration != 2*time.Second {
		t.Errorf("duration = %v, want 2s", got[2].Duration)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not assigned on insert")
	}
}

func TestRecentOperationsProfileFilter(t *testing.T) {
	s := newTestStore(t)
	for _, profile := range []string{"DEV1", "PROD", "DEV1"} {
		if _, err := s.RecordOperation(Operation{Profile: profile, Kind: KindBackup, File: "f", Status: StatusOK}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.RecentOperations("DEV1", 10)
	if err != nil {
		t.Fatalf("RecentOperations failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d DEV1 operations, want 2", len(got))
	}
	for _, op := range got {
		if op.Profile != "DEV1" {
			t.Errorf("filter leaked profile %q", op.Profile)
		}
	}
}

func TestRecentOperationsLimit(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		if _, err := s.RecordOperation(Operation{Profile: "P", Kind: KindBackup, File: "f", Status: StatusOK}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.RecentOperations("", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("got %d operations, want 3", len(got))
	}
}

func TestRecordOperationRejectsBadKind(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.RecordOperation(Operation{Profile: "P", Kind: "vacuum", File: "f", Status: StatusOK}); err == nil {
		t.Error("expected CHECK constraint failure for unknown kind")
	}
}

func TestPrune(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.RecordOperation(Operation{Profile: "P", Kind: KindBackup, File: "f", Status: StatusOK}); err != nil {
		t.Fatal(err)
	}

	// Cutoff in the past removes nothing.
	n, err := s.Prune(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Prune removed %d rows, want 0", n)
	}

	// Cutoff in the future removes the row.
	n, err = s.Prune(time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Prune removed %d rows, want 1", n)
	}
}

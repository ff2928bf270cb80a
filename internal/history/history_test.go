package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/quillworks/quill/pkg/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleSession(id string) (models.SessionState, []models.LogEntry) {
	state := models.SessionState{
		ID:         id,
		Topic:      "Photosynthesis",
		Difficulty: models.DifficultyBeginner,
		TurnCount:  6,
		MaxTurns:   15,
	}
	entries := []models.LogEntry{
		{ID: id + "-e1", Timestamp: time.Now(), Agent: models.AgentCurriculumPlanner, Category: models.LogStatus, Content: "Curriculum Planner starting"},
		{ID: id + "-e2", Timestamp: time.Now(), Agent: models.AgentCurriculumPlanner, Category: models.LogOutput, Content: "1. intro"},
		{ID: id + "-e3", Timestamp: time.Now(), Agent: models.AgentEngine, Category: models.LogDecision, Content: "session terminated", Rationale: "approved"},
	}
	return state, entries
}

func TestSaveAndListSessions(t *testing.T) {
	db := openTestDB(t)

	state, entries := sampleSession("sess-1")
	if err := db.SaveSession(state, entries, "approved"); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	records, err := db.ListSessions()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.ID != "sess-1" || rec.Topic != "Photosynthesis" || rec.Outcome != "approved" {
		t.Errorf("unexpected record %+v", rec)
	}
	if rec.Difficulty != models.DifficultyBeginner {
		t.Errorf("expected Beginner, got %s", rec.Difficulty)
	}
	if rec.TurnCount != 6 {
		t.Errorf("expected 6 turns, got %d", rec.TurnCount)
	}
}

func TestGetTranscriptPreservesOrder(t *testing.T) {
	db := openTestDB(t)

	state, entries := sampleSession("sess-2")
	if err := db.SaveSession(state, entries, "approved"); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := db.GetTranscript("sess-2")
	if err != nil {
		t.Fatalf("transcript failed: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(got))
	}
	for i := range entries {
		if got[i].ID != entries[i].ID {
			t.Errorf("entry %d: expected id %s, got %s", i, entries[i].ID, got[i].ID)
		}
	}
	if got[2].Rationale != "approved" {
		t.Errorf("rationale lost, got %q", got[2].Rationale)
	}
}

func TestGetTranscriptUnknownSession(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.GetTranscript("missing"); err == nil {
		t.Error("expected an error for an unknown session")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	state, entries := sampleSession("sess-3")
	if err := db.SaveSession(state, entries, "turn limit reached"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	db.Close()

	// Reopening applies no duplicate migrations and keeps existing data.
	db, err = Open(path)
	if err != nil {
		t.Fatalf("second open failed: %v", err)
	}
	defer db.Close()

	records, err := db.ListSessions()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected the archived session to survive reopen, got %d", len(records))
	}
}

func TestPurgeOldSessions(t *testing.T) {
	db := openTestDB(t)

	state, entries := sampleSession("sess-4")
	if err := db.SaveSession(state, entries, "approved"); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Nothing is older than an hour yet.
	count, err := db.PurgeOldSessions(time.Hour)
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 purged, got %d", count)
	}

	// Everything is older than a negative cutoff in the future.
	count, err = db.PurgeOldSessions(-time.Hour)
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 purged, got %d", count)
	}
}

package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aldersync/voice-core/internal/infrastructure/database"
	"github.com/aldersync/voice-core/migrations"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "audit.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background(), migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	return NewSQLiteRepository(db)
}

func TestCreate_AssignsIDAndTimestamp(t *testing.T) {
	repo := newTestRepo(t)

	event := &Event{
		SessionID: "sess-1",
		Intent:    "turn_on_light",
		EntityID:  "light.all_lights",
		Stage:     StageDispatch,
		Outcome:   "success",
	}

	if err := repo.Create(context.Background(), event); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if event.ID == "" {
		t.Error("Create() did not assign an ID")
	}
	if event.CreatedAt.IsZero() {
		t.Error("Create() did not assign a timestamp")
	}
}

func TestList_FiltersAndOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Now().UTC()
	seed := []Event{
		{SessionID: "sess-1", Intent: "turn_on_light", EntityID: "light.all_lights", Stage: StageDispatch, Outcome: "success", CreatedAt: base},
		{SessionID: "sess-1", Intent: "unknown_command", Stage: StageClassify, Outcome: "unknown", CreatedAt: base.Add(time.Second)},
		{SessionID: "sess-2", Intent: "lock_door", EntityID: "lock.front_door", Stage: StageDispatch, Outcome: "success", CreatedAt: base.Add(2 * time.Second)},
	}
	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	all, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List() len = %d, want 3", len(all))
	}
	if all[0].Intent != "lock_door" {
		t.Errorf("List() not newest first, got %s first", all[0].Intent)
	}

	bySession, err := repo.List(ctx, Filter{SessionID: "sess-1"})
	if err != nil {
		t.Fatalf("List(session) error = %v", err)
	}
	if len(bySession) != 2 {
		t.Errorf("List(session) len = %d, want 2", len(bySession))
	}

	byOutcome, err := repo.List(ctx, Filter{Outcome: "unknown"})
	if err != nil {
		t.Fatalf("List(outcome) error = %v", err)
	}
	if len(byOutcome) != 1 || byOutcome[0].Stage != StageClassify {
		t.Errorf("List(outcome) = %+v, want one classify-stage event", byOutcome)
	}

	limited, err := repo.List(ctx, Filter{Limit: 1})
	if err != nil {
		t.Fatalf("List(limit) error = %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("List(limit) len = %d, want 1", len(limited))
	}
}

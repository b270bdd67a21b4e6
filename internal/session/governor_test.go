package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aldersync/voice-core/internal/infrastructure/config"
	"github.com/aldersync/voice-core/internal/infrastructure/database"
	"github.com/aldersync/voice-core/migrations"
)

func newTestGovernor(t *testing.T, cfg config.SessionConfig) *Governor {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "sessions.db"),
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

	return NewGovernor(db, cfg)
}

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		MaxCommands:        3,
		IdleTimeoutMinutes: 30,
		MaxDurationMinutes: 1440,
	}
}

func TestAdmit_FirstSightCreatesSession(t *testing.T) {
	g := newTestGovernor(t, testSessionConfig())

	s, err := g.Admit(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("Admit() error = %v", err)
	}
	if s.CommandCount != 1 {
		t.Errorf("CommandCount = %d, want 1", s.CommandCount)
	}
	if s.ID != "sess-1" {
		t.Errorf("ID = %q, want sess-1", s.ID)
	}
}

// After exactly cap admits, the next admit fails and the count stays at
// the cap. Other sessions are unaffected.
func TestAdmit_QuotaMonotonicity(t *testing.T) {
	g := newTestGovernor(t, testSessionConfig())
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		s, err := g.Admit(ctx, "sess-1")
		if err != nil {
			t.Fatalf("Admit() #%d error = %v", i, err)
		}
		if s.CommandCount != i {
			t.Errorf("Admit() #%d CommandCount = %d, want %d", i, s.CommandCount, i)
		}
	}

	if _, err := g.Admit(ctx, "sess-1"); !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("Admit() #4 error = %v, want ErrQuotaExceeded", err)
	}

	// Refused admits must not advance the count.
	s, ok, err := g.Get(ctx, "sess-1")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if s.CommandCount != 3 {
		t.Errorf("CommandCount after refused admit = %d, want 3", s.CommandCount)
	}

	// A different session still admits normally.
	if _, err := g.Admit(ctx, "sess-2"); err != nil {
		t.Errorf("Admit(sess-2) error = %v", err)
	}
}

func TestAdmit_IdleExpiry(t *testing.T) {
	g := newTestGovernor(t, testSessionConfig())
	ctx := context.Background()

	base := time.Now()
	g.now = func() time.Time { return base }

	if _, err := g.Admit(ctx, "sess-1"); err != nil {
		t.Fatalf("Admit() error = %v", err)
	}

	// Past the idle window: admit fails, record is gone.
	g.now = func() time.Time { return base.Add(31 * time.Minute) }

	if _, err := g.Admit(ctx, "sess-1"); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("Admit() after idle window error = %v, want ErrSessionExpired", err)
	}

	if _, ok, err := g.Get(ctx, "sess-1"); err != nil || ok {
		t.Errorf("expired session still present: ok=%v err=%v", ok, err)
	}

	// The same ID starts over as a fresh session.
	s, err := g.Admit(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Admit() after expiry error = %v", err)
	}
	if s.CommandCount != 1 {
		t.Errorf("CommandCount after restart = %d, want 1", s.CommandCount)
	}
}

func TestAdmit_MaxDurationExpiry(t *testing.T) {
	g := newTestGovernor(t, testSessionConfig())
	ctx := context.Background()

	base := time.Now()
	g.now = func() time.Time { return base }

	if _, err := g.Admit(ctx, "sess-1"); err != nil {
		t.Fatalf("Admit() error = %v", err)
	}

	// Keep the session active but exceed the total duration cap.
	g.now = func() time.Time { return base.Add(20 * time.Minute) }
	if _, err := g.Admit(ctx, "sess-1"); err != nil {
		t.Fatalf("Admit() error = %v", err)
	}

	g.now = func() time.Time { return base.Add(25 * time.Hour) }
	if _, err := g.Admit(ctx, "sess-1"); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("Admit() past max duration error = %v, want ErrSessionExpired", err)
	}
}

// Concurrent admits for one session must never overshoot the cap.
func TestAdmit_ConcurrentQuotaEnforcement(t *testing.T) {
	cfg := testSessionConfig()
	cfg.MaxCommands = 10
	g := newTestGovernor(t, cfg)
	ctx := context.Background()

	const attempts = 25
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := g.Admit(ctx, "sess-1"); err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != 10 {
		t.Errorf("admitted = %d, want exactly the cap of 10", admitted)
	}

	s, ok, err := g.Get(ctx, "sess-1")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if s.CommandCount != 10 {
		t.Errorf("CommandCount = %d, want 10", s.CommandCount)
	}
}

func TestPurgeExpired(t *testing.T) {
	g := newTestGovernor(t, testSessionConfig())
	ctx := context.Background()

	base := time.Now()
	g.now = func() time.Time { return base }

	for _, id := range []string{"old-1", "old-2"} {
		if _, err := g.Admit(ctx, id); err != nil {
			t.Fatalf("Admit(%s) error = %v", id, err)
		}
	}

	g.now = func() time.Time { return base.Add(40 * time.Minute) }
	if _, err := g.Admit(ctx, "fresh"); err != nil {
		t.Fatalf("Admit(fresh) error = %v", err)
	}

	purged, err := g.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired() error = %v", err)
	}
	if purged != 2 {
		t.Errorf("purged = %d, want 2", purged)
	}

	if _, ok, _ := g.Get(ctx, "fresh"); !ok {
		t.Error("fresh session was purged")
	}
}

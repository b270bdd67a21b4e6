package database

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/aldersync/voice-core/migrations"
)

// openTestDB creates a file-backed database in a temp directory.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestOpen_CreatesDatabase(t *testing.T) {
	db := openTestDB(t)

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestMigrate_AppliesAllMigrations(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// Both tables must exist after migration.
	for _, table := range []string{"sessions", "audit_logs"} {
		var name string
		err := db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not created: %v", table, err)
		}
	}
}

func TestMigrate_IsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("first Migrate() error = %v", err)
	}
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("counting migrations: %v", err)
	}
	if count != 2 {
		t.Errorf("schema_migrations count = %d, want 2", count)
	}
}

func TestMigrate_RejectsDuplicateVersions(t *testing.T) {
	db := openTestDB(t)

	bad := fstest.MapFS{
		"001_first.up.sql":  {Data: []byte("CREATE TABLE a (id INTEGER)")},
		"001_second.up.sql": {Data: []byte("CREATE TABLE b (id INTEGER)")},
	}

	if err := db.Migrate(context.Background(), bad); err == nil {
		t.Error("Migrate() with duplicate versions should fail")
	}
}

func TestMigrate_RejectsMalformedFilename(t *testing.T) {
	db := openTestDB(t)

	bad := fstest.MapFS{
		"badname.up.sql": {Data: []byte("CREATE TABLE a (id INTEGER)")},
	}

	if err := db.Migrate(context.Background(), bad); err == nil {
		t.Error("Migrate() with malformed filename should fail")
	}
}

func TestParseMigrationName(t *testing.T) {
	tests := []struct {
		filename    string
		wantVersion int
		wantName    string
		wantErr     bool
	}{
		{"001_create_sessions.up.sql", 1, "create_sessions", false},
		{"012_add_index.up.sql", 12, "add_index", false},
		{"nounderscore.up.sql", 0, "", true},
		{"abc_bad_version.up.sql", 0, "", true},
	}

	for _, tt := range tests {
		version, name, err := parseMigrationName(tt.filename)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseMigrationName(%q) error = %v, wantErr %v", tt.filename, err, tt.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		if version != tt.wantVersion || name != tt.wantName {
			t.Errorf("parseMigrationName(%q) = (%d, %q), want (%d, %q)",
				tt.filename, version, name, tt.wantVersion, tt.wantName)
		}
	}
}

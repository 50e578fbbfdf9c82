package migration

import (
	"database/sql"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/studyweek/migrations"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// schemaWith returns the embedded sqlite schema plus extra migration files.
func schemaWith(t *testing.T, extra map[string]string) fs.FS {
	t.Helper()
	base, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		t.Fatalf("fs.Sub failed: %v", err)
	}
	out := fstest.MapFS{}
	entries, err := fs.ReadDir(base, ".")
	if err != nil {
		t.Fatalf("failed to read embedded migrations: %v", err)
	}
	for _, e := range entries {
		data, err := fs.ReadFile(base, e.Name())
		if err != nil {
			t.Fatalf("failed to read %s: %v", e.Name(), err)
		}
		out[e.Name()] = &fstest.MapFile{Data: data}
	}
	for name, body := range extra {
		out[name] = &fstest.MapFile{Data: []byte(body)}
	}
	return out
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&n); err != nil {
		t.Fatalf("sqlite_master query failed: %v", err)
	}
	return n == 1
}

func TestEmbeddedSchemaCreatesPlannerTables(t *testing.T) {
	db := openTestDB(t)
	runner, err := NewRunner(db, schemaWith(t, nil), DriverSQLite)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	var logged []string
	if _, err := runner.ApplyMigrations(func(s string) { logged = append(logged, s) }); err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	for _, table := range []string{"settings", "subjects", "tasks", "applied_sessions"} {
		if !tableExists(t, db, table) {
			t.Errorf("table %s was not created", table)
		}
	}
	if len(logged) == 0 {
		t.Error("expected progress messages from ApplyMigrations")
	}

	current, latest, err := runner.Versions()
	if err != nil {
		t.Fatalf("Versions failed: %v", err)
	}
	if current != latest || current < 1 {
		t.Errorf("Versions() = %d, %d; want equal and at least 1", current, latest)
	}

	n, err := runner.ApplyMigrations(nil)
	if err != nil || n != 0 {
		t.Errorf("second ApplyMigrations = %d, %v; want 0, nil", n, err)
	}
}

func TestUpgradeAddsColumnToExistingData(t *testing.T) {
	db := openTestDB(t)
	runner, err := NewRunner(db, schemaWith(t, nil), DriverSQLite)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	if _, err := runner.ApplyMigrations(nil); err != nil {
		t.Fatalf("initial migrations failed: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO subjects (id, user_id, name, weight, created_at)
		VALUES ('s1', 'u1', 'Algebra', 3, '2026-01-05T09:00:00Z')`); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	upgraded, err := NewRunner(db, schemaWith(t, map[string]string{
		"900_subject_colour.sql": "ALTER TABLE subjects ADD COLUMN colour TEXT NOT NULL DEFAULT '';",
	}), DriverSQLite)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	if n, err := upgraded.ApplyMigrations(nil); err != nil || n != 1 {
		t.Fatalf("ApplyMigrations = %d, %v; want 1, nil", n, err)
	}

	var name, colour string
	if err := db.QueryRow("SELECT name, colour FROM subjects WHERE id = 's1'").Scan(&name, &colour); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if name != "Algebra" || colour != "" {
		t.Errorf("row after upgrade = %q, %q", name, colour)
	}
	if v, _ := upgraded.GetCurrentVersion(); v != 900 {
		t.Errorf("version = %d, want 900", v)
	}
}

func TestFailedMigrationRollsBack(t *testing.T) {
	db := openTestDB(t)
	runner, err := NewRunner(db, schemaWith(t, map[string]string{
		"900_broken.sql": "CREATE TABLE reminders (id TEXT PRIMARY KEY);\nNOT VALID SQL;",
	}), DriverSQLite)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	n, err := runner.ApplyMigrations(nil)
	if err == nil {
		t.Fatal("expected the broken migration to fail")
	}
	if n != 1 {
		t.Errorf("applied = %d, want 1 (the base schema only)", n)
	}
	if tableExists(t, db, "reminders") {
		t.Error("reminders table survived a rolled back migration")
	}
	if !tableExists(t, db, "tasks") {
		t.Error("base schema should stay applied")
	}
	if v, _ := runner.GetCurrentVersion(); v != 1 {
		t.Errorf("version = %d, want 1", v)
	}
}

func TestNewerDatabaseIsRejected(t *testing.T) {
	db := openTestDB(t)
	runner, err := NewRunner(db, schemaWith(t, nil), DriverSQLite)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	if err := runner.SetVersion(42); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	if err := runner.ValidateVersion(); err == nil {
		t.Error("ValidateVersion should fail for a newer database")
	}
	if _, err := runner.ApplyMigrations(nil); err == nil || !strings.Contains(err.Error(), "upgrade the application") {
		t.Errorf("ApplyMigrations error = %v", err)
	}
}

func TestReadMigrationFilesErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{"missing name", map[string]string{"001init.sql": "SELECT 1;"}, "invalid migration filename"},
		{"version zero", map[string]string{"000_init.sql": "SELECT 1;"}, "version must be at least 1"},
		{"not a number", map[string]string{"abc_init.sql": "SELECT 1;"}, "invalid version number"},
		{"duplicate", map[string]string{"002_a.sql": "SELECT 1;", "002_b.sql": "SELECT 1;"}, "duplicate migration version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mfs := fstest.MapFS{}
			for name, body := range tt.files {
				mfs[name] = &fstest.MapFile{Data: []byte(body)}
			}
			runner, err := NewRunner(openTestDB(t), mfs, DriverSQLite)
			if err != nil {
				t.Fatalf("NewRunner failed: %v", err)
			}
			if _, err := runner.ReadMigrationFiles(); err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ReadMigrationFiles error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestReadMigrationFilesSortsAndSkipsOtherFiles(t *testing.T) {
	mfs := fstest.MapFS{
		"010_sessions.sql": {Data: []byte("SELECT 1;")},
		"002_tasks.sql":    {Data: []byte("SELECT 1;")},
		"README.md":        {Data: []byte("notes")},
	}
	runner, err := NewRunner(openTestDB(t), mfs, DriverSQLite)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	got, err := runner.ReadMigrationFiles()
	if err != nil {
		t.Fatalf("ReadMigrationFiles failed: %v", err)
	}
	if len(got) != 2 || got[0].Name != "tasks" || got[1].Version != 10 {
		t.Errorf("migrations = %+v", got)
	}
}

func TestDriverPlaceholders(t *testing.T) {
	db := openTestDB(t)
	if _, err := NewRunner(db, fstest.MapFS{}, Driver("mysql")); err == nil {
		t.Error("NewRunner should reject unsupported drivers")
	}

	lite, _ := NewRunner(db, fstest.MapFS{}, DriverSQLite)
	pg, _ := NewRunner(db, fstest.MapFS{}, DriverPostgres)
	if !strings.Contains(lite.insertVersionSQL(), "?") {
		t.Errorf("sqlite insert = %q", lite.insertVersionSQL())
	}
	if !strings.Contains(pg.insertVersionSQL(), "$1") {
		t.Errorf("postgres insert = %q", pg.insertVersionSQL())
	}
}

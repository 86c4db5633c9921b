package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"sort"
	"testing"

	_ "modernc.org/sqlite"
)

func TestListMigrationFiles_SortedSQLOnly(t *testing.T) {
	files, err := listMigrationFiles()
	if err != nil {
		t.Fatalf("listMigrationFiles: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("expected embedded migration files")
	}
	if !sort.StringsAreSorted(files) {
		t.Fatalf("migration files not sorted: %v", files)
	}
	for _, f := range files {
		if filepath.Ext(f) != ".sql" {
			t.Fatalf("non-sql file listed: %s", f)
		}
	}
}

func TestRun_AppliesAndRecords(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if err := Run(ctx, db); err != nil {
		t.Fatalf("Run: %v", err)
	}

	files, err := listMigrationFiles()
	if err != nil {
		t.Fatalf("listMigrationFiles: %v", err)
	}

	var recorded int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&recorded); err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if recorded != len(files) {
		t.Fatalf("expected %d recorded migrations, got %d", len(files), recorded)
	}

	// A second run applies nothing new.
	if err := Run(ctx, db); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&recorded); err != nil {
		t.Fatalf("recount schema_migrations: %v", err)
	}
	if recorded != len(files) {
		t.Fatalf("second run changed recorded count to %d", recorded)
	}
}

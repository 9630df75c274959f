// ABOUTME: Tests for database schema creation and constraints
// ABOUTME: Uses in-memory SQLite for fast isolated tests
package db

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=1")
	if err != nil {
		t.Fatalf("Failed to open in-memory db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := InitSchema(db); err != nil {
		t.Fatalf("InitSchema failed: %v", err)
	}
	return db
}

func TestInitSchema(t *testing.T) {
	db := openMemory(t)

	indexes := []string{
		"idx_prospects_stage",
		"idx_prospects_last_action",
		"idx_contacts_prospect_id",
		"idx_samples_prospect_id",
		"idx_samples_date_sent",
		"idx_activities_prospect_id",
		"idx_activities_date",
	}
	for _, idx := range indexes {
		var indexName string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx).Scan(&indexName)
		if err != nil {
			t.Errorf("Index %s not found: %v", idx, err)
		}
	}

	// Running it twice is harmless
	if err := InitSchema(db); err != nil {
		t.Errorf("second InitSchema failed: %v", err)
	}
}

func TestSchemaRejectsUnknownStage(t *testing.T) {
	db := openMemory(t)

	_, err := db.Exec("INSERT INTO prospects (company_name, stage) VALUES ('Acme', 'shipped')")
	if err == nil {
		t.Error("expected CHECK constraint to reject unknown stage")
	}
}

func TestSchemaRejectsBlankContactName(t *testing.T) {
	db := openMemory(t)

	if _, err := db.Exec("INSERT INTO prospects (company_name, stage) VALUES ('Acme', 'prospection')"); err != nil {
		t.Fatalf("insert prospect: %v", err)
	}
	if _, err := db.Exec("INSERT INTO contacts (prospect_id, name) VALUES (1, '   ')"); err == nil {
		t.Error("expected CHECK constraint to reject blank name")
	}
}

func TestSchemaCascadesProspectDelete(t *testing.T) {
	db := openMemory(t)

	stmts := []string{
		"INSERT INTO prospects (company_name, stage) VALUES ('Acme', 'prospection')",
		"INSERT INTO contacts (prospect_id, name) VALUES (1, 'Alice')",
		"INSERT INTO samples (prospect_id, product) VALUES (1, 'Inuline')",
		"INSERT INTO activities (prospect_id, type, date) VALUES (1, 'Note', '2025-03-01')",
		"DELETE FROM prospects WHERE id = 1",
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}

	for _, table := range []string{"contacts", "samples", "activities"} {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s: expected cascade delete, found %d rows", table, n)
		}
	}
}

func TestSchemaRejectsOrphans(t *testing.T) {
	db := openMemory(t)

	if _, err := db.Exec("INSERT INTO samples (prospect_id, product) VALUES (99, 'Inuline')"); err == nil {
		t.Error("expected foreign key to reject orphan sample")
	}
}

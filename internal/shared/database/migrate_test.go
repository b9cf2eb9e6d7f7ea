package database

import (
	"io/fs"
	"strings"
	"testing"
)

// TestSchemaCascadesFromOwner tests that every record table is wiped when
// its owning user row is removed
func TestSchemaCascadesFromOwner(t *testing.T) {
	content, err := fs.ReadFile(migrationsFS, "migrations/0001_init.sql")
	if err != nil {
		t.Fatalf("Failed to read initial migration: %v", err)
	}
	schema := string(content)

	tables := []string{
		"family_members",
		"medical_contacts",
		"conditions",
		"medications",
		"medical_referrals",
		"follow_up_tasks",
		"ai_intakes",
	}

	for _, table := range tables {
		t.Run(table, func(t *testing.T) {
			idx := strings.Index(schema, "CREATE TABLE IF NOT EXISTS "+table)
			if idx < 0 {
				t.Fatalf("Expected schema to create %s", table)
			}

			body := schema[idx:]
			if end := strings.Index(body, ");"); end >= 0 {
				body = body[:end]
			}

			if !strings.Contains(body, "user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE") {
				t.Errorf("Expected %s.user_id to cascade from users", table)
			}
		})
	}
}

// TestMigrationFilesOrdered tests that migrations carry sortable version
// prefixes so they apply in a deterministic order
func TestMigrationFilesOrdered(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("Expected at least one migration")
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".sql") {
			t.Errorf("Expected .sql migration, got %s", name)
		}
		if len(name) < 5 || name[4] != '_' {
			t.Errorf("Expected NNNN_ version prefix, got %s", name)
		}
	}
}

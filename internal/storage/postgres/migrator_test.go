package postgres

import (
	"strings"
	"testing"
	"testing/fstest"
)

func migrationFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys["sql/migrations/"+name] = &fstest.MapFile{Data: []byte(body)}
	}
	return fsys
}

func TestLoadMigrations_SortedByVersion(t *testing.T) {
	t.Parallel()

	fsys := migrationFS(map[string]string{
		"0002_products.up.sql":    "CREATE TABLE demo_products (id TEXT);",
		"0002_products.down.sql":  "DROP TABLE IF EXISTS demo_products;",
		"0001_customers.up.sql":   "CREATE TABLE demo_customers (id TEXT);",
		"0001_customers.down.sql": "DROP TABLE IF EXISTS demo_customers;",
	})

	migrations, err := loadMigrations(fsys)
	if err != nil {
		t.Fatalf("loadMigrations failed: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}

	if migrations[0].Version != 1 || migrations[0].Name != "customers" {
		t.Fatalf("unexpected first migration: %+v", migrations[0])
	}
	if migrations[1].Version != 2 || migrations[1].Name != "products" {
		t.Fatalf("unexpected second migration: %+v", migrations[1])
	}
	if !strings.Contains(migrations[0].UpSQL, "demo_customers") {
		t.Fatalf("unexpected up script: %s", migrations[0].UpSQL)
	}
}

func TestLoadMigrations_MissingDown(t *testing.T) {
	t.Parallel()

	fsys := migrationFS(map[string]string{
		"0001_customers.up.sql": "CREATE TABLE demo_customers (id TEXT);",
	})

	_, err := loadMigrations(fsys)
	if err == nil {
		t.Fatal("expected error for missing down migration")
	}
	if !strings.Contains(err.Error(), "both up and down") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadMigrations_InvalidFilename(t *testing.T) {
	t.Parallel()

	fsys := migrationFS(map[string]string{
		"not_a_migration.sql": "SELECT 1;",
	})

	if _, err := loadMigrations(fsys); err == nil {
		t.Fatal("expected error for invalid migration file name")
	}
}

func TestLoadMigrations_EmptyBody(t *testing.T) {
	t.Parallel()

	fsys := migrationFS(map[string]string{
		"0001_customers.up.sql":   "   \n",
		"0001_customers.down.sql": "DROP TABLE IF EXISTS demo_customers;",
	})

	if _, err := loadMigrations(fsys); err == nil {
		t.Fatal("expected error for empty migration body")
	}
}

func TestLoadMigrations_NameMismatch(t *testing.T) {
	t.Parallel()

	fsys := migrationFS(map[string]string{
		"0001_customers.up.sql": "CREATE TABLE demo_customers (id TEXT);",
		"0001_clients.down.sql": "DROP TABLE IF EXISTS demo_customers;",
	})

	_, err := loadMigrations(fsys)
	if err == nil {
		t.Fatal("expected error for mismatched migration names")
	}
	if !strings.Contains(err.Error(), "mismatch") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadMigrations_EmptyFS(t *testing.T) {
	t.Parallel()

	if _, err := loadMigrations(fstest.MapFS{}); err == nil {
		t.Fatal("expected error for empty migrations directory")
	}
}

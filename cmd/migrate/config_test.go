package main

import (
	"os"
	"testing"
)

func TestMigrationsDir_EnvOverride(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "/custom/migrations")

	if got := migrationsDir(); got != "/custom/migrations" {
		t.Fatalf("expected MIGRATIONS_DIR override, got %q", got)
	}
}

func TestMigrationsDir_Default(t *testing.T) {
	_ = os.Unsetenv("MIGRATIONS_DIR")

	if got := migrationsDir(); got != "db/migrations" {
		t.Fatalf("expected default migrations dir, got %q", got)
	}
}

func TestDSN(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://x@db/showcase")
	if got := dsn(); got != "postgres://x@db/showcase" {
		t.Fatalf("expected DB_DSN, got %q", got)
	}
}

func TestRun_CreateRequiresName(t *testing.T) {
	if err := run("create", "", "", t.TempDir()); err == nil {
		t.Fatal("expected error for create without name")
	}
}

func TestRun_Create(t *testing.T) {
	dir := t.TempDir()
	if err := run("create", "add_index", "", dir); err != nil {
		t.Fatalf("create: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected one migration file, got %d", len(entries))
	}
}

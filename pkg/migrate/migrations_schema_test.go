package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const migrationsDir = "../../migrations"

func TestInitSchemaMigrationContainsCoreTables(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join(migrationsDir, "*_init_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no init schema migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE clients",
		"CREATE TABLE addresses",
		"CREATE TABLE suppliers",
		"CREATE TABLE products",
		"CREATE TABLE stock_levels",
		"CREATE TABLE stock_movements",
		"CREATE TABLE supplier_invoices",
		"CREATE TABLE incoming_deliveries",
		"CREATE TABLE orders",
		"CREATE TABLE order_lines",
		"idx_supplier_invoice_reference",
		"idx_stock_movement_product_date",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := ValidateDir(migrationsDir); err != nil {
		t.Fatalf("shipped migrations failed validation: %v", err)
	}
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "init.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write migration: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected error for unversioned filename")
	}
}

func TestValidateDirRejectsMissingDownMarker(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "20250101000000_broken.sql"), []byte("-- +goose Up\nSELECT 1;\n"), 0o644); err != nil {
		t.Fatalf("write migration: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected error for missing down marker")
	}
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Stock  Checks!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_stock_checks.sql") {
		t.Fatalf("unexpected migration filename: %s", path)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("created migration failed validation: %v", err)
	}
}

func TestCreateSQLMigrationRejectsEmptyName(t *testing.T) {
	if _, err := CreateSQLMigration(t.TempDir(), "!!!"); err == nil {
		t.Fatal("expected error for name with no usable characters")
	}
}

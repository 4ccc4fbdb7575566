package database

import (
	"strings"
	"testing"
)

func TestMigrationSource_ParsesEmbeddedFiles(t *testing.T) {
	migrations, err := MigrationSource().FindMigrations()
	if err != nil {
		t.Fatalf("FindMigrations() error = %v", err)
	}
	if len(migrations) < 2 {
		t.Fatalf("got %d migrations, want at least 2", len(migrations))
	}
	if migrations[0].Id != "0001_init.sql" {
		t.Fatalf("first migration = %s", migrations[0].Id)
	}

	var sawSamples, sawReports bool
	for _, m := range migrations {
		if len(m.Up) == 0 || len(m.Down) == 0 {
			t.Fatalf("migration %s is missing an up or down section", m.Id)
		}
		up := strings.Join(m.Up, "\n")
		sawSamples = sawSamples || strings.Contains(up, "CREATE TABLE IF NOT EXISTS focus_samples")
		sawReports = sawReports || strings.Contains(up, "CREATE TABLE IF NOT EXISTS focus_reports")
	}
	if !sawSamples || !sawReports {
		t.Fatal("expected focus_samples and focus_reports tables in the schema")
	}
}

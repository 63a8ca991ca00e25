package database

import (
	"testing"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		if got := dialect.DriverName(); got != "sqlite3" {
			t.Errorf("DriverName() = %v, want sqlite3", got)
		}
	})

	t.Run("RewriteQuery", func(t *testing.T) {
		query := "SELECT id FROM members WHERE family_id = ? AND name = ?"
		if got := dialect.RewriteQuery(query); got != query {
			t.Errorf("RewriteQuery() changed query: %v", got)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		if got := dialect.MigrationsSubdir(); got != "sqlite" {
			t.Errorf("MigrationsSubdir() = %v, want sqlite", got)
		}
	})

	t.Run("DSN", func(t *testing.T) {
		got := dialect.DSN(DialectConfig{Path: "/tmp/app.db"})
		want := "/tmp/app.db?_foreign_keys=1&_journal_mode=WAL"
		if got != want {
			t.Errorf("DSN() = %v, want %v", got, want)
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		if got := dialect.DriverName(); got != "postgres" {
			t.Errorf("DriverName() = %v, want postgres", got)
		}
	})

	t.Run("RewriteQuery", func(t *testing.T) {
		got := dialect.RewriteQuery("SELECT id FROM members WHERE family_id = ? AND name = ?")
		want := "SELECT id FROM members WHERE family_id = $1 AND name = $2"
		if got != want {
			t.Errorf("RewriteQuery() = %v, want %v", got, want)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		if dialect.SupportsLastInsertId() {
			t.Error("SupportsLastInsertId() should return false for PostgreSQL")
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		if got := dialect.DriverName(); got != "mysql" {
			t.Errorf("DriverName() = %v, want mysql", got)
		}
	})

	t.Run("RewriteQuery", func(t *testing.T) {
		query := "INSERT INTO families (id, user_id) VALUES (?, ?)"
		if got := dialect.RewriteQuery(query); got != query {
			t.Errorf("RewriteQuery() changed query: %v", got)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		if got := dialect.MigrationsSubdir(); got != "mysql" {
			t.Errorf("MigrationsSubdir() = %v, want mysql", got)
		}
	})
}

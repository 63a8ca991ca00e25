package database

import (
	"path/filepath"
	"testing"
)

func TestInitializeAndMigrate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	tables := []string{
		"users", "families", "family_collaborators", "access_requests",
		"regions", "members", "member_regions",
		"spouse_relationships", "parent_child_relationships", "member_positions",
	}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("First migration run failed: %v", err)
	}
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Second migration run failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatalf("Failed to count migrations: %v", err)
	}
	if count == 0 {
		t.Error("No migrations were recorded")
	}
}

func TestCascadeDeleteOnFreshConnections(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	// Force every statement onto a brand-new connection so enforcement
	// cannot ride on state left behind by an earlier one
	db.SetMaxIdleConns(0)

	if _, err := db.Exec("INSERT INTO users (id, email, password_hash, name) VALUES (?, ?, ?, ?)",
		"u1", "cascade@example.com", "hash", "Cascade User"); err != nil {
		t.Fatalf("Failed to insert user: %v", err)
	}
	if _, err := db.Exec("INSERT INTO families (id, user_id, family_name) VALUES (?, ?, ?)",
		"f1", "u1", "Cascade"); err != nil {
		t.Fatalf("Failed to insert family: %v", err)
	}
	if _, err := db.Exec("INSERT INTO members (id, family_id, name, gender) VALUES (?, ?, ?, ?)",
		"m1", "f1", "Orphan Candidate", "female"); err != nil {
		t.Fatalf("Failed to insert member: %v", err)
	}

	if _, err := db.Exec("DELETE FROM families WHERE id = ?", "f1"); err != nil {
		t.Fatalf("Failed to delete family: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM members WHERE family_id = ?", "f1").Scan(&count); err != nil {
		t.Fatalf("Failed to count members: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected cascade to remove members, found %d orphan rows", count)
	}
}

func TestTransactionRollback(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	if _, err := tx.Exec("INSERT INTO users (id, email, password_hash, name) VALUES (?, ?, ?, ?)",
		"u1", "tx@example.com", "hash", "Tx User"); err != nil {
		t.Fatalf("Failed to insert in transaction: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Failed to rollback: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users WHERE id = ?", "u1").Scan(&count); err != nil {
		t.Fatalf("Failed to count users: %v", err)
	}
	if count != 0 {
		t.Error("Rolled-back insert is still visible")
	}
}

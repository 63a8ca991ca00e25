package importer

import (
	"path/filepath"
	"testing"

	"kintree/internal/database"
	"kintree/internal/models"
	"kintree/internal/repository"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *database.DB) *models.User {
	t.Helper()
	user, err := repository.NewUserRepository(db).CreateUser("importer@example.com", "hash", "Importer")
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func countRows(t *testing.T, db *database.DB, query string, args ...interface{}) int {
	t.Helper()
	var count int
	if err := db.QueryRow(query, args...).Scan(&count); err != nil {
		t.Fatalf("Count query failed: %v", err)
	}
	return count
}

func TestImportAllClones(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	engine := NewEngine(db)

	doc := &Document{
		FamilyName:  "Clones",
		OwnerUserID: user.ID,
		Members: []MemberRecord{
			{OriginalID: "a", SourceFamilyID: "src", Name: "Anna", Gender: "female"},
			{OriginalID: "b", SourceFamilyID: "src", Name: "Ben", Gender: "male"},
			{OriginalID: "c", SourceFamilyID: "src", Name: "Cara", Gender: "female"},
		},
		Spouses: []SpouseRecord{
			{Member1OriginalID: "a", Member2OriginalID: "b"},
		},
		ParentChild: []ParentChildPair{
			{ParentOriginalID: "a", ChildOriginalID: "c", RelationshipType: models.RelationshipMother},
		},
	}

	family, err := engine.Run(doc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if family.UserID != user.ID {
		t.Errorf("Family owner = %s, want %s", family.UserID, user.ID)
	}

	if got := countRows(t, db, "SELECT COUNT(*) FROM members WHERE family_id = ?", family.ID); got != 3 {
		t.Errorf("Expected 3 cloned members, got %d", got)
	}
	if got := countRows(t, db, "SELECT COUNT(*) FROM spouse_relationships"); got != 1 {
		t.Errorf("Expected 1 spouse relationship, got %d", got)
	}
	if got := countRows(t, db, "SELECT COUNT(*) FROM parent_child_relationships"); got != 1 {
		t.Errorf("Expected 1 parent-child relationship, got %d", got)
	}
	// Every clone gets a position in the new family
	if got := countRows(t, db, "SELECT COUNT(*) FROM member_positions WHERE family_id = ?", family.ID); got != 3 {
		t.Errorf("Expected 3 positions, got %d", got)
	}
}

func TestImportSkipsUnresolvableLinks(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	engine := NewEngine(db)

	doc := &Document{
		FamilyName:  "Gaps",
		OwnerUserID: user.ID,
		Members: []MemberRecord{
			{OriginalID: "a", SourceFamilyID: "src", Name: "Anna", Gender: "female"},
			{OriginalID: "b", SourceFamilyID: "src", Name: "Ben", Gender: "male"},
			// External member whose id does not exist in the store
			{OriginalID: "ghost", SourceFamilyID: "elsewhere", Name: "Ghost", Gender: "male"},
		},
		Spouses: []SpouseRecord{
			{Member1OriginalID: "a", Member2OriginalID: "ghost"},
		},
		ParentChild: []ParentChildPair{
			{ParentOriginalID: "ghost", ChildOriginalID: "b", RelationshipType: models.RelationshipFather},
		},
	}

	family, err := engine.Run(doc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got := countRows(t, db, "SELECT COUNT(*) FROM members WHERE family_id = ?", family.ID); got != 2 {
		t.Errorf("Expected 2 members (ghost skipped), got %d", got)
	}
	// No relationship may reference the skipped member
	if got := countRows(t, db, "SELECT COUNT(*) FROM spouse_relationships"); got != 0 {
		t.Errorf("Expected 0 spouse relationships, got %d", got)
	}
	if got := countRows(t, db, "SELECT COUNT(*) FROM parent_child_relationships"); got != 0 {
		t.Errorf("Expected 0 parent-child relationships, got %d", got)
	}
}

func TestImportDeduplicatesSpousePairs(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	engine := NewEngine(db)

	doc := &Document{
		FamilyName:  "Dedup",
		OwnerUserID: user.ID,
		Members: []MemberRecord{
			{OriginalID: "a", SourceFamilyID: "src", Name: "Anna", Gender: "female"},
			{OriginalID: "b", SourceFamilyID: "src", Name: "Ben", Gender: "male"},
		},
		Spouses: []SpouseRecord{
			{Member1OriginalID: "a", Member2OriginalID: "b"},
			{Member1OriginalID: "b", Member2OriginalID: "a"},
			{Member1OriginalID: "a", Member2OriginalID: "b"},
		},
	}

	if _, err := engine.Run(doc); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got := countRows(t, db, "SELECT COUNT(*) FROM spouse_relationships"); got != 1 {
		t.Errorf("Expected exactly 1 spouse relationship, got %d", got)
	}
}

func TestImportLinksExistingMembers(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	engine := NewEngine(db)

	// Seed an existing family with one member
	existingFamily, err := repository.NewFamilyRepository(db).CreateFamily(user.ID, "Existing", nil)
	if err != nil {
		t.Fatalf("Failed to create existing family: %v", err)
	}
	existing := &models.Member{FamilyID: existingFamily.ID, Name: "Elder", Gender: "male"}
	if err := repository.NewMemberRepository(db).CreateMember(existing); err != nil {
		t.Fatalf("Failed to create existing member: %v", err)
	}

	doc := &Document{
		FamilyName:  "Linked",
		OwnerUserID: user.ID,
		Regions: []RegionRecord{
			// Region built to represent the external family
			{OriginalID: "r1", Name: "Elders", LinkedFamilyID: &existingFamily.ID},
		},
		Members: []MemberRecord{
			{OriginalID: "a", SourceFamilyID: "src", Name: "Anna", Gender: "female"},
			// External member referencing the existing row; no explicit region ids
			{OriginalID: existing.ID, SourceFamilyID: existingFamily.ID, Name: "Elder", Gender: "male"},
		},
		Spouses: []SpouseRecord{
			{Member1OriginalID: "a", Member2OriginalID: existing.ID},
		},
	}

	family, err := engine.Run(doc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// The existing member was linked, not cloned
	if got := countRows(t, db, "SELECT COUNT(*) FROM members WHERE family_id = ?", family.ID); got != 1 {
		t.Errorf("Expected 1 cloned member, got %d", got)
	}
	if got := countRows(t, db, "SELECT COUNT(*) FROM members WHERE id = ?", existing.ID); got != 1 {
		t.Errorf("Existing member row missing")
	}

	// Auto-linked into the region representing their home family
	if got := countRows(t, db,
		"SELECT COUNT(*) FROM member_regions mr INNER JOIN regions r ON r.id = mr.region_id WHERE mr.member_id = ? AND r.family_id = ?",
		existing.ID, family.ID); got != 1 {
		t.Errorf("Expected the existing member to be auto-linked into the new region, got %d rows", got)
	}

	// A position scoped to the new family was created
	if got := countRows(t, db, "SELECT COUNT(*) FROM member_positions WHERE member_id = ? AND family_id = ?",
		existing.ID, family.ID); got != 1 {
		t.Errorf("Expected a position for the linked member in the new family, got %d", got)
	}

	// The spouse relationship reaches the linked member
	if got := countRows(t, db, "SELECT COUNT(*) FROM spouse_relationships WHERE member1_id != ? AND member2_id = ?",
		existing.ID, existing.ID); got != 1 {
		t.Errorf("Expected a spouse relationship ending at the linked member, got %d", got)
	}
}

func TestImportRollsBackOnStorageError(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db)
	engine := NewEngine(db)

	// Sabotage a table touched late in the pipeline
	if _, err := db.Exec("DROP TABLE member_positions"); err != nil {
		t.Fatalf("Failed to drop table: %v", err)
	}

	doc := &Document{
		FamilyName:  "Doomed",
		OwnerUserID: user.ID,
		Members: []MemberRecord{
			{OriginalID: "a", SourceFamilyID: "src", Name: "Anna", Gender: "female"},
		},
	}

	if _, err := engine.Run(doc); err == nil {
		t.Fatal("Expected an error from the sabotaged import")
	}

	// Nothing from the failed import may be visible
	if got := countRows(t, db, "SELECT COUNT(*) FROM families"); got != 0 {
		t.Errorf("Expected 0 families after rollback, got %d", got)
	}
	if got := countRows(t, db, "SELECT COUNT(*) FROM members"); got != 0 {
		t.Errorf("Expected 0 members after rollback, got %d", got)
	}
}

func TestDetectSourceFamilyMajority(t *testing.T) {
	members := []MemberRecord{
		{OriginalID: "1", SourceFamilyID: "f1"},
		{OriginalID: "2", SourceFamilyID: "f2"},
		{OriginalID: "3", SourceFamilyID: "f1"},
		{OriginalID: "4", SourceFamilyID: ""},
	}
	if got := detectSourceFamily(members); got != "f1" {
		t.Errorf("detectSourceFamily = %q, want f1", got)
	}
}

package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"kintree/internal/database"
	"kintree/internal/graph"
	"kintree/internal/importer"
	"kintree/internal/models"
	"kintree/internal/repository"
)

type services struct {
	db            *database.DB
	auth          *AuthService
	families      *FamilyService
	members       *MemberService
	regions       *RegionService
	relationships *RelationshipService
	imports       *ImportService
}

func newServices(t *testing.T) *services {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	collabRepo := repository.NewCollaboratorRepository(db)
	requestRepo := repository.NewAccessRequestRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	regionRepo := repository.NewRegionRepository(db)
	relRepo := repository.NewRelationshipRepository(db)
	posRepo := repository.NewPositionRepository(db)

	email, err := NewEmailService("eu-west-1", "", "", "http://localhost")
	if err != nil {
		t.Fatalf("Failed to create email service: %v", err)
	}

	auth := NewAuthService(userRepo, "test-secret", time.Hour)
	families := NewFamilyService(familyRepo, collabRepo, requestRepo, userRepo, email)
	members := NewMemberService(memberRepo, posRepo, regionRepo, families)
	regions := NewRegionService(regionRepo, families)
	assembler := graph.NewAssembler(memberRepo, regionRepo, relRepo, posRepo)
	relationships := NewRelationshipService(relRepo, memberRepo, assembler, families)
	imports := NewImportService(importer.NewEngine(db), NewPresetService(t.TempDir()))

	return &services{
		db:            db,
		auth:          auth,
		families:      families,
		members:       members,
		regions:       regions,
		relationships: relationships,
		imports:       imports,
	}
}

func (s *services) user(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := s.auth.Register(email, "password123", "Test User")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return user
}

func TestAuthRoundTrip(t *testing.T) {
	s := newServices(t)

	user, err := s.auth.Register("alice@example.com", "password123", "Alice")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Duplicate registration is rejected
	if _, err := s.auth.Register("alice@example.com", "password123", "Alice"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Expected ErrEmailTaken, got %v", err)
	}

	// Wrong password is rejected
	if _, _, err := s.auth.Login("alice@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}

	token, loggedIn, err := s.auth.Login("alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("Login returned user %s, want %s", loggedIn.ID, user.ID)
	}

	validated, err := s.auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if validated.ID != user.ID {
		t.Errorf("Token resolved to user %s, want %s", validated.ID, user.ID)
	}

	if _, err := s.auth.ValidateToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestFamilyRoles(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	owner := s.user(t, "owner@example.com")
	editor := s.user(t, "editor@example.com")
	stranger := s.user(t, "stranger@example.com")

	family, err := s.families.CreateFamily(owner.ID, "Hale", nil)
	if err != nil {
		t.Fatalf("CreateFamily failed: %v", err)
	}

	// Strangers see nothing
	if _, _, err := s.families.GetFamily(stranger.ID, family.ID); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied for stranger, got %v", err)
	}

	// Invite by email
	if _, _, err := s.families.InviteCollaborator(ctx, owner.ID, family.ID, "editor@example.com", models.RoleEditor); err != nil {
		t.Fatalf("InviteCollaborator failed: %v", err)
	}
	_, role, err := s.families.GetFamily(editor.ID, family.ID)
	if err != nil {
		t.Fatalf("GetFamily failed for editor: %v", err)
	}
	if role != models.RoleEditor {
		t.Errorf("Expected editor role, got %s", role)
	}

	// Editors cannot invite
	if _, _, err := s.families.InviteCollaborator(ctx, editor.ID, family.ID, "stranger@example.com", models.RoleViewer); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied for editor invite, got %v", err)
	}

	// Only the owner can delete
	if err := s.families.DeleteFamily(editor.ID, family.ID); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied for editor delete, got %v", err)
	}
	if err := s.families.DeleteFamily(owner.ID, family.ID); err != nil {
		t.Errorf("Owner delete failed: %v", err)
	}
}

func TestAccessRequestFlow(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	owner := s.user(t, "owner@example.com")
	requester := s.user(t, "requester@example.com")

	family, err := s.families.CreateFamily(owner.ID, "Hale", nil)
	if err != nil {
		t.Fatalf("CreateFamily failed: %v", err)
	}

	request, err := s.families.RequestAccess(requester.ID, family.ID)
	if err != nil {
		t.Fatalf("RequestAccess failed: %v", err)
	}

	// Duplicate pending requests are rejected
	if _, err := s.families.RequestAccess(requester.ID, family.ID); !errors.Is(err, ErrAlreadyRequested) {
		t.Errorf("Expected ErrAlreadyRequested, got %v", err)
	}

	// Only reviewers can decide
	if _, err := s.families.DecideAccessRequest(ctx, requester.ID, request.ID, true); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied for requester decision, got %v", err)
	}

	decided, err := s.families.DecideAccessRequest(ctx, owner.ID, request.ID, true)
	if err != nil {
		t.Fatalf("DecideAccessRequest failed: %v", err)
	}
	if decided.Status != models.AccessApproved {
		t.Errorf("Expected approved status, got %s", decided.Status)
	}

	// Approval grants the editor role
	_, role, err := s.families.GetFamily(requester.ID, family.ID)
	if err != nil {
		t.Fatalf("GetFamily failed after approval: %v", err)
	}
	if role != models.RoleEditor {
		t.Errorf("Expected editor role after approval, got %s", role)
	}

	// A decided request cannot be decided again
	if _, err := s.families.DecideAccessRequest(ctx, owner.ID, request.ID, false); !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("Expected ErrRequestNotFound for re-decision, got %v", err)
	}
}

func TestRegionSelfLinkRejected(t *testing.T) {
	s := newServices(t)

	owner := s.user(t, "owner@example.com")
	family, err := s.families.CreateFamily(owner.ID, "Hale", nil)
	if err != nil {
		t.Fatalf("CreateFamily failed: %v", err)
	}

	region := &models.Region{FamilyID: family.ID, Name: "Loop", LinkedFamilyID: &family.ID}
	if _, err := s.regions.CreateRegion(owner.ID, region, nil); !errors.Is(err, ErrRegionSelfLink) {
		t.Errorf("Expected ErrRegionSelfLink, got %v", err)
	}
}

func TestCreateRegionSeedsMembership(t *testing.T) {
	s := newServices(t)

	owner := s.user(t, "owner@example.com")
	family, err := s.families.CreateFamily(owner.ID, "Hale", nil)
	if err != nil {
		t.Fatalf("CreateFamily failed: %v", err)
	}
	other, err := s.families.CreateFamily(owner.ID, "Other", nil)
	if err != nil {
		t.Fatalf("CreateFamily failed: %v", err)
	}

	alice, err := s.members.CreateMember(owner.ID, &models.Member{FamilyID: family.ID, Name: "Alice", Gender: "female"}, nil)
	if err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}
	outsider, err := s.members.CreateMember(owner.ID, &models.Member{FamilyID: other.ID, Name: "Outsider", Gender: "male"}, nil)
	if err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}

	region, err := s.regions.CreateRegion(owner.ID,
		&models.Region{FamilyID: family.ID, Name: "Founders"},
		[]string{alice.ID, outsider.ID})
	if err != nil {
		t.Fatalf("CreateRegion failed: %v", err)
	}

	_, memberIDs, err := s.regions.GetRegion(owner.ID, region.ID)
	if err != nil {
		t.Fatalf("GetRegion failed: %v", err)
	}
	// The outsider belongs to a different family and is dropped
	if len(memberIDs) != 1 || memberIDs[0] != alice.ID {
		t.Errorf("Region membership = %v, want [%s]", memberIDs, alice.ID)
	}
}

func TestCreateMemberAttachesRegions(t *testing.T) {
	s := newServices(t)

	owner := s.user(t, "owner@example.com")
	family, err := s.families.CreateFamily(owner.ID, "Hale", nil)
	if err != nil {
		t.Fatalf("CreateFamily failed: %v", err)
	}
	other, err := s.families.CreateFamily(owner.ID, "Other", nil)
	if err != nil {
		t.Fatalf("CreateFamily failed: %v", err)
	}

	home, err := s.regions.CreateRegion(owner.ID, &models.Region{FamilyID: family.ID, Name: "Home"}, nil)
	if err != nil {
		t.Fatalf("CreateRegion failed: %v", err)
	}
	foreign, err := s.regions.CreateRegion(owner.ID, &models.Region{FamilyID: other.ID, Name: "Foreign"}, nil)
	if err != nil {
		t.Fatalf("CreateRegion failed: %v", err)
	}

	member, err := s.members.CreateMember(owner.ID,
		&models.Member{FamilyID: family.ID, Name: "Alice", Gender: "female"},
		[]string{home.ID, foreign.ID, "no-such-region"})
	if err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}

	_, homeMembers, err := s.regions.GetRegion(owner.ID, home.ID)
	if err != nil {
		t.Fatalf("GetRegion failed: %v", err)
	}
	if len(homeMembers) != 1 || homeMembers[0] != member.ID {
		t.Errorf("Home region membership = %v, want [%s]", homeMembers, member.ID)
	}

	// The foreign-family region stays empty
	_, foreignMembers, err := s.regions.GetRegion(owner.ID, foreign.ID)
	if err != nil {
		t.Fatalf("GetRegion failed: %v", err)
	}
	if len(foreignMembers) != 0 {
		t.Errorf("Foreign region membership = %v, want empty", foreignMembers)
	}
}

func TestDuplicateRelationshipsConflict(t *testing.T) {
	s := newServices(t)

	owner := s.user(t, "owner@example.com")
	family, err := s.families.CreateFamily(owner.ID, "Hale", nil)
	if err != nil {
		t.Fatalf("CreateFamily failed: %v", err)
	}

	alice, err := s.members.CreateMember(owner.ID, &models.Member{FamilyID: family.ID, Name: "Alice", Gender: "female"}, nil)
	if err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}
	bob, err := s.members.CreateMember(owner.ID, &models.Member{FamilyID: family.ID, Name: "Bob", Gender: "male"}, nil)
	if err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}

	if _, err := s.relationships.CreateSpouse(owner.ID, alice.ID, bob.ID, nil); err != nil {
		t.Fatalf("CreateSpouse failed: %v", err)
	}
	// Same pair in the reverse orientation conflicts
	if _, err := s.relationships.CreateSpouse(owner.ID, bob.ID, alice.ID, nil); !errors.Is(err, ErrDuplicateSpouse) {
		t.Errorf("Expected ErrDuplicateSpouse, got %v", err)
	}

	if _, err := s.relationships.CreateParentChild(owner.ID, alice.ID, bob.ID, models.RelationshipMother); err != nil {
		t.Fatalf("CreateParentChild failed: %v", err)
	}
	if _, err := s.relationships.CreateParentChild(owner.ID, alice.ID, bob.ID, models.RelationshipMother); !errors.Is(err, ErrDuplicateParentChild) {
		t.Errorf("Expected ErrDuplicateParentChild, got %v", err)
	}
	if _, err := s.relationships.CreateParentChild(owner.ID, alice.ID, bob.ID, "uncle"); !errors.Is(err, ErrInvalidRelType) {
		t.Errorf("Expected ErrInvalidRelType, got %v", err)
	}
}

func TestImportOverridesOwner(t *testing.T) {
	s := newServices(t)

	caller := s.user(t, "caller@example.com")
	doc := &importer.Document{
		FamilyName:  "Imported",
		OwnerUserID: "somebody-else",
		Members: []importer.MemberRecord{
			{OriginalID: "a", SourceFamilyID: "src", Name: "Anna", Gender: "female"},
		},
	}

	family, err := s.imports.Import(caller.ID, doc)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if family.UserID != caller.ID {
		t.Errorf("Imported family owned by %s, want the authenticated caller %s", family.UserID, caller.ID)
	}
}

func TestDeleteMemberRequiresEditor(t *testing.T) {
	s := newServices(t)

	owner := s.user(t, "owner@example.com")
	viewer := s.user(t, "viewer@example.com")

	family, err := s.families.CreateFamily(owner.ID, "Hale", nil)
	if err != nil {
		t.Fatalf("CreateFamily failed: %v", err)
	}
	member, err := s.members.CreateMember(owner.ID, &models.Member{FamilyID: family.ID, Name: "Alice", Gender: "female"}, nil)
	if err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}

	if _, _, err := s.families.InviteCollaborator(context.Background(), owner.ID, family.ID, "viewer@example.com", models.RoleViewer); err != nil {
		t.Fatalf("InviteCollaborator failed: %v", err)
	}

	if err := s.members.DeleteMember(viewer.ID, member.ID); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied for viewer delete, got %v", err)
	}
	if err := s.members.DeleteMember(owner.ID, member.ID); err != nil {
		t.Errorf("Owner delete failed: %v", err)
	}
}

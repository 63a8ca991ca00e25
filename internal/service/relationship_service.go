package service

import (
	"errors"

	"kintree/internal/graph"
	"kintree/internal/models"
	"kintree/internal/repository"
)

var (
	ErrRelationshipNotFound = errors.New("relationship not found")
	ErrDuplicateSpouse      = errors.New("spouse relationship already exists")
	ErrDuplicateParentChild = errors.New("parent-child relationship already exists")
	ErrInvalidRelType       = errors.New("relationship type must be father or mother")
)

// RelationshipService handles relationship CRUD and graph assembly
type RelationshipService struct {
	relRepo    *repository.RelationshipRepository
	memberRepo *repository.MemberRepository
	assembler  *graph.Assembler
	families   *FamilyService
}

// NewRelationshipService creates a new relationship service
func NewRelationshipService(relRepo *repository.RelationshipRepository, memberRepo *repository.MemberRepository,
	assembler *graph.Assembler, families *FamilyService) *RelationshipService {
	return &RelationshipService{
		relRepo:    relRepo,
		memberRepo: memberRepo,
		assembler:  assembler,
		families:   families,
	}
}

// CreateSpouse links two members as spouses. Both members must exist and
// the caller must be able to edit the first member's family.
func (s *RelationshipService) CreateSpouse(userID, member1ID, member2ID string, marriageDate *string) (*models.SpouseRelationship, error) {
	if _, err := s.requireEditableMember(userID, member1ID); err != nil {
		return nil, err
	}

	member2, err := s.memberRepo.GetMemberByID(member2ID)
	if err != nil {
		return nil, err
	}
	if member2 == nil {
		return nil, ErrMemberNotFound
	}

	exists, err := s.relRepo.SpouseExists(member1ID, member2ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateSpouse
	}

	return s.relRepo.CreateSpouse(member1ID, member2ID, marriageDate)
}

// UpdateSpouseDate updates a spouse relationship's marriage date
func (s *RelationshipService) UpdateSpouseDate(userID, relationshipID string, marriageDate *string) (*models.SpouseRelationship, error) {
	rel, err := s.relRepo.GetSpouse(relationshipID)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, ErrRelationshipNotFound
	}
	if _, err := s.requireEditableMember(userID, rel.Member1ID); err != nil {
		return nil, err
	}

	if err := s.relRepo.UpdateSpouseDate(relationshipID, marriageDate); err != nil {
		return nil, err
	}
	rel.MarriageDate = marriageDate
	return rel, nil
}

// DeleteSpouse removes a spouse relationship
func (s *RelationshipService) DeleteSpouse(userID, relationshipID string) error {
	rel, err := s.relRepo.GetSpouse(relationshipID)
	if err != nil {
		return err
	}
	if rel == nil {
		return ErrRelationshipNotFound
	}
	if _, err := s.requireEditableMember(userID, rel.Member1ID); err != nil {
		return err
	}

	deleted, err := s.relRepo.DeleteSpouse(relationshipID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrRelationshipNotFound
	}
	return nil
}

// CreateParentChild links a parent to a child
func (s *RelationshipService) CreateParentChild(userID, parentID, childID, relationshipType string) (*models.ParentChildRelationship, error) {
	if relationshipType != models.RelationshipFather && relationshipType != models.RelationshipMother {
		return nil, ErrInvalidRelType
	}

	if _, err := s.requireEditableMember(userID, parentID); err != nil {
		return nil, err
	}
	child, err := s.memberRepo.GetMemberByID(childID)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, ErrMemberNotFound
	}

	exists, err := s.relRepo.ParentChildExists(parentID, childID, relationshipType)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateParentChild
	}

	return s.relRepo.CreateParentChild(parentID, childID, relationshipType)
}

// DeleteParentChild removes a parent-child relationship
func (s *RelationshipService) DeleteParentChild(userID, relationshipID string) error {
	rel, err := s.relRepo.GetParentChild(relationshipID)
	if err != nil {
		return err
	}
	if rel == nil {
		return ErrRelationshipNotFound
	}
	if _, err := s.requireEditableMember(userID, rel.ParentID); err != nil {
		return err
	}

	deleted, err := s.relRepo.DeleteParentChild(relationshipID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrRelationshipNotFound
	}
	return nil
}

// AssembleGraph builds the full visualization graph for a family the user
// can see
func (s *RelationshipService) AssembleGraph(userID, familyID string) (*graph.Document, error) {
	if err := s.families.RequireViewer(userID, familyID); err != nil {
		return nil, err
	}
	return s.assembler.Assemble(familyID)
}

// requireEditableMember loads a member and verifies the caller can edit its
// home family
func (s *RelationshipService) requireEditableMember(userID, memberID string) (*models.Member, error) {
	member, err := s.memberRepo.GetMemberByID(memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	if err := s.families.RequireEditor(userID, member.FamilyID); err != nil {
		return nil, err
	}
	return member, nil
}

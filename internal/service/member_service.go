package service

import (
	"errors"
	"log"

	"kintree/internal/models"
	"kintree/internal/repository"
)

var ErrMemberNotFound = errors.New("member not found")

// MemberService handles member CRUD and bulk position updates
type MemberService struct {
	memberRepo   *repository.MemberRepository
	positionRepo *repository.PositionRepository
	regionRepo   *repository.RegionRepository
	families     *FamilyService
}

// NewMemberService creates a new member service
func NewMemberService(memberRepo *repository.MemberRepository, positionRepo *repository.PositionRepository,
	regionRepo *repository.RegionRepository, families *FamilyService) *MemberService {
	return &MemberService{
		memberRepo:   memberRepo,
		positionRepo: positionRepo,
		regionRepo:   regionRepo,
		families:     families,
	}
}

// CreateMember adds a member to a family the user can edit. Any regionIDs
// are attached as explicit memberships; regions not hosted by the member's
// family are skipped.
func (s *MemberService) CreateMember(userID string, member *models.Member, regionIDs []string) (*models.Member, error) {
	if member.Name == "" {
		return nil, errors.New("member name is required")
	}
	if err := s.families.RequireEditor(userID, member.FamilyID); err != nil {
		return nil, err
	}

	if err := s.memberRepo.CreateMember(member); err != nil {
		return nil, err
	}
	for _, regionID := range regionIDs {
		region, err := s.regionRepo.GetRegionByID(regionID)
		if err != nil {
			return nil, err
		}
		if region == nil || region.FamilyID != member.FamilyID {
			log.Printf("CreateMember: skipping region %s not hosted by family %s", regionID, member.FamilyID)
			continue
		}
		if err := s.regionRepo.AddMember(region.ID, member.ID); err != nil {
			return nil, err
		}
	}
	return member, nil
}

// GetMember retrieves a member visible to the user
func (s *MemberService) GetMember(userID, memberID string) (*models.Member, error) {
	member, err := s.memberRepo.GetMemberByID(memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	if err := s.families.RequireViewer(userID, member.FamilyID); err != nil {
		return nil, err
	}
	return member, nil
}

// ListMembers retrieves a page of a family's members
func (s *MemberService) ListMembers(userID, familyID string, limit, offset int) ([]models.Member, error) {
	if err := s.families.RequireViewer(userID, familyID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	return s.memberRepo.ListByFamily(familyID, limit, offset)
}

// UpdateMember updates a member's fields
func (s *MemberService) UpdateMember(userID string, member *models.Member) (*models.Member, error) {
	existing, err := s.memberRepo.GetMemberByID(member.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrMemberNotFound
	}
	if err := s.families.RequireEditor(userID, existing.FamilyID); err != nil {
		return nil, err
	}

	member.FamilyID = existing.FamilyID
	if err := s.memberRepo.UpdateMember(member); err != nil {
		return nil, err
	}
	return s.memberRepo.GetMemberByID(member.ID)
}

// DeleteMember deletes a member together with its region memberships;
// regions left empty are cleaned up
func (s *MemberService) DeleteMember(userID, memberID string) error {
	member, err := s.memberRepo.GetMemberByID(memberID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrMemberNotFound
	}
	if err := s.families.RequireEditor(userID, member.FamilyID); err != nil {
		return err
	}

	return s.memberRepo.DeleteMember(memberID)
}

// UpdateMembersPositions saves a batch of canvas coordinates for one
// family's graph as a single transaction
func (s *MemberService) UpdateMembersPositions(userID, familyID string, updates []repository.PositionUpdate) error {
	if err := s.families.RequireEditor(userID, familyID); err != nil {
		return err
	}
	return s.positionRepo.BulkUpsert(familyID, updates)
}

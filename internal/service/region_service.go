package service

import (
	"errors"

	"kintree/internal/models"
	"kintree/internal/repository"
)

var (
	ErrRegionNotFound = errors.New("region not found")
	ErrRegionSelfLink = errors.New("region cannot link its own family")
)

// RegionService handles region CRUD and explicit membership reconciliation
type RegionService struct {
	regionRepo *repository.RegionRepository
	families   *FamilyService
}

// NewRegionService creates a new region service
func NewRegionService(regionRepo *repository.RegionRepository, families *FamilyService) *RegionService {
	return &RegionService{regionRepo: regionRepo, families: families}
}

// CreateRegion creates a region in a family the user can edit. When
// memberIDs is non-empty the region's explicit membership is seeded with
// them; ids outside the host family are dropped.
func (s *RegionService) CreateRegion(userID string, region *models.Region, memberIDs []string) (*models.Region, error) {
	if region.Name == "" {
		return nil, errors.New("region name is required")
	}
	if region.LinkedFamilyID != nil && *region.LinkedFamilyID == region.FamilyID {
		return nil, ErrRegionSelfLink
	}
	if err := s.families.RequireEditor(userID, region.FamilyID); err != nil {
		return nil, err
	}

	if err := s.regionRepo.CreateRegion(region); err != nil {
		return nil, err
	}
	if len(memberIDs) > 0 {
		if err := s.regionRepo.SetMembers(region.ID, region.FamilyID, memberIDs); err != nil {
			return nil, err
		}
	}
	return region, nil
}

// GetRegion retrieves a region visible to the user, with its explicit
// member ids
func (s *RegionService) GetRegion(userID, regionID string) (*models.Region, []string, error) {
	region, err := s.regionRepo.GetRegionByID(regionID)
	if err != nil {
		return nil, nil, err
	}
	if region == nil {
		return nil, nil, ErrRegionNotFound
	}
	if err := s.families.RequireViewer(userID, region.FamilyID); err != nil {
		return nil, nil, err
	}

	memberIDs, err := s.regionRepo.MemberIDs(regionID)
	if err != nil {
		return nil, nil, err
	}
	return region, memberIDs, nil
}

// ListRegions retrieves all regions hosted by a family
func (s *RegionService) ListRegions(userID, familyID string) ([]models.Region, error) {
	if err := s.families.RequireViewer(userID, familyID); err != nil {
		return nil, err
	}
	return s.regionRepo.ListByFamily(familyID)
}

// UpdateRegion updates a region's fields and, when memberIDs is non-nil,
// reconciles its explicit membership to exactly that set
func (s *RegionService) UpdateRegion(userID string, region *models.Region, memberIDs []string) (*models.Region, error) {
	existing, err := s.regionRepo.GetRegionByID(region.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrRegionNotFound
	}
	if err := s.families.RequireEditor(userID, existing.FamilyID); err != nil {
		return nil, err
	}

	region.FamilyID = existing.FamilyID
	if region.LinkedFamilyID != nil && *region.LinkedFamilyID == region.FamilyID {
		return nil, ErrRegionSelfLink
	}
	if region.Color == "" {
		region.Color = existing.Color
	}

	if err := s.regionRepo.UpdateRegion(region); err != nil {
		return nil, err
	}

	if memberIDs != nil {
		if err := s.regionRepo.SetMembers(region.ID, region.FamilyID, memberIDs); err != nil {
			return nil, err
		}
	}

	return s.regionRepo.GetRegionByID(region.ID)
}

// DeleteRegion deletes a region
func (s *RegionService) DeleteRegion(userID, regionID string) error {
	region, err := s.regionRepo.GetRegionByID(regionID)
	if err != nil {
		return err
	}
	if region == nil {
		return ErrRegionNotFound
	}
	if err := s.families.RequireEditor(userID, region.FamilyID); err != nil {
		return err
	}

	return s.regionRepo.DeleteRegion(regionID)
}

// AddMember adds a member to a region's explicit membership
func (s *RegionService) AddMember(userID, regionID, memberID string) error {
	region, err := s.regionRepo.GetRegionByID(regionID)
	if err != nil {
		return err
	}
	if region == nil {
		return ErrRegionNotFound
	}
	if err := s.families.RequireEditor(userID, region.FamilyID); err != nil {
		return err
	}

	return s.regionRepo.AddMember(regionID, memberID)
}

// RemoveMember removes a member from a region's explicit membership
func (s *RegionService) RemoveMember(userID, regionID, memberID string) error {
	region, err := s.regionRepo.GetRegionByID(regionID)
	if err != nil {
		return err
	}
	if region == nil {
		return ErrRegionNotFound
	}
	if err := s.families.RequireEditor(userID, region.FamilyID); err != nil {
		return err
	}

	removed, err := s.regionRepo.RemoveMember(regionID, memberID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrMemberNotFound
	}
	return nil
}

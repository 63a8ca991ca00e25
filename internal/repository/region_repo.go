package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kintree/internal/database"
	"kintree/internal/models"
)

// RegionRepository handles database operations for regions and their
// explicit memberships
type RegionRepository struct {
	db *database.DB
}

// NewRegionRepository creates a new region repository
func NewRegionRepository(db *database.DB) *RegionRepository {
	return &RegionRepository{db: db}
}

// CreateRegion creates a region hosted by the given family
func (r *RegionRepository) CreateRegion(region *models.Region) error {
	if region.ID == "" {
		region.ID = uuid.NewString()
	}
	if region.Color == "" {
		region.Color = models.DefaultRegionColor
	}
	region.CreatedAt = time.Now()

	query := `
		INSERT INTO regions (id, family_id, name, description, color, linked_family_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, region.ID, region.FamilyID, region.Name,
		region.Description, region.Color, region.LinkedFamilyID)
	if err != nil {
		return fmt.Errorf("failed to create region: %w", err)
	}

	return nil
}

// GetRegionByID retrieves a region by ID
func (r *RegionRepository) GetRegionByID(regionID string) (*models.Region, error) {
	query := "SELECT id, family_id, name, description, color, linked_family_id, created_at FROM regions WHERE id = ?"
	region := &models.Region{}
	err := r.db.QueryRow(query, regionID).Scan(&region.ID, &region.FamilyID, &region.Name,
		&region.Description, &region.Color, &region.LinkedFamilyID, &region.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get region: %w", err)
	}

	return region, nil
}

// ListByFamily retrieves all regions hosted by a family
func (r *RegionRepository) ListByFamily(familyID string) ([]models.Region, error) {
	query := `
		SELECT id, family_id, name, description, color, linked_family_id, created_at
		FROM regions
		WHERE family_id = ?
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query regions: %w", err)
	}
	defer rows.Close()

	var regions []models.Region
	for rows.Next() {
		var region models.Region
		if err := rows.Scan(&region.ID, &region.FamilyID, &region.Name, &region.Description,
			&region.Color, &region.LinkedFamilyID, &region.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		regions = append(regions, region)
	}

	return regions, rows.Err()
}

// UpdateRegion updates a region's mutable fields
func (r *RegionRepository) UpdateRegion(region *models.Region) error {
	query := `
		UPDATE regions
		SET name = ?, description = ?, color = ?, linked_family_id = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query, region.Name, region.Description, region.Color,
		region.LinkedFamilyID, region.ID)
	if err != nil {
		return fmt.Errorf("failed to update region: %w", err)
	}
	return nil
}

// DeleteRegion deletes a region; membership rows cascade
func (r *RegionRepository) DeleteRegion(regionID string) error {
	if _, err := r.db.Exec("DELETE FROM regions WHERE id = ?", regionID); err != nil {
		return fmt.Errorf("failed to delete region: %w", err)
	}
	return nil
}

// MemberIDs retrieves the ids of members explicitly assigned to a region
func (r *RegionRepository) MemberIDs(regionID string) ([]string, error) {
	rows, err := r.db.Query("SELECT member_id FROM member_regions WHERE region_id = ?", regionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query region members: %w", err)
	}
	defer rows.Close()

	var memberIDs []string
	for rows.Next() {
		var memberID string
		if err := rows.Scan(&memberID); err != nil {
			return nil, fmt.Errorf("failed to scan member id: %w", err)
		}
		memberIDs = append(memberIDs, memberID)
	}

	return memberIDs, rows.Err()
}

// CountExplicitMembers counts a region's explicit membership rows
func (r *RegionRepository) CountExplicitMembers(regionID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM member_regions WHERE region_id = ?", regionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count region members: %w", err)
	}
	return count, nil
}

// AddMember adds an explicit membership row if it does not already exist
func (r *RegionRepository) AddMember(regionID, memberID string) error {
	var exists int
	err := r.db.QueryRow("SELECT COUNT(*) FROM member_regions WHERE region_id = ? AND member_id = ?",
		regionID, memberID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check region membership: %w", err)
	}
	if exists > 0 {
		return nil
	}

	if _, err := r.db.Exec("INSERT INTO member_regions (member_id, region_id) VALUES (?, ?)",
		memberID, regionID); err != nil {
		return fmt.Errorf("failed to add region member: %w", err)
	}
	return nil
}

// RemoveMember removes an explicit membership row. Returns false if the
// member was not in the region.
func (r *RegionRepository) RemoveMember(regionID, memberID string) (bool, error) {
	result, err := r.db.Exec("DELETE FROM member_regions WHERE region_id = ? AND member_id = ?",
		regionID, memberID)
	if err != nil {
		return false, fmt.Errorf("failed to remove region member: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check removed rows: %w", err)
	}
	return affected > 0, nil
}

// SetMembers reconciles a region's explicit membership with the given member
// ids in one transaction. Only members whose home family is the region's
// host family are accepted; other ids are silently dropped.
func (r *RegionRepository) SetMembers(regionID, hostFamilyID string, memberIDs []string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM member_regions WHERE region_id = ?", regionID); err != nil {
		return fmt.Errorf("failed to clear region members: %w", err)
	}

	for _, memberID := range memberIDs {
		var sameFamily int
		err := tx.QueryRow("SELECT COUNT(*) FROM members WHERE id = ? AND family_id = ?",
			memberID, hostFamilyID).Scan(&sameFamily)
		if err != nil {
			return fmt.Errorf("failed to check member family: %w", err)
		}
		if sameFamily == 0 {
			continue
		}

		if _, err := tx.Exec("INSERT INTO member_regions (member_id, region_id) VALUES (?, ?)",
			memberID, regionID); err != nil {
			return fmt.Errorf("failed to add region member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

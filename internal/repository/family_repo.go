package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kintree/internal/database"
	"kintree/internal/models"
)

// FamilyRepository handles database operations for families
type FamilyRepository struct {
	db *database.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// CreateFamily creates a new family owned by the given user
func (r *FamilyRepository) CreateFamily(userID, familyName string, description *string) (*models.Family, error) {
	family := &models.Family{
		ID:          uuid.NewString(),
		UserID:      userID,
		FamilyName:  familyName,
		Description: description,
		CreatedAt:   time.Now(),
	}

	query := "INSERT INTO families (id, user_id, family_name, description) VALUES (?, ?, ?, ?)"
	if _, err := r.db.Exec(query, family.ID, family.UserID, family.FamilyName, family.Description); err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	return family, nil
}

// GetFamilyByID retrieves a family by ID
func (r *FamilyRepository) GetFamilyByID(familyID string) (*models.Family, error) {
	query := "SELECT id, user_id, family_name, description, created_at FROM families WHERE id = ?"
	family := &models.Family{}
	err := r.db.QueryRow(query, familyID).Scan(
		&family.ID,
		&family.UserID,
		&family.FamilyName,
		&family.Description,
		&family.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}

	return family, nil
}

// GetVisibleFamilies retrieves all families a user owns or collaborates on
func (r *FamilyRepository) GetVisibleFamilies(userID string, limit, offset int) ([]models.Family, error) {
	query := `
		SELECT f.id, f.user_id, f.family_name, f.description, f.created_at
		FROM families f
		WHERE f.user_id = ?
		   OR f.id IN (SELECT fc.family_id FROM family_collaborators fc WHERE fc.user_id = ?)
		ORDER BY f.created_at DESC
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.Query(query, userID, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query families: %w", err)
	}
	defer rows.Close()

	var families []models.Family
	for rows.Next() {
		var family models.Family
		if err := rows.Scan(&family.ID, &family.UserID, &family.FamilyName,
			&family.Description, &family.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		families = append(families, family)
	}

	return families, rows.Err()
}

// UpdateFamily updates a family's name and description
func (r *FamilyRepository) UpdateFamily(family *models.Family) error {
	query := "UPDATE families SET family_name = ?, description = ? WHERE id = ?"
	if _, err := r.db.Exec(query, family.FamilyName, family.Description, family.ID); err != nil {
		return fmt.Errorf("failed to update family: %w", err)
	}
	return nil
}

// DeleteFamily deletes a family; members, regions and access records cascade
func (r *FamilyRepository) DeleteFamily(familyID string) error {
	query := "DELETE FROM families WHERE id = ?"
	if _, err := r.db.Exec(query, familyID); err != nil {
		return fmt.Errorf("failed to delete family: %w", err)
	}
	return nil
}

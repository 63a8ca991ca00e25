package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kintree/internal/database"
	"kintree/internal/models"
)

// RelationshipRepository handles database operations for spouse and
// parent-child relationships
type RelationshipRepository struct {
	db *database.DB
}

// NewRelationshipRepository creates a new relationship repository
func NewRelationshipRepository(db *database.DB) *RelationshipRepository {
	return &RelationshipRepository{db: db}
}

// CreateSpouse creates a spouse relationship between two members
func (r *RelationshipRepository) CreateSpouse(member1ID, member2ID string, marriageDate *string) (*models.SpouseRelationship, error) {
	rel := &models.SpouseRelationship{
		ID:           uuid.NewString(),
		Member1ID:    member1ID,
		Member2ID:    member2ID,
		MarriageDate: marriageDate,
		CreatedAt:    time.Now(),
	}

	query := "INSERT INTO spouse_relationships (id, member1_id, member2_id, marriage_date) VALUES (?, ?, ?, ?)"
	if _, err := r.db.Exec(query, rel.ID, rel.Member1ID, rel.Member2ID, rel.MarriageDate); err != nil {
		return nil, fmt.Errorf("failed to create spouse relationship: %w", err)
	}

	return rel, nil
}

// SpouseExists reports whether the two members are already linked as
// spouses, in either orientation
func (r *RelationshipRepository) SpouseExists(member1ID, member2ID string) (bool, error) {
	query := `
		SELECT COUNT(*) FROM spouse_relationships
		WHERE (member1_id = ? AND member2_id = ?) OR (member1_id = ? AND member2_id = ?)
	`
	var count int
	err := r.db.QueryRow(query, member1ID, member2ID, member2ID, member1ID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check spouse relationship: %w", err)
	}
	return count > 0, nil
}

// GetSpouse retrieves a spouse relationship by ID
func (r *RelationshipRepository) GetSpouse(relationshipID string) (*models.SpouseRelationship, error) {
	query := "SELECT id, member1_id, member2_id, marriage_date, created_at FROM spouse_relationships WHERE id = ?"
	rel := &models.SpouseRelationship{}
	err := r.db.QueryRow(query, relationshipID).Scan(&rel.ID, &rel.Member1ID, &rel.Member2ID,
		&rel.MarriageDate, &rel.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get spouse relationship: %w", err)
	}

	return rel, nil
}

// UpdateSpouseDate updates a spouse relationship's marriage date
func (r *RelationshipRepository) UpdateSpouseDate(relationshipID string, marriageDate *string) error {
	query := "UPDATE spouse_relationships SET marriage_date = ? WHERE id = ?"
	if _, err := r.db.Exec(query, marriageDate, relationshipID); err != nil {
		return fmt.Errorf("failed to update spouse relationship: %w", err)
	}
	return nil
}

// DeleteSpouse deletes a spouse relationship. Returns false if it did not exist.
func (r *RelationshipRepository) DeleteSpouse(relationshipID string) (bool, error) {
	result, err := r.db.Exec("DELETE FROM spouse_relationships WHERE id = ?", relationshipID)
	if err != nil {
		return false, fmt.Errorf("failed to delete spouse relationship: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check deleted rows: %w", err)
	}
	return affected > 0, nil
}

// ListSpousesTouching retrieves spouse relationships where at least one
// endpoint is in memberIDs
func (r *RelationshipRepository) ListSpousesTouching(memberIDs []string) ([]models.SpouseRelationship, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}

	ph := placeholders(len(memberIDs))
	query := "SELECT id, member1_id, member2_id, marriage_date, created_at FROM spouse_relationships " +
		"WHERE member1_id IN (" + ph + ") OR member2_id IN (" + ph + ")"
	args := append(stringArgs(memberIDs), stringArgs(memberIDs)...)
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query spouse relationships: %w", err)
	}
	defer rows.Close()

	var rels []models.SpouseRelationship
	for rows.Next() {
		var rel models.SpouseRelationship
		if err := rows.Scan(&rel.ID, &rel.Member1ID, &rel.Member2ID,
			&rel.MarriageDate, &rel.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan spouse relationship: %w", err)
		}
		rels = append(rels, rel)
	}

	return rels, rows.Err()
}

// CreateParentChild creates a parent-child relationship
func (r *RelationshipRepository) CreateParentChild(parentID, childID, relationshipType string) (*models.ParentChildRelationship, error) {
	rel := &models.ParentChildRelationship{
		ID:               uuid.NewString(),
		ParentID:         parentID,
		ChildID:          childID,
		RelationshipType: relationshipType,
		CreatedAt:        time.Now(),
	}

	query := "INSERT INTO parent_child_relationships (id, parent_id, child_id, relationship_type) VALUES (?, ?, ?, ?)"
	if _, err := r.db.Exec(query, rel.ID, rel.ParentID, rel.ChildID, rel.RelationshipType); err != nil {
		return nil, fmt.Errorf("failed to create parent-child relationship: %w", err)
	}

	return rel, nil
}

// ParentChildExists reports whether the exact (parent, child, type) triple
// already exists
func (r *RelationshipRepository) ParentChildExists(parentID, childID, relationshipType string) (bool, error) {
	query := "SELECT COUNT(*) FROM parent_child_relationships WHERE parent_id = ? AND child_id = ? AND relationship_type = ?"
	var count int
	err := r.db.QueryRow(query, parentID, childID, relationshipType).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check parent-child relationship: %w", err)
	}
	return count > 0, nil
}

// GetParentChild retrieves a parent-child relationship by ID
func (r *RelationshipRepository) GetParentChild(relationshipID string) (*models.ParentChildRelationship, error) {
	query := "SELECT id, parent_id, child_id, relationship_type, created_at FROM parent_child_relationships WHERE id = ?"
	rel := &models.ParentChildRelationship{}
	err := r.db.QueryRow(query, relationshipID).Scan(&rel.ID, &rel.ParentID, &rel.ChildID,
		&rel.RelationshipType, &rel.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get parent-child relationship: %w", err)
	}

	return rel, nil
}

// DeleteParentChild deletes a parent-child relationship. Returns false if it
// did not exist.
func (r *RelationshipRepository) DeleteParentChild(relationshipID string) (bool, error) {
	result, err := r.db.Exec("DELETE FROM parent_child_relationships WHERE id = ?", relationshipID)
	if err != nil {
		return false, fmt.Errorf("failed to delete parent-child relationship: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check deleted rows: %w", err)
	}
	return affected > 0, nil
}

// ListParentChildTouching retrieves parent-child relationships where at
// least one endpoint is in memberIDs
func (r *RelationshipRepository) ListParentChildTouching(memberIDs []string) ([]models.ParentChildRelationship, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}

	ph := placeholders(len(memberIDs))
	query := "SELECT id, parent_id, child_id, relationship_type, created_at FROM parent_child_relationships " +
		"WHERE parent_id IN (" + ph + ") OR child_id IN (" + ph + ")"
	args := append(stringArgs(memberIDs), stringArgs(memberIDs)...)
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query parent-child relationships: %w", err)
	}
	defer rows.Close()

	var rels []models.ParentChildRelationship
	for rows.Next() {
		var rel models.ParentChildRelationship
		if err := rows.Scan(&rel.ID, &rel.ParentID, &rel.ChildID,
			&rel.RelationshipType, &rel.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan parent-child relationship: %w", err)
		}
		rels = append(rels, rel)
	}

	return rels, rows.Err()
}

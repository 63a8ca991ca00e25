package repository

import (
	"database/sql"
	"fmt"
	"time"

	"kintree/internal/database"
	"kintree/internal/models"
)

// CollaboratorRepository handles database operations for family collaborators
type CollaboratorRepository struct {
	db *database.DB
}

// NewCollaboratorRepository creates a new collaborator repository
func NewCollaboratorRepository(db *database.DB) *CollaboratorRepository {
	return &CollaboratorRepository{db: db}
}

// UpsertCollaborator adds a user to a family or updates their existing role
func (r *CollaboratorRepository) UpsertCollaborator(familyID, userID, role string) (*models.FamilyCollaborator, error) {
	existing, err := r.GetCollaborator(familyID, userID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		query := "UPDATE family_collaborators SET role = ? WHERE family_id = ? AND user_id = ?"
		if _, err := r.db.Exec(query, role, familyID, userID); err != nil {
			return nil, fmt.Errorf("failed to update collaborator role: %w", err)
		}
		existing.Role = role
		return existing, nil
	}

	collab := &models.FamilyCollaborator{
		FamilyID:  familyID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now(),
	}
	query := "INSERT INTO family_collaborators (family_id, user_id, role) VALUES (?, ?, ?)"
	if _, err := r.db.Exec(query, familyID, userID, role); err != nil {
		return nil, fmt.Errorf("failed to add collaborator: %w", err)
	}

	return collab, nil
}

// GetCollaborator retrieves one collaborator record
func (r *CollaboratorRepository) GetCollaborator(familyID, userID string) (*models.FamilyCollaborator, error) {
	query := "SELECT family_id, user_id, role, created_at FROM family_collaborators WHERE family_id = ? AND user_id = ?"
	collab := &models.FamilyCollaborator{}
	err := r.db.QueryRow(query, familyID, userID).Scan(
		&collab.FamilyID, &collab.UserID, &collab.Role, &collab.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collaborator: %w", err)
	}

	return collab, nil
}

// ListCollaborators retrieves all collaborators of a family with user details
func (r *CollaboratorRepository) ListCollaborators(familyID string) ([]models.FamilyCollaborator, []models.User, error) {
	query := `
		SELECT fc.family_id, fc.user_id, fc.role, fc.created_at,
		       u.id, u.email, u.name, u.is_superuser, u.created_at, u.updated_at
		FROM family_collaborators fc
		INNER JOIN users u ON fc.user_id = u.id
		WHERE fc.family_id = ?
		ORDER BY fc.created_at ASC
	`
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query collaborators: %w", err)
	}
	defer rows.Close()

	var collabs []models.FamilyCollaborator
	var users []models.User
	for rows.Next() {
		var collab models.FamilyCollaborator
		var user models.User
		if err := rows.Scan(
			&collab.FamilyID, &collab.UserID, &collab.Role, &collab.CreatedAt,
			&user.ID, &user.Email, &user.Name, &user.IsSuperuser, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to scan collaborator: %w", err)
		}
		collabs = append(collabs, collab)
		users = append(users, user)
	}

	return collabs, users, rows.Err()
}

// RemoveCollaborator removes a user from a family. Returns false if the
// collaborator did not exist.
func (r *CollaboratorRepository) RemoveCollaborator(familyID, userID string) (bool, error) {
	query := "DELETE FROM family_collaborators WHERE family_id = ? AND user_id = ?"
	result, err := r.db.Exec(query, familyID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove collaborator: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check removed rows: %w", err)
	}
	return affected > 0, nil
}

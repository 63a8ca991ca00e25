package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kintree/internal/database"
	"kintree/internal/models"
)

// AccessRequestRepository handles database operations for access requests
type AccessRequestRepository struct {
	db *database.DB
}

// NewAccessRequestRepository creates a new access request repository
func NewAccessRequestRepository(db *database.DB) *AccessRequestRepository {
	return &AccessRequestRepository{db: db}
}

// CreateAccessRequest creates a pending access request
func (r *AccessRequestRepository) CreateAccessRequest(familyID, userID string) (*models.AccessRequest, error) {
	request := &models.AccessRequest{
		ID:        uuid.NewString(),
		FamilyID:  familyID,
		UserID:    userID,
		Status:    models.AccessPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := "INSERT INTO access_requests (id, family_id, user_id, status) VALUES (?, ?, ?, ?)"
	if _, err := r.db.Exec(query, request.ID, request.FamilyID, request.UserID, request.Status); err != nil {
		return nil, fmt.Errorf("failed to create access request: %w", err)
	}

	return request, nil
}

// GetAccessRequest retrieves an access request by ID
func (r *AccessRequestRepository) GetAccessRequest(requestID string) (*models.AccessRequest, error) {
	query := "SELECT id, family_id, user_id, status, created_at, updated_at FROM access_requests WHERE id = ?"
	return r.scanRequest(r.db.QueryRow(query, requestID))
}

// GetPendingRequest retrieves the pending request of a user for a family, if any
func (r *AccessRequestRepository) GetPendingRequest(familyID, userID string) (*models.AccessRequest, error) {
	query := `
		SELECT id, family_id, user_id, status, created_at, updated_at
		FROM access_requests
		WHERE family_id = ? AND user_id = ? AND status = ?
	`
	return r.scanRequest(r.db.QueryRow(query, familyID, userID, models.AccessPending))
}

// ListPendingForReviewer retrieves pending requests for every family the
// given user owns or administers
func (r *AccessRequestRepository) ListPendingForReviewer(userID string) ([]models.AccessRequest, error) {
	query := `
		SELECT ar.id, ar.family_id, ar.user_id, ar.status, ar.created_at, ar.updated_at
		FROM access_requests ar
		WHERE ar.status = ?
		  AND ar.family_id IN (
			SELECT f.id FROM families f WHERE f.user_id = ?
			UNION
			SELECT fc.family_id FROM family_collaborators fc WHERE fc.user_id = ? AND fc.role = ?
		  )
		ORDER BY ar.created_at ASC
	`
	rows, err := r.db.Query(query, models.AccessPending, userID, userID, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to query access requests: %w", err)
	}
	defer rows.Close()

	var requests []models.AccessRequest
	for rows.Next() {
		var request models.AccessRequest
		if err := rows.Scan(&request.ID, &request.FamilyID, &request.UserID,
			&request.Status, &request.CreatedAt, &request.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan access request: %w", err)
		}
		requests = append(requests, request)
	}

	return requests, rows.Err()
}

// UpdateStatus updates an access request's status
func (r *AccessRequestRepository) UpdateStatus(requestID, status string) error {
	query := "UPDATE access_requests SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, status, requestID); err != nil {
		return fmt.Errorf("failed to update access request: %w", err)
	}
	return nil
}

func (r *AccessRequestRepository) scanRequest(row *sql.Row) (*models.AccessRequest, error) {
	request := &models.AccessRequest{}
	err := row.Scan(&request.ID, &request.FamilyID, &request.UserID,
		&request.Status, &request.CreatedAt, &request.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get access request: %w", err)
	}
	return request, nil
}

package models

import "time"

// Collaborator roles, in increasing order of capability.
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
	RoleOwner  = "owner"
)

// Access request statuses.
const (
	AccessPending  = "pending"
	AccessApproved = "approved"
	AccessRejected = "rejected"
)

// Family is the root of a tree of members, regions and access records.
// Deleting a family cascades to everything it owns.
type Family struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	FamilyName  string    `json:"family_name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// FamilyCollaborator grants a user a role on a family they do not own
type FamilyCollaborator struct {
	FamilyID  string    `json:"family_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AccessRequest is a pending ask for collaborator access to a family
type AccessRequest struct {
	ID        string    `json:"id"`
	FamilyID  string    `json:"family_id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package service

import (
	"context"
	"errors"
	"log"

	"kintree/internal/models"
	"kintree/internal/repository"
)

var (
	ErrFamilyNotFound    = errors.New("family not found")
	ErrAccessDenied      = errors.New("access denied")
	ErrAlreadyRequested  = errors.New("access request already pending")
	ErrRequestNotFound   = errors.New("access request not found")
	ErrInvalidRole       = errors.New("invalid collaborator role")
	ErrCannotInviteOwner = errors.New("owner is already a member of the family")
)

// FamilyService handles family lifecycle, collaboration and access requests
type FamilyService struct {
	familyRepo  *repository.FamilyRepository
	collabRepo  *repository.CollaboratorRepository
	requestRepo *repository.AccessRequestRepository
	userRepo    *repository.UserRepository
	email       *EmailService
}

// NewFamilyService creates a new family service
func NewFamilyService(familyRepo *repository.FamilyRepository, collabRepo *repository.CollaboratorRepository,
	requestRepo *repository.AccessRequestRepository, userRepo *repository.UserRepository,
	email *EmailService) *FamilyService {
	return &FamilyService{
		familyRepo:  familyRepo,
		collabRepo:  collabRepo,
		requestRepo: requestRepo,
		userRepo:    userRepo,
		email:       email,
	}
}

// CreateFamily creates a family owned by the given user
func (s *FamilyService) CreateFamily(userID, familyName string, description *string) (*models.Family, error) {
	if familyName == "" {
		return nil, errors.New("family name is required")
	}
	return s.familyRepo.CreateFamily(userID, familyName, description)
}

// GetFamily retrieves a family the user can see
func (s *FamilyService) GetFamily(userID, familyID string) (*models.Family, string, error) {
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return nil, "", err
	}
	if family == nil {
		return nil, "", ErrFamilyNotFound
	}

	role, err := s.roleOn(userID, family)
	if err != nil {
		return nil, "", err
	}
	if role == "" {
		return nil, "", ErrAccessDenied
	}

	return family, role, nil
}

// ListFamilies retrieves all families the user owns or collaborates on
func (s *FamilyService) ListFamilies(userID string, limit, offset int) ([]models.Family, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	return s.familyRepo.GetVisibleFamilies(userID, limit, offset)
}

// UpdateFamily updates a family's name and description. Requires the admin
// role or ownership.
func (s *FamilyService) UpdateFamily(userID, familyID, familyName string, description *string) (*models.Family, error) {
	family, err := s.requireRole(userID, familyID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	if familyName != "" {
		family.FamilyName = familyName
	}
	if description != nil {
		family.Description = description
	}
	if err := s.familyRepo.UpdateFamily(family); err != nil {
		return nil, err
	}

	return family, nil
}

// DeleteFamily deletes a family. Only the owner can delete.
func (s *FamilyService) DeleteFamily(userID, familyID string) error {
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return err
	}
	if family == nil {
		return ErrFamilyNotFound
	}
	if family.UserID != userID {
		return ErrAccessDenied
	}

	return s.familyRepo.DeleteFamily(familyID)
}

// InviteCollaborator grants a user a role on a family by email. Requires
// the admin role or ownership. The invited user is notified by email.
func (s *FamilyService) InviteCollaborator(ctx context.Context, userID, familyID, email, role string) (*models.FamilyCollaborator, *models.User, error) {
	if !validRole(role) {
		return nil, nil, ErrInvalidRole
	}

	family, err := s.requireRole(userID, familyID, models.RoleAdmin)
	if err != nil {
		return nil, nil, err
	}

	invitee, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, nil, err
	}
	if invitee == nil {
		return nil, nil, ErrUserNotFound
	}
	if invitee.ID == family.UserID {
		return nil, nil, ErrCannotInviteOwner
	}

	collab, err := s.collabRepo.UpsertCollaborator(familyID, invitee.ID, role)
	if err != nil {
		return nil, nil, err
	}

	if s.email != nil {
		if err := s.email.SendInvitationEmail(ctx, invitee.Email, invitee.Name, family.FamilyName, role); err != nil {
			log.Printf("Failed to send invitation email to %s: %v", invitee.Email, err)
		}
	}

	return collab, invitee, nil
}

// ListCollaborators retrieves a family's collaborators with user details
func (s *FamilyService) ListCollaborators(userID, familyID string) ([]models.FamilyCollaborator, []models.User, error) {
	if _, _, err := s.GetFamily(userID, familyID); err != nil {
		return nil, nil, err
	}
	return s.collabRepo.ListCollaborators(familyID)
}

// RemoveCollaborator removes a user from a family. Requires the admin role
// or ownership; collaborators may also remove themselves.
func (s *FamilyService) RemoveCollaborator(userID, familyID, targetUserID string) error {
	if userID != targetUserID {
		if _, err := s.requireRole(userID, familyID, models.RoleAdmin); err != nil {
			return err
		}
	}

	removed, err := s.collabRepo.RemoveCollaborator(familyID, targetUserID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrUserNotFound
	}
	return nil
}

// RequestAccess files a pending access request for a family the user cannot
// yet see
func (s *FamilyService) RequestAccess(userID, familyID string) (*models.AccessRequest, error) {
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, ErrFamilyNotFound
	}

	role, err := s.roleOn(userID, family)
	if err != nil {
		return nil, err
	}
	if role != "" {
		return nil, ErrCannotInviteOwner
	}

	pending, err := s.requestRepo.GetPendingRequest(familyID, userID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, ErrAlreadyRequested
	}

	return s.requestRepo.CreateAccessRequest(familyID, userID)
}

// ListAccessRequests retrieves pending requests for every family the user
// owns or administers
func (s *FamilyService) ListAccessRequests(userID string) ([]models.AccessRequest, error) {
	return s.requestRepo.ListPendingForReviewer(userID)
}

// DecideAccessRequest approves or rejects a pending access request.
// Approval grants the editor role. The requester is notified by email.
func (s *FamilyService) DecideAccessRequest(ctx context.Context, userID, requestID string, approve bool) (*models.AccessRequest, error) {
	request, err := s.requestRepo.GetAccessRequest(requestID)
	if err != nil {
		return nil, err
	}
	if request == nil || request.Status != models.AccessPending {
		return nil, ErrRequestNotFound
	}

	family, err := s.requireRole(userID, request.FamilyID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	status := models.AccessRejected
	if approve {
		status = models.AccessApproved
		if _, err := s.collabRepo.UpsertCollaborator(request.FamilyID, request.UserID, models.RoleEditor); err != nil {
			return nil, err
		}
	}

	if err := s.requestRepo.UpdateStatus(requestID, status); err != nil {
		return nil, err
	}
	request.Status = status

	if s.email != nil {
		if requester, err := s.userRepo.GetUserByID(request.UserID); err == nil && requester != nil {
			if err := s.email.SendAccessDecisionEmail(ctx, requester.Email, requester.Name, family.FamilyName, approve); err != nil {
				log.Printf("Failed to send access decision email to %s: %v", requester.Email, err)
			}
		}
	}

	return request, nil
}

// RoleOn returns the user's role on a family, or "" when they have none
func (s *FamilyService) RoleOn(userID, familyID string) (string, error) {
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return "", err
	}
	if family == nil {
		return "", ErrFamilyNotFound
	}
	return s.roleOn(userID, family)
}

// RequireEditor verifies the user can modify a family's contents
func (s *FamilyService) RequireEditor(userID, familyID string) error {
	_, err := s.requireRole(userID, familyID, models.RoleEditor)
	return err
}

// RequireViewer verifies the user can see a family's contents
func (s *FamilyService) RequireViewer(userID, familyID string) error {
	_, _, err := s.GetFamily(userID, familyID)
	return err
}

func (s *FamilyService) roleOn(userID string, family *models.Family) (string, error) {
	if family.UserID == userID {
		return models.RoleOwner, nil
	}
	collab, err := s.collabRepo.GetCollaborator(family.ID, userID)
	if err != nil {
		return "", err
	}
	if collab == nil {
		return "", nil
	}
	return collab.Role, nil
}

// requireRole loads the family and verifies the user holds at least the
// given role on it
func (s *FamilyService) requireRole(userID, familyID, minimum string) (*models.Family, error) {
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, ErrFamilyNotFound
	}

	role, err := s.roleOn(userID, family)
	if err != nil {
		return nil, err
	}
	if !roleAtLeast(role, minimum) {
		return nil, ErrAccessDenied
	}

	return family, nil
}

var roleRank = map[string]int{
	models.RoleViewer: 1,
	models.RoleEditor: 2,
	models.RoleAdmin:  3,
	models.RoleOwner:  4,
}

func roleAtLeast(role, minimum string) bool {
	return roleRank[role] >= roleRank[minimum] && roleRank[role] > 0
}

func validRole(role string) bool {
	switch role {
	case models.RoleViewer, models.RoleEditor, models.RoleAdmin:
		return true
	}
	return false
}

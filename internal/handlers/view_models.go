package handlers

import (
	"kintree/internal/models"
)

// tokenResponse is returned by login endpoints
type tokenResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// familyWithRole pairs a family with the requesting user's role on it
type familyWithRole struct {
	models.Family
	Role string `json:"role"`
}

// collaboratorView flattens a collaborator row with its user's details
type collaboratorView struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

func newCollaboratorViews(collabs []models.FamilyCollaborator, users []models.User) []collaboratorView {
	views := make([]collaboratorView, 0, len(collabs))
	for i, collab := range collabs {
		views = append(views, collaboratorView{
			UserID: collab.UserID,
			Email:  users[i].Email,
			Name:   users[i].Name,
			Role:   collab.Role,
		})
	}
	return views
}

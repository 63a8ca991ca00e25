package handlers

import (
	"encoding/json"
	"net/http"

	"kintree/internal/importer"
	"kintree/internal/service"
)

// FamilyHandler handles family CRUD, collaboration and import endpoints
type FamilyHandler struct {
	familyService *service.FamilyService
	importService *service.ImportService
	presetService *service.PresetService
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(familyService *service.FamilyService, importService *service.ImportService,
	presetService *service.PresetService) *FamilyHandler {
	return &FamilyHandler{
		familyService: familyService,
		importService: importService,
		presetService: presetService,
	}
}

// Create handles POST /api/families
func (h *FamilyHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		FamilyName  string  `json:"family_name"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	family, err := h.familyService.CreateFamily(user.ID, req.FamilyName, req.Description)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, family)
}

// List handles GET /api/families
func (h *FamilyHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	families, err := h.familyService.ListFamilies(user.ID, intQuery(r, "limit", 100), intQuery(r, "offset", 0))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	views := make([]familyWithRole, 0, len(families))
	for _, family := range families {
		role, err := h.familyService.RoleOn(user.ID, family.ID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		views = append(views, familyWithRole{Family: family, Role: role})
	}

	respondJSON(w, http.StatusOK, views)
}

// Get handles GET /api/families/{id}
func (h *FamilyHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	family, role, err := h.familyService.GetFamily(user.ID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, familyWithRole{Family: *family, Role: role})
}

// Update handles PUT /api/families/{id}
func (h *FamilyHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		FamilyName  string  `json:"family_name"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	family, err := h.familyService.UpdateFamily(user.ID, r.PathValue("id"), req.FamilyName, req.Description)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, family)
}

// Delete handles DELETE /api/families/{id}
func (h *FamilyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.familyService.DeleteFamily(user.ID, r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Import handles POST /api/families/import
func (h *FamilyHandler) Import(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	doc := &importer.Document{}
	if err := json.NewDecoder(r.Body).Decode(doc); err != nil {
		respondError(w, http.StatusBadRequest, "invalid import document")
		return
	}

	family, err := h.importService.Import(user.ID, doc)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, family)
}

// ImportPreset handles POST /api/families/import-preset/{key}
func (h *FamilyHandler) ImportPreset(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	family, err := h.importService.ImportPreset(user.ID, r.PathValue("key"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, family)
}

// ListPresets handles GET /api/families/presets
func (h *FamilyHandler) ListPresets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]string{"presets": h.presetService.Keys()})
}

// InviteCollaborator handles POST /api/families/{id}/collaborators
func (h *FamilyHandler) InviteCollaborator(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	collab, invitee, err := h.familyService.InviteCollaborator(r.Context(), user.ID, r.PathValue("id"), req.Email, req.Role)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, collaboratorView{
		UserID: collab.UserID,
		Email:  invitee.Email,
		Name:   invitee.Name,
		Role:   collab.Role,
	})
}

// ListCollaborators handles GET /api/families/{id}/collaborators
func (h *FamilyHandler) ListCollaborators(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	collabs, users, err := h.familyService.ListCollaborators(user.ID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newCollaboratorViews(collabs, users))
}

// RemoveCollaborator handles DELETE /api/families/{id}/collaborators/{user_id}
func (h *FamilyHandler) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.familyService.RemoveCollaborator(user.ID, r.PathValue("id"), r.PathValue("user_id")); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// RequestAccess handles POST /api/families/{id}/access-requests
func (h *FamilyHandler) RequestAccess(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	request, err := h.familyService.RequestAccess(user.ID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, request)
}

// ListAccessRequests handles GET /api/access-requests
func (h *FamilyHandler) ListAccessRequests(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	requests, err := h.familyService.ListAccessRequests(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, requests)
}

// DecideAccessRequest handles POST /api/access-requests/{id}/approve and
// POST /api/access-requests/{id}/reject
func (h *FamilyHandler) DecideAccessRequest(approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())

		request, err := h.familyService.DecideAccessRequest(r.Context(), user.ID, r.PathValue("id"), approve)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, request)
	}
}

package handlers

import (
	"encoding/json"
	"net/http"

	"kintree/internal/models"
	"kintree/internal/repository"
	"kintree/internal/service"
)

// MemberHandler handles member CRUD and position endpoints
type MemberHandler struct {
	memberService *service.MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *service.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// Create handles POST /api/members
func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		models.Member
		RegionIDs []string `json:"region_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Member.ID = ""

	created, err := h.memberService.CreateMember(user.ID, &req.Member, req.RegionIDs)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// Get handles GET /api/members/{id}
func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	member, err := h.memberService.GetMember(user.ID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, member)
}

// List handles GET /api/families/{id}/members
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	members, err := h.memberService.ListMembers(user.ID, r.PathValue("id"),
		intQuery(r, "limit", 200), intQuery(r, "offset", 0))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if members == nil {
		members = []models.Member{}
	}
	respondJSON(w, http.StatusOK, members)
}

// Update handles PUT /api/members/{id}
func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	member := &models.Member{}
	if err := json.NewDecoder(r.Body).Decode(member); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	member.ID = r.PathValue("id")

	updated, err := h.memberService.UpdateMember(user.ID, member)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/members/{id}
func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.memberService.DeleteMember(user.ID, r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// UpdatePositions handles PUT /api/members/positions
func (h *MemberHandler) UpdatePositions(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		FamilyID  string                      `json:"family_id"`
		Positions []repository.PositionUpdate `json:"positions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FamilyID == "" {
		respondError(w, http.StatusBadRequest, "family_id is required")
		return
	}

	if err := h.memberService.UpdateMembersPositions(user.ID, req.FamilyID, req.Positions); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

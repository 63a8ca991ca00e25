package handlers

import (
	"encoding/json"
	"net/http"

	"kintree/internal/models"
	"kintree/internal/service"
)

// RegionHandler handles region CRUD and membership endpoints
type RegionHandler struct {
	regionService *service.RegionService
}

// NewRegionHandler creates a new region handler
func NewRegionHandler(regionService *service.RegionService) *RegionHandler {
	return &RegionHandler{regionService: regionService}
}

// regionView pairs a region with its explicit member ids
type regionView struct {
	models.Region
	MemberIDs []string `json:"member_ids"`
}

// Create handles POST /api/regions
func (h *RegionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		models.Region
		MemberIDs []string `json:"member_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Region.ID = ""

	created, err := h.regionService.CreateRegion(user.ID, &req.Region, req.MemberIDs)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// Get handles GET /api/regions/{id}
func (h *RegionHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	region, memberIDs, err := h.regionService.GetRegion(user.ID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if memberIDs == nil {
		memberIDs = []string{}
	}
	respondJSON(w, http.StatusOK, regionView{Region: *region, MemberIDs: memberIDs})
}

// List handles GET /api/families/{id}/regions
func (h *RegionHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	regions, err := h.regionService.ListRegions(user.ID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if regions == nil {
		regions = []models.Region{}
	}
	respondJSON(w, http.StatusOK, regions)
}

// Update handles PUT /api/regions/{id}
func (h *RegionHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		Name           string   `json:"name"`
		Description    *string  `json:"description"`
		Color          string   `json:"color"`
		LinkedFamilyID *string  `json:"linked_family_id"`
		MemberIDs      []string `json:"member_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	region := &models.Region{
		ID:             r.PathValue("id"),
		Name:           req.Name,
		Description:    req.Description,
		Color:          req.Color,
		LinkedFamilyID: req.LinkedFamilyID,
	}
	updated, err := h.regionService.UpdateRegion(user.ID, region, req.MemberIDs)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/regions/{id}
func (h *RegionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.regionService.DeleteRegion(user.ID, r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AddMember handles POST /api/regions/{id}/members/{member_id}
func (h *RegionHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.regionService.AddMember(user.ID, r.PathValue("id"), r.PathValue("member_id")); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

// RemoveMember handles DELETE /api/regions/{id}/members/{member_id}
func (h *RegionHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.regionService.RemoveMember(user.ID, r.PathValue("id"), r.PathValue("member_id")); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

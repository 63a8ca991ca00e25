package handlers

import (
	"encoding/json"
	"net/http"

	"kintree/internal/service"
)

// RelationshipHandler handles relationship and graph endpoints
type RelationshipHandler struct {
	relationshipService *service.RelationshipService
}

// NewRelationshipHandler creates a new relationship handler
func NewRelationshipHandler(relationshipService *service.RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{relationshipService: relationshipService}
}

// CreateSpouse handles POST /api/relationships/spouse
func (h *RelationshipHandler) CreateSpouse(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		Member1ID    string  `json:"member1_id"`
		Member2ID    string  `json:"member2_id"`
		MarriageDate *string `json:"marriage_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rel, err := h.relationshipService.CreateSpouse(user.ID, req.Member1ID, req.Member2ID, req.MarriageDate)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, rel)
}

// UpdateSpouse handles PUT /api/relationships/spouse/{id}
func (h *RelationshipHandler) UpdateSpouse(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		MarriageDate *string `json:"marriage_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rel, err := h.relationshipService.UpdateSpouseDate(user.ID, r.PathValue("id"), req.MarriageDate)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rel)
}

// DeleteSpouse handles DELETE /api/relationships/spouse/{id}
func (h *RelationshipHandler) DeleteSpouse(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.relationshipService.DeleteSpouse(user.ID, r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// CreateParentChild handles POST /api/relationships/parent-child
func (h *RelationshipHandler) CreateParentChild(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		ParentID         string `json:"parent_id"`
		ChildID          string `json:"child_id"`
		RelationshipType string `json:"relationship_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rel, err := h.relationshipService.CreateParentChild(user.ID, req.ParentID, req.ChildID, req.RelationshipType)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, rel)
}

// DeleteParentChild handles DELETE /api/relationships/parent-child/{id}
func (h *RelationshipHandler) DeleteParentChild(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.relationshipService.DeleteParentChild(user.ID, r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Graph handles GET /api/relationships/graph/{family_id}
func (h *RelationshipHandler) Graph(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	doc, err := h.relationshipService.AssembleGraph(user.ID, r.PathValue("family_id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"kintree/internal/service"
)

// errorResponse is the JSON body for every non-2xx response
type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("Failed to encode response: %v", err)
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondServiceError maps service-layer errors onto HTTP statuses. Unknown
// errors are logged and reported as a bare 500.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrFamilyNotFound),
		errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrRegionNotFound),
		errors.Is(err, service.ErrRelationshipNotFound),
		errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrPresetNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAccessDenied):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrDuplicateSpouse),
		errors.Is(err, service.ErrDuplicateParentChild),
		errors.Is(err, service.ErrAlreadyRequested),
		errors.Is(err, service.ErrEmailTaken):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidRelType),
		errors.Is(err, service.ErrRegionSelfLink),
		errors.Is(err, service.ErrCannotInviteOwner):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("Internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

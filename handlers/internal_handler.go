package handlers

import (
	"errors"
	"net/http"

	"github.com/EricBrvs/ft-transcendance/services"
	"github.com/go-chi/chi/v5"
)

// InternalHandler exposes service-to-service operations. Routes using it
// sit behind the internal-key middleware, never behind user auth.
type InternalHandler struct {
	cleanupService services.CleanupService
}

func NewInternalHandler(cleanupService services.CleanupService) *InternalHandler {
	return &InternalHandler{cleanupService: cleanupService}
}

// CascadeDeleteParticipantHandler is called by the account-deletion
// collaborator after it removes a user.
func (h *InternalHandler) CascadeDeleteParticipantHandler(w http.ResponseWriter, r *http.Request) {
	participantID := chi.URLParam(r, "participantID")
	if participantID == "" {
		badRequestResponse(w, r, errors.New("missing participantID parameter"))
		return
	}

	deleted, err := h.cleanupService.CascadeDeleteParticipant(r.Context(), participantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"deleted": deleted}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

package httptransport

import (
	"context"
	"net/http"
	"time"

	"ember/internal/encounter"
	"ember/internal/platform/middleware"
	dErrors "ember/pkg/domain-errors"
)

// EncounterService defines the interface for ledger operations.
type EncounterService interface {
	Log(ctx context.Context, reporterID string, partner encounter.PartnerRef, metAt time.Time, location string, activities []string) (*encounter.Encounter, error)
	Delete(ctx context.Context, reporterID, encounterID string) error
	AddContact(ctx context.Context, ownerID, displayName, phoneNumber, socialHandle string) (*encounter.ManualContact, error)
	Contacts(ctx context.Context, ownerID string) ([]*encounter.ManualContact, error)
	RemoveContact(ctx context.Context, ownerID, contactID string) error
}

type logEncounterRequest struct {
	Partner    encounter.PartnerRef `json:"partner"`
	MetAt      time.Time            `json:"met_at"`
	Location   string               `json:"location"`
	Activities []string             `json:"activities"`
}

func (h *Handler) handleLogEncounter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req logEncounterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.MetAt.IsZero() {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "met_at is required"))
		return
	}

	e, err := h.encounters.Log(ctx, middleware.GetUserID(ctx), req.Partner, req.MetAt, req.Location, req.Activities)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":     e.ID,
		"met_at": e.MetAt,
	})
}

func (h *Handler) handleDeleteEncounter(w http.ResponseWriter, r *http.Request) {
	if err := h.encounters.Delete(r.Context(), middleware.GetUserID(r.Context()), pathParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addContactRequest struct {
	DisplayName  string `json:"display_name"`
	PhoneNumber  string `json:"phone_number"`
	SocialHandle string `json:"social_handle"`
}

func (h *Handler) handleAddContact(w http.ResponseWriter, r *http.Request) {
	var req addContactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	c, err := h.encounters.AddContact(r.Context(), middleware.GetUserID(r.Context()), req.DisplayName, req.PhoneNumber, req.SocialHandle)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":           c.ID,
		"display_name": c.DisplayName,
	})
}

func (h *Handler) handleListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.encounters.Contacts(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	type contactResponse struct {
		ID           string `json:"id"`
		DisplayName  string `json:"display_name"`
		PhoneNumber  string `json:"phone_number,omitempty"`
		SocialHandle string `json:"social_handle,omitempty"`
	}
	out := make([]contactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, contactResponse{
			ID:           c.ID,
			DisplayName:  c.DisplayName,
			PhoneNumber:  c.PhoneNumber,
			SocialHandle: c.SocialHandle,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"contacts": out})
}

func (h *Handler) handleRemoveContact(w http.ResponseWriter, r *http.Request) {
	if err := h.encounters.RemoveContact(r.Context(), middleware.GetUserID(r.Context()), pathParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

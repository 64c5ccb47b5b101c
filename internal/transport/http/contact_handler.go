package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/scopeguard/scopeguard/internal/contact"
	"github.com/scopeguard/scopeguard/internal/membership"
)

// ContactRequest represents contact creation and update data
type ContactRequest struct {
	OrgID *int64 `json:"org_id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ListContacts lists every contact visible to the calling user. The
// result is narrowed to the caller's active organizations; anonymous
// callers get an empty list.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contactService.List(r.Context(), CurrentUser(r.Context()))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	out := make([]map[string]any, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, contactResponse(c))
	}
	respondJSON(w, http.StatusOK, map[string]any{"contacts": out})
}

// CreateContact creates a contact. org_id may be omitted by users that
// belong to exactly one organization; everyone else must supply it.
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	var orgID *membership.TenantID
	if req.OrgID != nil {
		id := membership.TenantID(*req.OrgID)
		orgID = &id
	}

	c, err := h.contactService.Create(r.Context(), CurrentUser(r.Context()), orgID, contact.Input{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, contactResponse(c))
}

// GetContact returns one contact
func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	c, err := h.contactService.Get(r.Context(), CurrentUser(r.Context()), chi.URLParam(r, "contactID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, contactResponse(c))
}

// UpdateContact modifies a contact
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.contactService.Update(r.Context(), CurrentUser(r.Context()), chi.URLParam(r, "contactID"), contact.Input{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, contactResponse(c))
}

// DeleteContact removes a contact
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	err := h.contactService.Delete(r.Context(), CurrentUser(r.Context()), chi.URLParam(r, "contactID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "contact deleted"})
}

func contactResponse(c *contact.Contact) map[string]any {
	return map[string]any{
		"id":         c.ID,
		"org_id":     int64(c.OrgID),
		"name":       c.Name,
		"email":      c.Email,
		"phone":      c.Phone,
		"created_at": c.CreatedAt,
		"updated_at": c.UpdatedAt,
	}
}

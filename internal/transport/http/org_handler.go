package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/scopeguard/scopeguard/internal/membership"
)

// CreateOrganizationRequest represents organization creation data
type CreateOrganizationRequest struct {
	Name string `json:"name"`
}

// CreateOrganization creates a new organization
func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req CreateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	actor := CurrentUser(r.Context())
	org, err := h.memberService.CreateOrganization(r.Context(), actor.ID, req.Name)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, orgResponse(org))
}

// ListOrganizations lists all organizations
func (h *Handler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)

	orgs, err := h.memberService.ListOrganizations(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	out := make([]map[string]any, 0, len(orgs))
	for _, org := range orgs {
		out = append(out, orgResponse(org))
	}
	respondJSON(w, http.StatusOK, map[string]any{"organizations": out})
}

// GetOrganization returns one organization
func (h *Handler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, err := orgIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid organization id")
		return
	}

	org, err := h.memberService.GetOrganization(r.Context(), orgID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, orgResponse(org))
}

// DeleteOrganization removes an organization and invalidates every
// cached permission set scoped to it.
func (h *Handler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, err := orgIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid organization id")
		return
	}

	actor := CurrentUser(r.Context())
	if err := h.memberService.DeleteOrganization(r.Context(), actor.ID, orgID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "organization deleted"})
}

// AddMemberRequest represents member enrollment data
type AddMemberRequest struct {
	UserID  string   `json:"user_id"`
	RoleIDs []string `json:"role_ids"`
}

// AddMember enrolls a user into an organization
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	orgID, err := orgIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid organization id")
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	actor := CurrentUser(r.Context())
	m, err := h.memberService.AddMember(r.Context(), actor.ID, orgID, req.UserID, req.RoleIDs)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, membershipResponse(m))
}

// ListMembers lists the memberships of an organization
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	orgID, err := orgIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid organization id")
		return
	}

	members, err := h.memberService.ListMembers(r.Context(), orgID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	out := make([]map[string]any, 0, len(members))
	for _, m := range members {
		out = append(out, membershipResponse(m))
	}
	respondJSON(w, http.StatusOK, map[string]any{"members": out})
}

// GetMembership returns one membership
func (h *Handler) GetMembership(w http.ResponseWriter, r *http.Request) {
	m, err := h.memberService.GetMembership(r.Context(), chi.URLParam(r, "membershipID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, membershipResponse(m))
}

// SetMemberRolesRequest represents a role assignment change
type SetMemberRolesRequest struct {
	RoleIDs []string `json:"role_ids"`
}

// SetMemberRoles replaces the role set of a membership
func (h *Handler) SetMemberRoles(w http.ResponseWriter, r *http.Request) {
	var req SetMemberRolesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actor := CurrentUser(r.Context())
	membershipID := chi.URLParam(r, "membershipID")
	if err := h.memberService.SetMemberRoles(r.Context(), actor.ID, membershipID, req.RoleIDs); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "roles updated"})
}

// SetMemberActiveRequest represents an activation toggle
type SetMemberActiveRequest struct {
	Active bool `json:"active"`
}

// SetMemberActive activates or deactivates a membership
func (h *Handler) SetMemberActive(w http.ResponseWriter, r *http.Request) {
	var req SetMemberActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actor := CurrentUser(r.Context())
	membershipID := chi.URLParam(r, "membershipID")
	if err := h.memberService.SetMemberActive(r.Context(), actor.ID, membershipID, req.Active); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "membership updated"})
}

// RemoveMember removes a membership
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actor := CurrentUser(r.Context())
	membershipID := chi.URLParam(r, "membershipID")
	if err := h.memberService.RemoveMember(r.Context(), actor.ID, membershipID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "member removed"})
}

func orgResponse(org *membership.Organization) map[string]any {
	return map[string]any{
		"id":         org.ID,
		"name":       org.Name,
		"created_at": org.CreatedAt,
		"updated_at": org.UpdatedAt,
	}
}

func membershipResponse(m *membership.Membership) map[string]any {
	return map[string]any{
		"id":         m.ID,
		"user_id":    m.UserID,
		"tenant_id":  m.TenantID,
		"role_ids":   m.RoleIDs(),
		"active":     m.Active,
		"created_at": m.CreatedAt,
		"updated_at": m.UpdatedAt,
	}
}

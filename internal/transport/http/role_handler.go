package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/scopeguard/scopeguard/internal/membership"
)

// CreateRoleRequest represents role creation data
type CreateRoleRequest struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// CreateRole creates a new role
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	actor := CurrentUser(r.Context())
	role, err := h.memberService.CreateRole(r.Context(), actor.ID, req.Name, req.Permissions)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, roleResponse(role))
}

// ListRoles lists all roles
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.memberService.ListRoles(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	out := make([]map[string]any, 0, len(roles))
	for _, role := range roles {
		out = append(out, roleResponse(role))
	}
	respondJSON(w, http.StatusOK, map[string]any{"roles": out})
}

// GetRole returns one role
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.memberService.GetRole(r.Context(), chi.URLParam(r, "roleID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, roleResponse(role))
}

// SetRolePermissionsRequest represents a permission set change
type SetRolePermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

// SetRolePermissions replaces the permission set of a role. Cached
// permission sets of every member holding the role are invalidated.
func (h *Handler) SetRolePermissions(w http.ResponseWriter, r *http.Request) {
	var req SetRolePermissionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actor := CurrentUser(r.Context())
	roleID := chi.URLParam(r, "roleID")
	if err := h.memberService.SetRolePermissions(r.Context(), actor.ID, roleID, req.Permissions); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "permissions updated"})
}

// DeleteRole deletes a role
func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	actor := CurrentUser(r.Context())
	roleID := chi.URLParam(r, "roleID")
	if err := h.memberService.DeleteRole(r.Context(), actor.ID, roleID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "role deleted"})
}

func roleResponse(role *membership.Role) map[string]any {
	return map[string]any{
		"id":          role.ID,
		"name":        role.Name,
		"permissions": role.Permissions,
		"created_at":  role.CreatedAt,
		"updated_at":  role.UpdatedAt,
	}
}

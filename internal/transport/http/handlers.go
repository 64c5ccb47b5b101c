package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/scopeguard/scopeguard/internal/authz"
	"github.com/scopeguard/scopeguard/internal/contact"
	"github.com/scopeguard/scopeguard/internal/membership"
	"github.com/scopeguard/scopeguard/internal/observability/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	authzService   *authz.Service
	memberService  *membership.Service
	contactService *contact.Service
	jwtSecret      string
}

// NewHandler creates a new HTTP handler
func NewHandler(
	authzService *authz.Service,
	memberService *membership.Service,
	contactService *contact.Service,
	jwtSecret string,
) *Handler {
	return &Handler{
		authzService:   authzService,
		memberService:  memberService,
		contactService: contactService,
		jwtSecret:      jwtSecret,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.AuthMiddleware)

		// Authorization queries for the calling user
		r.Route("/authz", func(r chi.Router) {
			r.Use(RequireAuth)
			r.Get("/check", h.CheckPermission)
			r.Get("/tenants", h.ListActiveTenants)
		})

		// Organization and membership administration
		r.Route("/organizations", func(r chi.Router) {
			r.With(RequireElevated).Post("/", h.CreateOrganization)
			r.With(RequireElevated).Get("/", h.ListOrganizations)

			r.Route("/{orgID}", func(r chi.Router) {
				r.With(RequireElevated).Get("/", h.GetOrganization)
				r.With(RequireElevated).Delete("/", h.DeleteOrganization)

				r.Route("/members", func(r chi.Router) {
					r.Use(h.RequireMembershipAdmin)
					r.Post("/", h.AddMember)
					r.Get("/", h.ListMembers)
					r.Route("/{membershipID}", func(r chi.Router) {
						r.Get("/", h.GetMembership)
						r.Put("/roles", h.SetMemberRoles)
						r.Put("/active", h.SetMemberActive)
						r.Delete("/", h.RemoveMember)
					})
				})
			})
		})

		// Role administration (platform-level: roles are shared across tenants)
		r.Route("/roles", func(r chi.Router) {
			r.Use(RequireElevated)
			r.Post("/", h.CreateRole)
			r.Get("/", h.ListRoles)
			r.Route("/{roleID}", func(r chi.Router) {
				r.Get("/", h.GetRole)
				r.Put("/permissions", h.SetRolePermissions)
				r.Delete("/", h.DeleteRole)
			})
		})

		// Tenant-scoped contact resource
		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", h.ListContacts)
			r.Post("/", h.CreateContact)
			r.Route("/{contactID}", func(r chi.Router) {
				r.Get("/", h.GetContact)
				r.Put("/", h.UpdateContact)
				r.Delete("/", h.DeleteContact)
			})
		})
	})

	return r
}

// HealthCheck returns the health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "scopeguard",
	})
}

// RequireMembershipAdmin allows elevated callers through and otherwise
// demands the change_membership permission in the target organization.
func (h *Handler) RequireMembershipAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		if !user.Authenticated() {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		orgID, err := orgIDParam(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid organization id")
			return
		}

		if !h.authzService.HasPermission(r.Context(), user, "change_membership", orgID) {
			respondError(w, http.StatusForbidden, "missing permission change_membership")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// paginationParams parses limit/offset query parameters with sane caps.
func paginationParams(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// orgIDParam parses the {orgID} route parameter.
func orgIDParam(r *http.Request) (membership.TenantID, error) {
	raw := chi.URLParam(r, "orgID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return membership.TenantID(id), nil
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondServiceError maps domain errors onto HTTP status codes.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, authz.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, authz.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, authz.ErrInvalidInput), errors.Is(err, authz.ErrUnknownAction):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, membership.ErrMembershipAlreadyExists):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, membership.ErrMembershipNotFound),
		errors.Is(err, membership.ErrRoleNotFound),
		errors.Is(err, membership.ErrOrganizationNotFound),
		errors.Is(err, contact.ErrContactNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

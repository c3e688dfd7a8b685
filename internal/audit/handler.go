package audit

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	apperrors "venuebook/pkg/errors"
	httputil "venuebook/pkg/http"
	"venuebook/pkg/logger"
	"venuebook/pkg/middleware"
	"venuebook/pkg/policy"
)

type Handler struct {
	repo Repository
	log  *logger.Logger
}

func NewHandler(repo Repository, log *logger.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log,
	}
}

// List returns the change history of one entity, newest first.
// Superadmin only.
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == nil {
		if writeErr := httputil.WriteError(w, apperrors.Unauthorized("Authentication required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	if !policy.Allow(principal.Role, policy.ActionReadAudit, policy.Relation{}) {
		if writeErr := httputil.WriteError(w, apperrors.Forbidden("You are not allowed to read the audit log")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	query := r.URL.Query()
	entityType := query.Get("entity_type")
	entityID := query.Get("entity_id")
	if entityType == "" || entityID == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Both 'entity_type' and 'entity_id' query parameters are required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	records, err := h.repo.FindByEntity(r.Context(), entityType, entityID, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.Internal("Failed to retrieve audit records", err)); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, records); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/audit", h.List)
}

package handler

import (
	"net/http"

	"github.com/boddenberg/strike-crm/internal/domain"
	"github.com/boddenberg/strike-crm/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Activities
// ============================================================

func createActivityHandler(svc *service.ActivityService, logger *zap.Logger) http.HandlerFunc {
	return withUser(func(w http.ResponseWriter, r *http.Request, user *domain.User) {
		ctx, span := tracer.Start(r.Context(), "POST /api/activities")
		defer span.End()

		var in domain.ActivityInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		activity, err := svc.Create(ctx, user.ID, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, activity)
	})
}

func listLeadActivitiesHandler(svc *service.ActivityService, logger *zap.Logger) http.HandlerFunc {
	return withUser(func(w http.ResponseWriter, r *http.Request, user *domain.User) {
		ctx, span := tracer.Start(r.Context(), "GET /api/leads/{leadId}/activities")
		defer span.End()

		activities, err := svc.ListForLead(ctx, user.ID, chi.URLParam(r, "leadId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, activities)
	})
}

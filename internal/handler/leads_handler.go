package handler

import (
	"net/http"

	"github.com/boddenberg/strike-crm/internal/domain"
	"github.com/boddenberg/strike-crm/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Leads
// ============================================================

func createLeadHandler(svc *service.LeadService, logger *zap.Logger) http.HandlerFunc {
	return withUser(func(w http.ResponseWriter, r *http.Request, user *domain.User) {
		ctx, span := tracer.Start(r.Context(), "POST /api/leads")
		defer span.End()

		var in domain.LeadInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		lead, err := svc.Create(ctx, user.ID, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, lead)
	})
}

func listLeadsHandler(svc *service.LeadService, logger *zap.Logger) http.HandlerFunc {
	return withUser(func(w http.ResponseWriter, r *http.Request, user *domain.User) {
		ctx, span := tracer.Start(r.Context(), "GET /api/leads")
		defer span.End()

		leads, err := svc.List(ctx, user.ID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, leads)
	})
}

func getLeadHandler(svc *service.LeadService, logger *zap.Logger) http.HandlerFunc {
	return withUser(func(w http.ResponseWriter, r *http.Request, user *domain.User) {
		ctx, span := tracer.Start(r.Context(), "GET /api/leads/{leadId}")
		defer span.End()

		leadID := chi.URLParam(r, "leadId")
		span.SetAttributes(attribute.String("lead.id", leadID))

		lead, err := svc.Get(ctx, user.ID, leadID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, lead)
	})
}

func updateLeadHandler(svc *service.LeadService, logger *zap.Logger) http.HandlerFunc {
	return withUser(func(w http.ResponseWriter, r *http.Request, user *domain.User) {
		ctx, span := tracer.Start(r.Context(), "PUT /api/leads/{leadId}")
		defer span.End()

		leadID := chi.URLParam(r, "leadId")
		span.SetAttributes(attribute.String("lead.id", leadID))

		var in domain.LeadInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		lead, err := svc.Update(ctx, user.ID, leadID, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, lead)
	})
}

// setLeadStageHandler takes the target stage from the "stage" query parameter.
func setLeadStageHandler(svc *service.LeadService, logger *zap.Logger) http.HandlerFunc {
	return withUser(func(w http.ResponseWriter, r *http.Request, user *domain.User) {
		ctx, span := tracer.Start(r.Context(), "PATCH /api/leads/{leadId}/stage")
		defer span.End()

		leadID := chi.URLParam(r, "leadId")
		stage := r.URL.Query().Get("stage")

		if err := svc.SetStage(ctx, user.ID, leadID, stage); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, successResponse)
	})
}

func deleteLeadHandler(svc *service.LeadService, logger *zap.Logger) http.HandlerFunc {
	return withUser(func(w http.ResponseWriter, r *http.Request, user *domain.User) {
		ctx, span := tracer.Start(r.Context(), "DELETE /api/leads/{leadId}")
		defer span.End()

		if err := svc.Delete(ctx, user.ID, chi.URLParam(r, "leadId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, successResponse)
	})
}

package handler

import (
	"net/http"

	"github.com/boddenberg/strike-crm/internal/domain"
	"github.com/boddenberg/strike-crm/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Business card
// ============================================================

func upsertBusinessCardHandler(svc *service.BusinessCardService, logger *zap.Logger) http.HandlerFunc {
	return withUser(func(w http.ResponseWriter, r *http.Request, user *domain.User) {
		ctx, span := tracer.Start(r.Context(), "POST /api/business-card")
		defer span.End()

		var in domain.BusinessCardInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		card, err := svc.Upsert(ctx, user.ID, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, card)
	})
}

func getBusinessCardHandler(svc *service.BusinessCardService, logger *zap.Logger) http.HandlerFunc {
	return withUser(func(w http.ResponseWriter, r *http.Request, user *domain.User) {
		ctx, span := tracer.Start(r.Context(), "GET /api/business-card")
		defer span.End()

		card, err := svc.Get(ctx, user.ID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, card)
	})
}

package handler

import (
	"net/http"

	"github.com/boddenberg/strike-crm/internal/domain"
	"github.com/boddenberg/strike-crm/internal/service"

	"go.uber.org/zap"
)

func dashboardStatsHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return withUser(func(w http.ResponseWriter, r *http.Request, user *domain.User) {
		ctx, span := tracer.Start(r.Context(), "GET /api/dashboard/stats")
		defer span.End()

		stats, err := svc.Stats(ctx, user.ID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	})
}

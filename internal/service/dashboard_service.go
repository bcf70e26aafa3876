package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/strike-crm/internal/domain"
	"github.com/boddenberg/strike-crm/internal/infra/observability"
	"github.com/boddenberg/strike-crm/internal/port"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

var dashboardTracer = otel.Tracer("service/dashboard")

const (
	statsWindow       = 7 * 24 * time.Hour
	recentActivityMax = 10
)

// DashboardService aggregates pipeline and activity statistics.
type DashboardService struct {
	leads      port.LeadStore
	activities port.ActivityStore
	metrics    *observability.Metrics
}

func NewDashboardService(leads port.LeadStore, activities port.ActivityStore, metrics *observability.Metrics) *DashboardService {
	return &DashboardService{leads: leads, activities: activities, metrics: metrics}
}

// Stats runs the independent reads concurrently. TotalLeads is derived from
// the stage grouping so the two always agree.
func (s *DashboardService) Stats(ctx context.Context, ownerID string) (*domain.DashboardStats, error) {
	ctx, span := dashboardTracer.Start(ctx, "DashboardService.Stats")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("dashboard_stats", time.Since(start))
	}()

	since := now().Add(-statsWindow)

	var (
		byStage map[string]int64
		calls   int64
		emails  int64
		recent  []domain.Activity
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byStage, err = s.leads.CountLeadsByStage(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("count leads by stage: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		calls, err = s.activities.CountActivitiesSince(gctx, ownerID, domain.ActivityCall, since)
		if err != nil {
			return fmt.Errorf("count calls: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		emails, err = s.activities.CountActivitiesSince(gctx, ownerID, domain.ActivityEmail, since)
		if err != nil {
			return fmt.Errorf("count emails: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		recent, err = s.activities.RecentActivities(gctx, ownerID, recentActivityMax)
		if err != nil {
			return fmt.Errorf("recent activities: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &domain.DashboardStats{
		LeadsByStage:     map[string]int64{},
		ThisWeekCalls:    calls,
		ThisWeekEmails:   emails,
		RecentActivities: recent,
	}
	for stage, n := range byStage {
		if n == 0 {
			continue
		}
		stats.LeadsByStage[stage] = n
		stats.TotalLeads += n
	}
	if stats.RecentActivities == nil {
		stats.RecentActivities = []domain.Activity{}
	}
	return stats, nil
}

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/boddenberg/strike-crm/internal/domain"
	"github.com/boddenberg/strike-crm/internal/infra/cache"
	"github.com/boddenberg/strike-crm/internal/infra/memstore"
	"github.com/boddenberg/strike-crm/internal/infra/observability"
	"github.com/boddenberg/strike-crm/internal/port"
	"github.com/boddenberg/strike-crm/internal/service"

	"go.uber.org/zap"
)

type services struct {
	store      *memstore.Store
	metrics    *observability.Metrics
	auth       *service.AuthService
	leads      *service.LeadService
	activities *service.ActivityService
	cards      *service.BusinessCardService
	dashboard  *service.DashboardService
}

func newServices(t *testing.T) *services {
	t.Helper()
	return newServicesWithStore(t, memstore.New())
}

func newServicesWithStore(t *testing.T, store port.Store) *services {
	t.Helper()

	metrics := observability.NewMetrics()
	logger := zap.NewNop()
	userCache := cache.New[*domain.User](time.Minute)
	t.Cleanup(userCache.Close)

	leads := service.NewLeadService(store, metrics, logger)
	s := &services{
		metrics:    metrics,
		auth:       service.NewAuthService(store, service.NewCredentials("test-secret"), userCache, metrics, logger),
		leads:      leads,
		activities: service.NewActivityService(store, leads, metrics, logger),
		cards:      service.NewBusinessCardService(store, logger),
		dashboard:  service.NewDashboardService(store, store, metrics),
	}
	if ms, ok := store.(*memstore.Store); ok {
		s.store = ms
	}
	return s
}

func strPtr(s string) *string { return &s }

func mustCreateLead(t *testing.T, s *services, owner string, in domain.LeadInput) *domain.Lead {
	t.Helper()
	lead, err := s.leads.Create(context.Background(), owner, &in)
	if err != nil {
		t.Fatalf("create lead: %v", err)
	}
	return lead
}

package service

import (
	"context"
	"fmt"

	"github.com/boddenberg/strike-crm/internal/domain"
	"github.com/boddenberg/strike-crm/internal/infra/observability"
	"github.com/boddenberg/strike-crm/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var activityTracer = otel.Tracer("service/activities")

// ActivityService appends to and reads the per-lead activity log.
type ActivityService struct {
	store   port.ActivityStore
	leads   *LeadService
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewActivityService creates the activity service. Lead ownership checks and
// last-interaction stamping go through leads.
func NewActivityService(store port.ActivityStore, leads *LeadService, metrics *observability.Metrics, logger *zap.Logger) *ActivityService {
	return &ActivityService{store: store, leads: leads, metrics: metrics, logger: logger}
}

// Create logs an activity and stamps the lead's last interaction with the
// activity's timestamp. The two writes are independent; if the second one
// fails the activity stays recorded.
func (s *ActivityService) Create(ctx context.Context, ownerID string, in *domain.ActivityInput) (*domain.Activity, error) {
	ctx, span := activityTracer.Start(ctx, "ActivityService.Create")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("lead.id", in.LeadID),
		attribute.String("activity.type", in.ActivityType),
	)

	if _, err := s.leads.Get(ctx, ownerID, in.LeadID); err != nil {
		return nil, err
	}

	activity := &domain.Activity{
		ID:           uuid.New().String(),
		LeadID:       in.LeadID,
		ActivityType: in.ActivityType,
		Content:      in.Content,
		Outcome:      in.Outcome,
		Duration:     in.Duration,
		UserID:       ownerID,
		CreatedAt:    now(),
	}
	if err := s.store.CreateActivity(ctx, activity); err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}
	s.metrics.IncrActivityLogged(activity.ActivityType)

	matched, err := s.leads.touch(ctx, ownerID, in.LeadID, activity.CreatedAt)
	switch {
	case err != nil:
		s.logger.Error("activity logged but lead not touched",
			zap.String("activity_id", activity.ID),
			zap.String("lead_id", in.LeadID),
			zap.Error(err),
		)
	case !matched:
		// Lead deleted between the ownership check and the stamp.
		s.logger.Warn("activity logged for a lead that no longer exists",
			zap.String("activity_id", activity.ID),
			zap.String("lead_id", in.LeadID),
		)
	}

	return activity, nil
}

// ListForLead returns the lead's activities, newest first.
func (s *ActivityService) ListForLead(ctx context.Context, ownerID, leadID string) ([]domain.Activity, error) {
	ctx, span := activityTracer.Start(ctx, "ActivityService.ListForLead")
	defer span.End()
	span.SetAttributes(attribute.String("lead.id", leadID))

	if _, err := s.leads.Get(ctx, ownerID, leadID); err != nil {
		return nil, err
	}

	activities, err := s.store.ListActivitiesForLead(ctx, ownerID, leadID, maxListSize)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	if activities == nil {
		activities = []domain.Activity{}
	}
	return activities, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/strike-crm/internal/domain"
	"github.com/boddenberg/strike-crm/internal/infra/observability"
	"github.com/boddenberg/strike-crm/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var leadTracer = otel.Tracer("service/leads")

// maxListSize caps list endpoints. There is no paging.
const maxListSize = 1000

func leadNotFound(id string) error {
	return &domain.ErrNotFound{Resource: "Lead", ID: id}
}

// LeadService manages the owner's pipeline.
type LeadService struct {
	store   port.LeadStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewLeadService creates the lead service.
func NewLeadService(store port.LeadStore, metrics *observability.Metrics, logger *zap.Logger) *LeadService {
	return &LeadService{store: store, metrics: metrics, logger: logger}
}

func (s *LeadService) Create(ctx context.Context, ownerID string, in *domain.LeadInput) (*domain.Lead, error) {
	ctx, span := leadTracer.Start(ctx, "LeadService.Create")
	defer span.End()

	in.ApplyDefaults()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	lead := &domain.Lead{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Company:   in.Company,
		Phone:     in.Phone,
		Email:     in.Email,
		Address:   in.Address,
		Stage:     in.Stage,
		Priority:  in.Priority,
		Notes:     in.Notes,
		UserID:    ownerID,
		CreatedAt: now(),
	}
	if err := s.store.CreateLead(ctx, lead); err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}

	s.metrics.IncrLeadCreated()
	s.logger.Info("lead created",
		zap.String("user_id", ownerID),
		zap.String("lead_id", lead.ID),
		zap.String("stage", lead.Stage),
	)
	return lead, nil
}

func (s *LeadService) List(ctx context.Context, ownerID string) ([]domain.Lead, error) {
	ctx, span := leadTracer.Start(ctx, "LeadService.List")
	defer span.End()

	leads, err := s.store.ListLeads(ctx, ownerID, maxListSize)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	if leads == nil {
		leads = []domain.Lead{}
	}
	return leads, nil
}

func (s *LeadService) Get(ctx context.Context, ownerID, leadID string) (*domain.Lead, error) {
	ctx, span := leadTracer.Start(ctx, "LeadService.Get")
	defer span.End()
	span.SetAttributes(attribute.String("lead.id", leadID))

	lead, err := s.store.GetLead(ctx, ownerID, leadID)
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}
	if lead == nil {
		return nil, leadNotFound(leadID)
	}
	return lead, nil
}

// Update replaces every mutable field. Omitted stage/priority reset to defaults.
func (s *LeadService) Update(ctx context.Context, ownerID, leadID string, in *domain.LeadInput) (*domain.Lead, error) {
	ctx, span := leadTracer.Start(ctx, "LeadService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("lead.id", leadID))

	in.ApplyDefaults()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	lead, err := s.store.ReplaceLead(ctx, ownerID, leadID, in)
	if err != nil {
		return nil, fmt.Errorf("update lead: %w", err)
	}
	if lead == nil {
		return nil, leadNotFound(leadID)
	}
	return lead, nil
}

// SetStage moves a lead on the board and stamps its last interaction.
func (s *LeadService) SetStage(ctx context.Context, ownerID, leadID, stage string) error {
	ctx, span := leadTracer.Start(ctx, "LeadService.SetStage")
	defer span.End()
	span.SetAttributes(
		attribute.String("lead.id", leadID),
		attribute.String("lead.stage", stage),
	)

	if !domain.IsValidStage(stage) {
		return &domain.ErrValidation{Message: "Invalid stage"}
	}

	matched, err := s.store.SetLeadStage(ctx, ownerID, leadID, stage, now())
	if err != nil {
		return fmt.Errorf("set lead stage: %w", err)
	}
	if !matched {
		return leadNotFound(leadID)
	}

	s.metrics.IncrStageTransition(stage)
	s.logger.Debug("lead stage changed",
		zap.String("lead_id", leadID),
		zap.String("stage", stage),
	)
	return nil
}

func (s *LeadService) Delete(ctx context.Context, ownerID, leadID string) error {
	ctx, span := leadTracer.Start(ctx, "LeadService.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("lead.id", leadID))

	deleted, err := s.store.DeleteLead(ctx, ownerID, leadID)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if !deleted {
		return leadNotFound(leadID)
	}

	s.logger.Info("lead deleted",
		zap.String("user_id", ownerID),
		zap.String("lead_id", leadID),
	)
	return nil
}

// touch stamps the lead's last interaction. Used by the activity log.
func (s *LeadService) touch(ctx context.Context, ownerID, leadID string, at time.Time) (bool, error) {
	return s.store.TouchLead(ctx, ownerID, leadID, at)
}

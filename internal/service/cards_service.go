package service

import (
	"context"
	"fmt"

	"github.com/boddenberg/strike-crm/internal/domain"
	"github.com/boddenberg/strike-crm/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var cardTracer = otel.Tracer("service/cards")

// BusinessCardService keeps the single profile card of each user.
type BusinessCardService struct {
	store  port.BusinessCardStore
	logger *zap.Logger
}

func NewBusinessCardService(store port.BusinessCardStore, logger *zap.Logger) *BusinessCardService {
	return &BusinessCardService{store: store, logger: logger}
}

// Upsert replaces the owner's card. The new card gets a fresh id and
// creation time.
func (s *BusinessCardService) Upsert(ctx context.Context, ownerID string, in *domain.BusinessCardInput) (*domain.BusinessCard, error) {
	ctx, span := cardTracer.Start(ctx, "BusinessCardService.Upsert")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	card := &domain.BusinessCard{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Title:     in.Title,
		Company:   in.Company,
		Phone:     in.Phone,
		Email:     in.Email,
		Website:   in.Website,
		Template:  in.Template,
		UserID:    ownerID,
		CreatedAt: now(),
	}
	if err := s.store.ReplaceBusinessCard(ctx, card); err != nil {
		return nil, fmt.Errorf("replace business card: %w", err)
	}

	s.logger.Info("business card saved",
		zap.String("user_id", ownerID),
		zap.String("card_id", card.ID),
		zap.String("template", card.Template),
	)
	return card, nil
}

func (s *BusinessCardService) Get(ctx context.Context, ownerID string) (*domain.BusinessCard, error) {
	ctx, span := cardTracer.Start(ctx, "BusinessCardService.Get")
	defer span.End()

	card, err := s.store.GetBusinessCard(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get business card: %w", err)
	}
	if card == nil {
		return nil, &domain.ErrNotFound{Resource: "Business card"}
	}
	return card, nil
}

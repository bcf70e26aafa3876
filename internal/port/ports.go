// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
//
// Lookups return (nil, nil) when nothing matches; mutations report whether a
// document owned by the caller was matched. Callers turn misses into
// domain.ErrNotFound.
package port

import (
	"context"
	"time"

	"github.com/boddenberg/strike-crm/internal/domain"
)

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// UserStore persists accounts.
type UserStore interface {
	// CreateUser returns *domain.ErrConflict when the email is already taken.
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// LeadStore persists leads. Every method is scoped to the owning user.
type LeadStore interface {
	CreateLead(ctx context.Context, lead *domain.Lead) error
	ListLeads(ctx context.Context, ownerID string, limit int) ([]domain.Lead, error)
	GetLead(ctx context.Context, ownerID, leadID string) (*domain.Lead, error)
	ReplaceLead(ctx context.Context, ownerID, leadID string, in *domain.LeadInput) (*domain.Lead, error)
	SetLeadStage(ctx context.Context, ownerID, leadID, stage string, at time.Time) (bool, error)
	TouchLead(ctx context.Context, ownerID, leadID string, at time.Time) (bool, error)
	DeleteLead(ctx context.Context, ownerID, leadID string) (bool, error)
	CountLeadsByStage(ctx context.Context, ownerID string) (map[string]int64, error)
}

// ActivityStore persists the append-only activity log.
type ActivityStore interface {
	CreateActivity(ctx context.Context, activity *domain.Activity) error
	// ListActivitiesForLead returns newest first.
	ListActivitiesForLead(ctx context.Context, ownerID, leadID string, limit int) ([]domain.Activity, error)
	CountActivitiesSince(ctx context.Context, ownerID, activityType string, since time.Time) (int64, error)
	// RecentActivities returns newest first.
	RecentActivities(ctx context.Context, ownerID string, limit int) ([]domain.Activity, error)
}

// BusinessCardStore persists the single business card of each user.
type BusinessCardStore interface {
	// ReplaceBusinessCard deletes every card of card.UserID, then inserts card.
	ReplaceBusinessCard(ctx context.Context, card *domain.BusinessCard) error
	GetBusinessCard(ctx context.Context, ownerID string) (*domain.BusinessCard, error)
}

// Store is the full persistence surface used by the CRM.
type Store interface {
	UserStore
	LeadStore
	ActivityStore
	BusinessCardStore
	Ping(ctx context.Context) error
}

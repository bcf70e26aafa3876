// Package memstore is an in-memory implementation of port.Store used as a
// test double for the Mongo adapter in service and handler tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/boddenberg/strike-crm/internal/domain"
)

// Store keeps every collection in maps guarded by a single RWMutex.
// Values are copied in and out so callers never share memory with the store.
type Store struct {
	mu         sync.RWMutex
	users      map[string]domain.User // by email
	leads      map[string]domain.Lead
	activities []domain.Activity // insertion order
	cards      map[string]domain.BusinessCard
}

func New() *Store {
	return &Store{
		users: make(map[string]domain.User),
		leads: make(map[string]domain.Lead),
		cards: make(map[string]domain.BusinessCard),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// ---- users ----

func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Email]; ok {
		return &domain.ErrConflict{Message: "Email already registered"}
	}
	s.users[user.Email] = *user
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// ---- leads ----

func (s *Store) CreateLead(_ context.Context, lead *domain.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads[lead.ID] = *lead
	return nil
}

func (s *Store) ListLeads(_ context.Context, ownerID string, limit int) ([]domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Lead{}
	for _, l := range s.leads {
		if l.UserID != ownerID {
			continue
		}
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, l)
	}
	return out, nil
}

// owned returns the lead when it exists and belongs to ownerID. Callers hold the lock.
func (s *Store) owned(ownerID, leadID string) (domain.Lead, bool) {
	l, ok := s.leads[leadID]
	if !ok || l.UserID != ownerID {
		return domain.Lead{}, false
	}
	return l, true
}

func (s *Store) GetLead(_ context.Context, ownerID, leadID string) (*domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.owned(ownerID, leadID)
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (s *Store) ReplaceLead(_ context.Context, ownerID, leadID string, in *domain.LeadInput) (*domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.owned(ownerID, leadID)
	if !ok {
		return nil, nil
	}
	l.Name = in.Name
	l.Company = in.Company
	l.Phone = in.Phone
	l.Email = in.Email
	l.Address = in.Address
	l.Stage = in.Stage
	l.Priority = in.Priority
	l.Notes = in.Notes
	s.leads[leadID] = l
	return &l, nil
}

func (s *Store) SetLeadStage(_ context.Context, ownerID, leadID, stage string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.owned(ownerID, leadID)
	if !ok {
		return false, nil
	}
	l.Stage = stage
	l.LastInteraction = &at
	s.leads[leadID] = l
	return true, nil
}

func (s *Store) TouchLead(_ context.Context, ownerID, leadID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.owned(ownerID, leadID)
	if !ok {
		return false, nil
	}
	l.LastInteraction = &at
	s.leads[leadID] = l
	return true, nil
}

func (s *Store) DeleteLead(_ context.Context, ownerID, leadID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owned(ownerID, leadID); !ok {
		return false, nil
	}
	delete(s.leads, leadID)
	return true, nil
}

func (s *Store) CountLeadsByStage(_ context.Context, ownerID string) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int64)
	for _, l := range s.leads {
		if l.UserID == ownerID {
			counts[l.Stage]++
		}
	}
	return counts, nil
}

// ---- activities ----

func (s *Store) CreateActivity(_ context.Context, activity *domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = append(s.activities, *activity)
	return nil
}

// newestFirst filters under the read lock and sorts by created_at, then id,
// both descending. Same order as the Mongo adapter.
func (s *Store) newestFirst(match func(domain.Activity) bool, limit int) []domain.Activity {
	s.mu.RLock()
	out := []domain.Activity{}
	for i := len(s.activities) - 1; i >= 0; i-- {
		if match(s.activities[i]) {
			out = append(out, s.activities[i])
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Store) ListActivitiesForLead(_ context.Context, ownerID, leadID string, limit int) ([]domain.Activity, error) {
	return s.newestFirst(func(a domain.Activity) bool {
		return a.UserID == ownerID && a.LeadID == leadID
	}, limit), nil
}

func (s *Store) CountActivitiesSince(_ context.Context, ownerID, activityType string, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, a := range s.activities {
		if a.UserID == ownerID && a.ActivityType == activityType && !a.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *Store) RecentActivities(_ context.Context, ownerID string, limit int) ([]domain.Activity, error) {
	return s.newestFirst(func(a domain.Activity) bool {
		return a.UserID == ownerID
	}, limit), nil
}

// ---- business cards ----

func (s *Store) ReplaceBusinessCard(_ context.Context, card *domain.BusinessCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[card.UserID] = *card
	return nil
}

func (s *Store) GetBusinessCard(_ context.Context, ownerID string) (*domain.BusinessCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cards[ownerID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

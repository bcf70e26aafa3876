package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/boddenberg/strike-crm/internal/domain"
	"github.com/boddenberg/strike-crm/internal/infra/observability"
	"github.com/boddenberg/strike-crm/internal/infra/resilience"
	"github.com/boddenberg/strike-crm/internal/port"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var _ port.Store = (*Store)(nil)

func TestIsSuccessful(t *testing.T) {
	assert.True(t, isSuccessful(nil))
	assert.True(t, isSuccessful(&domain.ErrConflict{Message: "dup"}))
	assert.True(t, isSuccessful(context.Canceled))
	assert.False(t, isSuccessful(errors.New("socket closed")))
	assert.False(t, isSuccessful(context.DeadlineExceeded))
}

func TestOwnedBy(t *testing.T) {
	f := ownedBy("u1", "l1")
	require.Len(t, f, 2)
	assert.Equal(t, "_id", f[0].Key)
	assert.Equal(t, "l1", f[0].Value)
	assert.Equal(t, "user_id", f[1].Key)
	assert.Equal(t, "u1", f[1].Value)
}

func TestNewestFirst_TieBreaksOnID(t *testing.T) {
	require.Len(t, newestFirst, 2)
	assert.Equal(t, "created_at", newestFirst[0].Key)
	assert.Equal(t, -1, newestFirst[0].Value)
	assert.Equal(t, "_id", newestFirst[1].Key)
	assert.Equal(t, -1, newestFirst[1].Value)
}

// newTestStore connects to MONGO_TEST_URL using a throwaway database.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("MONGO_TEST_URL")
	if url == "" {
		t.Skip("MONGO_TEST_URL not set")
	}

	ctx := context.Background()
	s, err := Connect(ctx, Options{
		URL:        url,
		Database:   "crm_test_" + uuid.New().String()[:8],
		Timeout:    5 * time.Second,
		Resilience: resilience.Config{MaxRetries: 1, InitialBackoff: 100 * time.Millisecond, MaxConcurrency: 10},
	}, observability.NewMetrics(), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.EnsureIndexes(ctx))

	t.Cleanup(func() {
		_ = s.db.Drop(context.Background())
		_ = s.Disconnect(context.Background())
	})
	return s
}

func TestIntegration_Users(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	u := &domain.User{ID: uuid.New().String(), Email: "a@x.com", Name: "A", PasswordHash: "h", CreatedAt: now}
	require.NoError(t, s.CreateUser(ctx, u))

	err := s.CreateUser(ctx, &domain.User{ID: uuid.New().String(), Email: "a@x.com", Name: "B", CreatedAt: now})
	var conflict *domain.ErrConflict
	require.ErrorAs(t, err, &conflict)

	got, err := s.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "h", got.PasswordHash)
	assert.True(t, now.Equal(got.CreatedAt))

	missing, err := s.GetUserByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestIntegration_LeadsAndStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	lead := &domain.Lead{ID: uuid.New().String(), Name: "Acme", Stage: domain.StageNewLeads, Priority: domain.PriorityMedium, UserID: "alice", CreatedAt: now}
	require.NoError(t, s.CreateLead(ctx, lead))
	require.NoError(t, s.CreateLead(ctx, &domain.Lead{ID: uuid.New().String(), Name: "Other", Stage: domain.StageClosed, Priority: domain.PriorityLow, UserID: "bob", CreatedAt: now}))

	foreign, err := s.GetLead(ctx, "bob", lead.ID)
	require.NoError(t, err)
	assert.Nil(t, foreign)

	ok, err := s.SetLeadStage(ctx, "alice", lead.ID, domain.StageContacted, now)
	require.NoError(t, err)
	assert.True(t, ok)

	replaced, err := s.ReplaceLead(ctx, "alice", lead.ID, &domain.LeadInput{Name: "Acme 2", Stage: domain.StageContacted, Priority: domain.PriorityHigh})
	require.NoError(t, err)
	require.NotNil(t, replaced)
	assert.Equal(t, "Acme 2", replaced.Name)
	require.NotNil(t, replaced.LastInteraction)

	counts, err := s.CountLeadsByStage(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{domain.StageContacted: 1}, counts)

	ok, err = s.DeleteLead(ctx, "bob", lead.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIntegration_Activities(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	for i, typ := range []string{domain.ActivityCall, domain.ActivityEmail, domain.ActivityCall} {
		require.NoError(t, s.CreateActivity(ctx, &domain.Activity{
			ID: uuid.New().String(), LeadID: "l1", ActivityType: typ, Content: "x",
			UserID: "alice", CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	list, err := s.ListActivitiesForLead(ctx, "alice", "l1", 1000)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))

	calls, err := s.CountActivitiesSince(ctx, "alice", domain.ActivityCall, base)
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls)

	recent, err := s.RecentActivities(ctx, "alice", 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestIntegration_BusinessCard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	for _, name := range []string{"first", "second"} {
		require.NoError(t, s.ReplaceBusinessCard(ctx, &domain.BusinessCard{
			ID: uuid.New().String(), Name: name, Template: domain.DefaultCardTemplate, UserID: "alice", CreatedAt: now,
		}))
	}

	n, err := s.db.Collection(cardsCollection).CountDocuments(ctx, map[string]string{"user_id": "alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	card, err := s.GetBusinessCard(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.Equal(t, "second", card.Name)
}

func TestIntegration_ActivitiesSameMillisecond(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Now().UTC().Truncate(time.Millisecond)

	for _, id := range []string{"b", "c", "a"} {
		require.NoError(t, s.CreateActivity(ctx, &domain.Activity{
			ID: id, LeadID: "l1", ActivityType: domain.ActivityNote, Content: "x", UserID: "alice", CreatedAt: at,
		}))
	}

	list, err := s.ListActivitiesForLead(ctx, "alice", "l1", 1000)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

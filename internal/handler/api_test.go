package handler_test

import (
	"net/http"
	"testing"

	"github.com/boddenberg/strike-crm/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, srv *testServer, email string) string {
	t.Helper()
	rec := srv.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": email, "password": "secret", "name": "Test User", "company": "Acme",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tok := decode[domain.TokenResponse](t, rec)
	require.Equal(t, "bearer", tok.TokenType)
	return tok.AccessToken
}

func createLead(t *testing.T, srv *testServer, token string, body map[string]any) domain.Lead {
	t.Helper()
	rec := srv.do(t, http.MethodPost, "/api/leads", token, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[domain.Lead](t, rec)
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "alice@example.com")

	rec := srv.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]any](t, rec)
	assert.Equal(t, "alice@example.com", me["email"])
	assert.Equal(t, "Acme", me["company"])
	assert.NotContains(t, me, "hashed_password")
	assert.NotContains(t, me, "PasswordHash")

	rec = srv.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "alice@example.com", "password": "x", "name": "Again",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already registered", decode[map[string]string](t, rec)["detail"])

	rec = srv.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "alice@example.com", "password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[domain.TokenResponse](t, rec)
	assert.NotEmpty(t, login.AccessToken)

	rec = srv.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "alice@example.com", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "Incorrect email or password", decode[map[string]string](t, rec)["detail"])
}

func TestLeadLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "alice@example.com")

	lead := createLead(t, srv, token, map[string]any{"name": "Acme", "phone": "555-0100"})
	assert.Equal(t, domain.StageNewLeads, lead.Stage)
	assert.Equal(t, domain.PriorityMedium, lead.Priority)
	assert.Nil(t, lead.LastInteraction)

	rec := srv.do(t, http.MethodGet, "/api/leads", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Lead](t, rec), 1)

	rec = srv.do(t, http.MethodPut, "/api/leads/"+lead.ID, token, map[string]any{
		"name": "Acme Corp", "priority": "high",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[domain.Lead](t, rec)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.Equal(t, domain.PriorityHigh, updated.Priority)
	assert.Nil(t, updated.Phone)

	rec = srv.do(t, http.MethodPatch, "/api/leads/"+lead.ID+"/stage?stage=Follow-up", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]bool](t, rec)["success"])

	rec = srv.do(t, http.MethodGet, "/api/leads/"+lead.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[domain.Lead](t, rec)
	assert.Equal(t, domain.StageFollowUp, got.Stage)
	assert.NotNil(t, got.LastInteraction)

	rec = srv.do(t, http.MethodDelete, "/api/leads/"+lead.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/leads/"+lead.ID, token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Lead not found", decode[map[string]string](t, rec)["detail"])
}

func TestSetStage_InvalidValues(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "alice@example.com")
	lead := createLead(t, srv, token, map[string]any{"name": "Acme"})

	for _, q := range []string{"?stage=Won", "?stage=closed", ""} {
		rec := srv.do(t, http.MethodPatch, "/api/leads/"+lead.ID+"/stage"+q, token, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Equal(t, "Invalid stage", decode[map[string]string](t, rec)["detail"])
	}

	rec := srv.do(t, http.MethodGet, "/api/leads/"+lead.ID, token, nil)
	got := decode[domain.Lead](t, rec)
	assert.Equal(t, domain.StageNewLeads, got.Stage)
	assert.Nil(t, got.LastInteraction)
}

func TestCreateLead_InvalidStage(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "alice@example.com")

	rec := srv.do(t, http.MethodPost, "/api/leads", token, map[string]any{"name": "Acme", "stage": "Won"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOwnershipIsolation(t *testing.T) {
	srv := newTestServer(t)
	alice := register(t, srv, "alice@example.com")
	bob := register(t, srv, "bob@example.com")

	lead := createLead(t, srv, alice, map[string]any{"name": "Alice's lead"})
	path := "/api/leads/" + lead.ID

	for _, rt := range []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, path, nil},
		{http.MethodPut, path, map[string]any{"name": "stolen"}},
		{http.MethodPatch, path + "/stage?stage=Closed", nil},
		{http.MethodDelete, path, nil},
		{http.MethodGet, path + "/activities", nil},
		{http.MethodPost, "/api/activities", map[string]any{
			"lead_id": lead.ID, "activity_type": "note", "content": "sneaky",
		}},
	} {
		rec := srv.do(t, rt.method, rt.path, bob, rt.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", rt.method, rt.path)
	}

	rec := srv.do(t, http.MethodGet, "/api/leads", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]domain.Lead](t, rec))

	rec = srv.do(t, http.MethodGet, path, alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[domain.Lead](t, rec)
	assert.Equal(t, "Alice's lead", got.Name)
	assert.Equal(t, domain.StageNewLeads, got.Stage)
	assert.Nil(t, got.LastInteraction)
}

func TestActivityFlow(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "alice@example.com")
	lead := createLead(t, srv, token, map[string]any{"name": "Acme"})

	rec := srv.do(t, http.MethodPost, "/api/activities", token, map[string]any{
		"lead_id": lead.ID, "activity_type": "call", "content": "intro",
		"outcome": "answered", "duration": 5,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	act := decode[domain.Activity](t, rec)

	rec = srv.do(t, http.MethodGet, "/api/leads/"+lead.ID, token, nil)
	got := decode[domain.Lead](t, rec)
	require.NotNil(t, got.LastInteraction)
	assert.True(t, act.CreatedAt.Equal(*got.LastInteraction))

	rec = srv.do(t, http.MethodGet, "/api/leads/"+lead.ID+"/activities", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]domain.Activity](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, act.ID, list[0].ID)

	rec = srv.do(t, http.MethodPost, "/api/activities", token, map[string]any{
		"lead_id": "missing", "activity_type": "note", "content": "x",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBusinessCardFlow(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "alice@example.com")

	rec := srv.do(t, http.MethodGet, "/api/business-card", token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Business card not found", decode[map[string]string](t, rec)["detail"])

	card := map[string]any{
		"name": "Alice", "title": "CEO", "company": "Acme", "phone": "555", "email": "alice@acme.test",
	}
	rec = srv.do(t, http.MethodPost, "/api/business-card", token, card)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode[domain.BusinessCard](t, rec)
	assert.Equal(t, "professional", first.Template)

	card["name"] = "Alice B."
	card["template"] = "minimal"
	rec = srv.do(t, http.MethodPost, "/api/business-card", token, card)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/business-card", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[domain.BusinessCard](t, rec)
	assert.Equal(t, "Alice B.", got.Name)
	assert.Equal(t, "minimal", got.Template)
	assert.NotEqual(t, first.ID, got.ID)
}

func TestDashboardStats(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "alice@example.com")

	rec := srv.do(t, http.MethodGet, "/api/dashboard/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	empty := decode[map[string]any](t, rec)
	assert.Equal(t, float64(0), empty["total_leads"])
	assert.Equal(t, map[string]any{}, empty["leads_by_stage"])
	assert.Equal(t, []any{}, empty["recent_activities"])

	a := createLead(t, srv, token, map[string]any{"name": "A"})
	createLead(t, srv, token, map[string]any{"name": "B", "stage": "Contacted"})
	createLead(t, srv, token, map[string]any{"name": "C", "stage": "Contacted"})

	for _, typ := range []string{"call", "email", "email", "note"} {
		rec := srv.do(t, http.MethodPost, "/api/activities", token, map[string]any{
			"lead_id": a.ID, "activity_type": typ, "content": "x",
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = srv.do(t, http.MethodGet, "/api/dashboard/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[domain.DashboardStats](t, rec)
	assert.Equal(t, int64(3), stats.TotalLeads)
	assert.Equal(t, map[string]int64{"New Leads": 1, "Contacted": 2}, stats.LeadsByStage)
	assert.Equal(t, int64(1), stats.ThisWeekCalls)
	assert.Equal(t, int64(2), stats.ThisWeekEmails)
	assert.Len(t, stats.RecentActivities, 4)
}

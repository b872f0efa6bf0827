package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	directorystore "caseworks/internal/directory/store"
	"caseworks/internal/timesession/handler"
	"caseworks/internal/timesession/models"
	"caseworks/internal/timesession/service"
	sessionstore "caseworks/internal/timesession/store"
	id "caseworks/pkg/domain"
	"caseworks/pkg/testutil"
)

type fixture struct {
	router        chi.Router
	beneficiaryID id.BeneficiaryID
	userID        string
	now           time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := directorystore.NewInMemory()
	beneficiaryID := id.BeneficiaryID(uuid.New())
	dir.AddBeneficiary(beneficiaryID)

	svc, err := service.New(sessionstore.NewInMemory(), dir)
	require.NoError(t, err)

	router := chi.NewRouter()
	handler.New(svc, nil).Register(router)

	return &fixture{
		router:        router,
		beneficiaryID: beneficiaryID,
		userID:        uuid.NewString(),
		now:           time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) startSession(t *testing.T, at time.Time) *models.TimeSession {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/sessions/start", map[string]any{
		"beneficiary_id": f.beneficiaryID.String(),
		"activity_type":  "home visit",
	})
	req = testutil.WithActor(req, f.userID, "agent")
	req = testutil.WithTime(req, at)
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	return testutil.UnmarshalResponse[models.TimeSession](t, rr)
}

func TestStartSession(t *testing.T) {
	f := newFixture(t)

	session := f.startSession(t, f.now)
	assert.True(t, session.IsActive)
	assert.Equal(t, f.now, session.StartTime)
}

func TestStartSessionConflictsWhileFresh(t *testing.T) {
	f := newFixture(t)
	f.startSession(t, f.now)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/sessions/start", map[string]any{
		"beneficiary_id": f.beneficiaryID.String(),
		"activity_type":  "home visit",
	})
	req = testutil.WithActor(req, f.userID, "agent")
	req = testutil.WithTime(req, f.now.Add(time.Hour))
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusConflict)
	testutil.AssertErrorCode(t, rr, "conflict")
}

func TestStartSessionReclaimsStaleTimer(t *testing.T) {
	f := newFixture(t)
	stale := f.startSession(t, f.now)

	replacement := f.startSession(t, f.now.Add(13*time.Hour))
	assert.NotEqual(t, stale.ID, replacement.ID)
	assert.True(t, replacement.IsActive)

	// the reclaimed session carries a visible auto-close marker
	req := testutil.NewRequest(t, http.MethodGet, "/sessions/"+stale.ID.String())
	req = testutil.WithActor(req, f.userID, "agent")
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	reclaimed := testutil.UnmarshalResponse[models.TimeSession](t, rr)
	assert.False(t, reclaimed.IsActive)
	assert.Contains(t, reclaimed.Notes, "auto-closed")
}

func TestStartSessionWithoutActivityType(t *testing.T) {
	f := newFixture(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/sessions/start", map[string]any{
		"beneficiary_id": f.beneficiaryID.String(),
	})
	req = testutil.WithActor(req, f.userID, "agent")
	req = testutil.WithTime(req, f.now)
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)

	session := testutil.UnmarshalResponse[models.TimeSession](t, rr)
	assert.True(t, session.IsActive)
	assert.Empty(t, session.ActivityType)
}

func TestStartSessionUnknownBeneficiaryIsNotFound(t *testing.T) {
	f := newFixture(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/sessions/start", map[string]any{
		"beneficiary_id": uuid.NewString(),
		"activity_type":  "home visit",
	})
	req = testutil.WithActor(req, f.userID, "agent")
	req = testutil.WithTime(req, f.now)
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
	testutil.AssertErrorCode(t, rr, "not_found")
}

func TestEndSession(t *testing.T) {
	f := newFixture(t)
	session := f.startSession(t, f.now)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/sessions/"+session.ID.String()+"/end", nil)
	req = testutil.WithActor(req, f.userID, "agent")
	req = testutil.WithTime(req, f.now.Add(45*time.Minute))
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	result := testutil.UnmarshalResponse[service.EndResult](t, rr)
	assert.True(t, result.Closed)
	require.NotNil(t, result.Session)
	require.NotNil(t, result.Session.DurationMinutes)
	assert.Equal(t, 45, *result.Session.DurationMinutes)
}

func TestEndSessionPersistsNotes(t *testing.T) {
	f := newFixture(t)
	session := f.startSession(t, f.now)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/sessions/"+session.ID.String()+"/end", map[string]any{
		"notes": "debrief written up",
	})
	req = testutil.WithActor(req, f.userID, "agent")
	req = testutil.WithTime(req, f.now.Add(30*time.Minute))
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	result := testutil.UnmarshalResponse[service.EndResult](t, rr)
	require.NotNil(t, result.Session)
	assert.Contains(t, result.Session.Notes, "debrief written up")

	// the notes stick to the stored session, not just the response
	req = testutil.NewRequest(t, http.MethodGet, "/sessions/"+session.ID.String())
	req = testutil.WithActor(req, f.userID, "agent")
	rr = testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	stored := testutil.UnmarshalResponse[models.TimeSession](t, rr)
	assert.Contains(t, stored.Notes, "debrief written up")
}

func TestEndSessionFallsBackToLatest(t *testing.T) {
	f := newFixture(t)
	session := f.startSession(t, f.now)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/sessions/"+uuid.NewString()+"/end", nil)
	req = testutil.WithActor(req, f.userID, "agent")
	req = testutil.WithTime(req, f.now.Add(time.Hour))
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	result := testutil.UnmarshalResponse[service.EndResult](t, rr)
	assert.True(t, result.Closed)
	require.NotNil(t, result.Session)
	assert.Equal(t, session.ID, result.Session.ID)
}

func TestEndSessionNothingOpenIsNoOp(t *testing.T) {
	f := newFixture(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/sessions/"+uuid.NewString()+"/end", nil)
	req = testutil.WithActor(req, f.userID, "agent")
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	result := testutil.UnmarshalResponse[service.EndResult](t, rr)
	assert.False(t, result.Closed)
	assert.Nil(t, result.Session)
}

func TestListSessionsScopedToCaller(t *testing.T) {
	f := newFixture(t)
	f.startSession(t, f.now)

	req := testutil.NewRequest(t, http.MethodGet, "/sessions?active=true")
	req = testutil.WithActor(req, f.userID, "agent")
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	sessions := testutil.UnmarshalResponse[[]*models.TimeSession](t, rr)
	assert.Len(t, *sessions, 1)

	// another caller sees none of them
	req = testutil.NewRequest(t, http.MethodGet, "/sessions")
	req = testutil.WithActor(req, uuid.NewString(), "agent")
	rr = testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	sessions = testutil.UnmarshalResponse[[]*models.TimeSession](t, rr)
	assert.Len(t, *sessions, 0)
}

func TestStartSessionRejectsUnauthenticated(t *testing.T) {
	f := newFixture(t)
	req := testutil.NewJSONRequest(t, http.MethodPost, "/sessions/start", map[string]any{
		"beneficiary_id": f.beneficiaryID.String(),
		"activity_type":  "home visit",
	})
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

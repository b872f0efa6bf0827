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
	"caseworks/internal/stay/handler"
	"caseworks/internal/stay/models"
	"caseworks/internal/stay/service"
	staystore "caseworks/internal/stay/store"
	id "caseworks/pkg/domain"
	"caseworks/pkg/testutil"
)

type fixture struct {
	router        chi.Router
	dir           *directorystore.InMemoryDirectory
	beneficiaryID id.BeneficiaryID
	userID        string
	now           time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := directorystore.NewInMemory()
	beneficiaryID := id.BeneficiaryID(uuid.New())
	dir.AddBeneficiary(beneficiaryID)

	svc, err := service.New(staystore.NewInMemory(), dir)
	require.NoError(t, err)

	router := chi.NewRouter()
	handler.New(svc, nil).Register(router)

	return &fixture{
		router:        router,
		dir:           dir,
		beneficiaryID: beneficiaryID,
		userID:        uuid.NewString(),
		now:           time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) createStay(t *testing.T, body map[string]any) *models.Stay {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/stays", body)
	req = testutil.WithActor(req, f.userID, "agent")
	req = testutil.WithTime(req, f.now)
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	return testutil.UnmarshalResponse[models.Stay](t, rr)
}

func TestCreateStay(t *testing.T) {
	f := newFixture(t)

	stay := f.createStay(t, map[string]any{
		"beneficiary_id": f.beneficiaryID.String(),
		"dormitory":      "A",
		"bed":            "12",
		"check_in_date":  f.now,
	})
	assert.Equal(t, models.StatusActive, stay.Status)
	assert.Equal(t, "12", stay.Bed)
}

func TestCreateStayConflicts(t *testing.T) {
	f := newFixture(t)
	f.createStay(t, map[string]any{
		"beneficiary_id": f.beneficiaryID.String(),
		"dormitory":      "A",
		"bed":            "12",
		"check_in_date":  f.now,
	})

	t.Run("same beneficiary twice", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/stays", map[string]any{
			"beneficiary_id": f.beneficiaryID.String(),
			"dormitory":      "B",
			"bed":            "3",
			"check_in_date":  f.now,
		})
		req = testutil.WithActor(req, f.userID, "agent")
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusConflict)
		testutil.AssertErrorCode(t, rr, "conflict")
	})

	t.Run("same bed twice", func(t *testing.T) {
		other := id.BeneficiaryID(uuid.New())
		f.dir.AddBeneficiary(other)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/stays", map[string]any{
			"beneficiary_id": other.String(),
			"dormitory":      "A",
			"bed":            "12",
			"check_in_date":  f.now,
		})
		req = testutil.WithActor(req, f.userID, "agent")
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusConflict)
	})

	t.Run("unknown beneficiary", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/stays", map[string]any{
			"beneficiary_id": uuid.NewString(),
			"dormitory":      "C",
			"bed":            "1",
			"check_in_date":  f.now,
		})
		req = testutil.WithActor(req, f.userID, "agent")
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}

func TestCreateStayRejectsUnauthenticated(t *testing.T) {
	f := newFixture(t)
	req := testutil.NewJSONRequest(t, http.MethodPost, "/stays", map[string]any{
		"beneficiary_id": f.beneficiaryID.String(),
		"dormitory":      "A",
		"bed":            "12",
		"check_in_date":  f.now,
	})
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func TestUpdateStayForbiddenForStranger(t *testing.T) {
	f := newFixture(t)
	stay := f.createStay(t, map[string]any{
		"beneficiary_id": f.beneficiaryID.String(),
		"dormitory":      "A",
		"bed":            "12",
		"check_in_date":  f.now,
	})

	req := testutil.NewJSONRequest(t, http.MethodPatch, "/stays/"+stay.ID.String(), map[string]any{
		"bed": "14",
	})
	req = testutil.WithActor(req, uuid.NewString(), "agent")
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusForbidden)
}

func TestEndThenReallocate(t *testing.T) {
	f := newFixture(t)
	stay := f.createStay(t, map[string]any{
		"beneficiary_id": f.beneficiaryID.String(),
		"dormitory":      "A",
		"bed":            "12",
		"check_in_date":  f.now,
	})

	endReq := testutil.NewJSONRequest(t, http.MethodPatch, "/stays/"+stay.ID.String(), map[string]any{
		"status":         "ENDED",
		"check_out_date": f.now.Add(24 * time.Hour),
	})
	endReq = testutil.WithActor(endReq, f.userID, "agent")
	rr := testutil.DoRequest(f.router, endReq)
	testutil.AssertStatus(t, rr, http.StatusOK)

	// bed and beneficiary are both free again
	f.createStay(t, map[string]any{
		"beneficiary_id": f.beneficiaryID.String(),
		"dormitory":      "A",
		"bed":            "12",
		"check_in_date":  f.now.Add(48 * time.Hour),
	})
}

func TestListStaysFilters(t *testing.T) {
	f := newFixture(t)
	f.createStay(t, map[string]any{
		"beneficiary_id": f.beneficiaryID.String(),
		"dormitory":      "A",
		"bed":            "12",
		"check_in_date":  f.now,
	})

	req := testutil.NewRequest(t, http.MethodGet, "/stays?status=ACTIVE")
	req = testutil.WithActor(req, f.userID, "agent")
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	stays := testutil.UnmarshalResponse[[]*models.Stay](t, rr)
	assert.Len(t, *stays, 1)

	req = testutil.NewRequest(t, http.MethodGet, "/stays?status=BOGUS")
	req = testutil.WithActor(req, f.userID, "agent")
	rr = testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

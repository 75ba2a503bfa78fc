package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundlane/studio-booking-backend/internal/domain"
	"github.com/soundlane/studio-booking-backend/internal/repository"
	"github.com/soundlane/studio-booking-backend/internal/service"
)

type stubOrderRepo struct {
	orders   map[uuid.UUID]*domain.BookingOrder
	versions map[uuid.UUID]int
}

func (r *stubOrderRepo) Create(_ context.Context, order *domain.BookingOrder) error {
	r.orders[order.ID()] = order
	r.versions[order.ID()] = 1
	return nil
}

func (r *stubOrderRepo) Save(_ context.Context, order *domain.BookingOrder, expectedVersion int) error {
	if r.versions[order.ID()] != expectedVersion {
		return repository.ErrVersionConflict
	}
	r.versions[order.ID()] = expectedVersion + 1
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.BookingOrder, int, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, 0, repository.ErrNotFound
	}
	return order, r.versions[id], nil
}

func (r *stubOrderRepo) FindRecent(_ context.Context, _ int) ([]repository.OrderSummary, error) {
	return []repository.OrderSummary{}, nil
}

func (r *stubOrderRepo) FindDueCompletion(_ context.Context, _ time.Time, _ int) ([]uuid.UUID, error) {
	return nil, nil
}

type stubSchedule struct{}

func (stubSchedule) BookedRanges(_ context.Context, _, _ uuid.UUID, _ domain.TimeRange, _ *uuid.UUID) ([]domain.TimeRange, error) {
	return nil, nil
}

type stubCatalog struct{}

func (stubCatalog) AllowedServices(_ context.Context, _ uuid.UUID) (domain.ServiceSet, error) {
	return domain.NewServiceSet("recording", "mixing"), nil
}

type stubEventStore struct{}

func (stubEventStore) SaveEvents(_ context.Context, _ string, _ string, _ int, _ []domain.Event) error {
	return nil
}

func (stubEventStore) LoadEvents(_ context.Context, _ string) ([]repository.EventRecord, error) {
	return nil, nil
}

type stubPublisher struct{}

func (stubPublisher) PublishEvent(_ context.Context, _ string, _ string, _ domain.Event) error {
	return nil
}

func newTestServer(now time.Time) (*http.ServeMux, *stubOrderRepo) {
	repo := &stubOrderRepo{
		orders:   make(map[uuid.UUID]*domain.BookingOrder),
		versions: make(map[uuid.UUID]int),
	}
	svc := service.NewBookingService(repo, stubSchedule{}, stubCatalog{}, stubEventStore{}, stubPublisher{},
		func() time.Time { return now })

	mux := http.NewServeMux()
	NewHandler(svc).RegisterRoutes(mux)
	return mux, repo
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestCreateBookingEndpoint(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	mux, repo := newTestServer(now)

	rec := postJSON(t, mux, "/api/bookings", CreateBookingRequest{
		StudioID:           uuid.New(),
		ClientID:           uuid.New(),
		AssignedEmployeeID: uuid.New(),
		ServiceType:        "recording",
		Start:              now.Add(48 * time.Hour),
		End:                now.Add(50 * time.Hour),
		Amount:             decimal.RequireFromString("120.00"),
		Currency:           domain.CurrencyUSD,
		PaymentMethod:      domain.PaymentMethodCard,
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp orderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.BookingStatusCreated, resp.BookingStatus)
	assert.Equal(t, domain.PaymentStatusPending, resp.PaymentStatus)
	assert.Len(t, repo.orders, 1)
}

func TestCreateBookingEndpointRejectsBadService(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	mux, _ := newTestServer(now)

	rec := postJSON(t, mux, "/api/bookings", CreateBookingRequest{
		StudioID:           uuid.New(),
		ClientID:           uuid.New(),
		AssignedEmployeeID: uuid.New(),
		ServiceType:        "karaoke",
		Start:              now.Add(48 * time.Hour),
		End:                now.Add(50 * time.Hour),
		Amount:             decimal.RequireFromString("120.00"),
		Currency:           domain.CurrencyUSD,
		PaymentMethod:      domain.PaymentMethodCard,
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestTransitionEndpoints(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	mux, repo := newTestServer(now)

	rec := postJSON(t, mux, "/api/bookings", CreateBookingRequest{
		StudioID:           uuid.New(),
		ClientID:           uuid.New(),
		AssignedEmployeeID: uuid.New(),
		ServiceType:        "mixing",
		Start:              now.Add(48 * time.Hour),
		End:                now.Add(50 * time.Hour),
		Amount:             decimal.RequireFromString("80.00"),
		Currency:           domain.CurrencyEUR,
		PaymentMethod:      domain.PaymentMethodCash,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created orderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	base := fmt.Sprintf("/api/bookings/%s", created.OrderID)

	rec = postJSON(t, mux, base+"/confirm", nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// A second confirm hits a state guard.
	rec = postJSON(t, mux, base+"/confirm", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = postJSON(t, mux, base+"/payment/pay", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, mux, base+"/cancel", cancelRequest{Reason: "client request"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	order, _, err := repo.FindByID(context.Background(), created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, order.Booking().Status())
	assert.Equal(t, domain.PaymentStatusRefunded, order.Payment().Status())
}

func TestGetBookingEndpoint(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	mux, _ := newTestServer(now)

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/bookings/not-a-uuid", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

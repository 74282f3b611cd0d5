package create_booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	createBooking "github.com/d1sq/BMS-BookingEngine/internal/usecase/create_booking"
)

type testLogger struct{}

func (l *testLogger) Info(format string, v ...interface{})  {}
func (l *testLogger) Warn(format string, v ...interface{})  {}
func (l *testLogger) Error(format string, v ...interface{}) {}

type fakeUseCase struct {
	response *createBooking.Response
	err      error

	lastRequest *createBooking.Request
}

func (uc *fakeUseCase) Execute(ctx context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	uc.lastRequest = req
	if uc.err != nil {
		return nil, uc.err
	}
	return uc.response, nil
}

func newRouter(uc CreateBookingUseCase) *mux.Router {
	router := mux.NewRouter()
	handler := NewHandler(uc, &testLogger{})
	router.HandleFunc("/api/v1/businesses/{businessId}/bookings", handler.Handle).Methods(http.MethodPost)
	return router
}

const validBody = `{
	"serviceId": 42,
	"bookingDate": "2026-03-15",
	"startTime": "10:00",
	"customerName": "Ivan Petrov",
	"customerPhone": "+79990001122"
}`

func doRequest(t *testing.T, uc CreateBookingUseCase, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/businesses/1/bookings", strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	newRouter(uc).ServeHTTP(rec, req)
	return rec
}

func TestHandle_Created(t *testing.T) {
	uc := &fakeUseCase{response: &createBooking.Response{
		ID:              10,
		PublicRef:       "ref-abc",
		BusinessID:      1,
		ServiceID:       42,
		BookingDate:     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00",
		DurationMinutes: 30,
		Status:          string(domain.StatusConfirmed),
		PaymentStatus:   string(domain.PaymentPayAtVenue),
		BusinessName:    "Salon",
		ServiceName:     "Haircut",
		ServicePrice:    500,
		CancelToken:     "token-1",
		CancelURL:       "https://example.com/api/v1/bookings/10/cancel?token=token-1",
		CalendarURL:     "https://example.com/api/v1/bookings/10/calendar.ics?token=token-1",
		CreatedAt:       time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}}

	rec := doRequest(t, uc, validBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(10), resp.ID)
	assert.Equal(t, "2026-03-15", resp.BookingDate)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, "Salon", resp.BusinessName)
	assert.Equal(t, "https://example.com/api/v1/bookings/10/calendar.ics?token=token-1", resp.CalendarURL)
	assert.Nil(t, resp.ReservedUntil)

	require.NotNil(t, uc.lastRequest)
	assert.Equal(t, int64(1), uc.lastRequest.BusinessID)
	assert.Equal(t, int64(42), uc.lastRequest.ServiceID)
}

func TestHandle_IdempotencyHeaderWins(t *testing.T) {
	uc := &fakeUseCase{response: &createBooking.Response{Status: string(domain.StatusConfirmed)}}

	body := `{
		"serviceId": 42,
		"bookingDate": "2026-03-15",
		"startTime": "10:00",
		"customerName": "Ivan",
		"customerPhone": "+79990001122",
		"idempotencyKey": "from-body"
	}`
	rec := doRequest(t, uc, body, map[string]string{"Idempotency-Key": "from-header"})
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NotNil(t, uc.lastRequest.IdempotencyKey)
	assert.Equal(t, "from-header", *uc.lastRequest.IdempotencyKey)
}

func TestHandle_SlotConflictReturnsAlternatives(t *testing.T) {
	uc := &fakeUseCase{err: &createBooking.SlotUnavailableError{
		Alternatives: []domain.AvailableSlot{
			{StartTime: "10:30", DurationMinutes: 30, AvailableSpots: 1, TotalSpots: 1},
			{StartTime: "11:00", DurationMinutes: 30, AvailableSpots: 1, TotalSpots: 1},
		},
	}}

	rec := doRequest(t, uc, validBody, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp ConflictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Message)
	require.Len(t, resp.AvailableSlots, 2)
	assert.Equal(t, "10:30", resp.AvailableSlots[0].StartTime)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "duplicate request", err: createBooking.ErrDuplicateRequest, wantCode: http.StatusConflict},
		{name: "business not found", err: createBooking.ErrBusinessNotFound, wantCode: http.StatusNotFound},
		{name: "service not found", err: createBooking.ErrServiceNotFound, wantCode: http.StatusNotFound},
		{name: "invalid date", err: createBooking.ErrInvalidDate, wantCode: http.StatusBadRequest},
		{name: "invalid time slot", err: createBooking.ErrInvalidTimeSlot, wantCode: http.StatusBadRequest},
		{name: "invalid input", err: createBooking.ErrInvalidInput, wantCode: http.StatusBadRequest},
		{name: "internal error", err: createBooking.ErrInternal, wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, &fakeUseCase{err: tt.err}, validBody, nil)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestHandle_BadRequests(t *testing.T) {
	uc := &fakeUseCase{}

	t.Run("malformed json", func(t *testing.T) {
		rec := doRequest(t, uc, "{not json", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad date format", func(t *testing.T) {
		body := strings.Replace(validBody, "2026-03-15", "15.03.2026", 1)
		rec := doRequest(t, uc, body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad business id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/businesses/abc/bookings", strings.NewReader(validBody))
		rec := httptest.NewRecorder()
		newRouter(uc).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

package export_calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d1sq/BMS-BookingEngine/internal/service/bookings"
	"github.com/d1sq/BMS-BookingEngine/internal/service/bookings/models"
)

type testLogger struct{}

func (l *testLogger) Info(format string, v ...interface{})  {}
func (l *testLogger) Warn(format string, v ...interface{})  {}
func (l *testLogger) Error(format string, v ...interface{}) {}

type fakeService struct {
	event *models.CalendarEvent
	err   error
}

func (s *fakeService) CalendarEvent(ctx context.Context, id int64, token string) (*models.CalendarEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.event, nil
}

func doRequest(t *testing.T, svc *fakeService, url string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewHandler(svc, &testLogger{})
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/bookings/{bookingId}/calendar.ics", h.Handle).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func testEvent() *models.CalendarEvent {
	return &models.CalendarEvent{
		PublicRef:    "ref-abc",
		BusinessName: "Salon",
		ServiceName:  "Haircut",
		StartsAt:     time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
		EndsAt:       time.Date(2026, 3, 15, 10, 45, 0, 0, time.UTC),
		CreatedAt:    time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
}

func TestHandle_ReturnsICSFile(t *testing.T) {
	svc := &fakeService{event: testEvent()}

	rec := doRequest(t, svc, "/api/v1/bookings/10/calendar.ics?token=token-1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")

	body := rec.Body.String()
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "UID:ref-abc")
	assert.Contains(t, body, "DTSTART:20260315T100000")
	assert.Contains(t, body, "DTEND:20260315T104500")
	assert.Contains(t, body, `SUMMARY:Haircut - Salon`)
	assert.Contains(t, body, "END:VCALENDAR")
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
	}{
		{"not found", bookings.ErrBookingNotFound, http.StatusNotFound},
		{"invalid token", bookings.ErrInvalidToken, http.StatusForbidden},
		{"cancelled", bookings.ErrBookingCancelled, http.StatusGone},
		{"internal", bookings.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, &fakeService{err: tt.svcErr}, "/api/v1/bookings/10/calendar.ics?token=token-1")
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandle_MissingToken(t *testing.T) {
	rec := doRequest(t, &fakeService{event: testEvent()}, "/api/v1/bookings/10/calendar.ics")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandle_InvalidBookingID(t *testing.T) {
	rec := doRequest(t, &fakeService{event: testEvent()}, "/api/v1/bookings/abc/calendar.ics?token=token-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEscapeICS(t *testing.T) {
	assert.Equal(t, `Cut\, wash\; dry`, escapeICS("Cut, wash; dry"))
	assert.Equal(t, `line\nbreak`, escapeICS("line\nbreak"))
	assert.Equal(t, `back\\slash`, escapeICS(`back\slash`))
}

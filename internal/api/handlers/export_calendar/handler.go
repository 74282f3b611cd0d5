package export_calendar

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/d1sq/BMS-BookingEngine/internal/api/handlers"
	"github.com/d1sq/BMS-BookingEngine/internal/service/bookings"
)

const (
	msgInvalidBookingID = "некорректный идентификатор бронирования"
	msgMissingToken     = "токен доступа обязателен"
	msgBookingNotFound  = "бронирование не найдено"
	msgInvalidToken     = "неверный токен доступа"
	msgBookingCancelled = "бронирование отменено"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/{bookingId}/calendar.ics?token=...
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /bookings/{id}/calendar.ics - Invalid booking id: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		h.logger.Warn("GET /bookings/{id}/calendar.ics - Missing token: booking_id=%d", bookingID)
		handlers.RespondBadRequest(w, msgMissingToken)
		return
	}

	event, err := h.service.CalendarEvent(r.Context(), bookingID, token)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("GET /bookings/{id}/calendar.ics - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, bookings.ErrInvalidToken):
			h.logger.Warn("GET /bookings/{id}/calendar.ics - Invalid token: booking_id=%d", bookingID)
			handlers.RespondForbidden(w, msgInvalidToken)

		case errors.Is(err, bookings.ErrBookingCancelled):
			h.logger.Warn("GET /bookings/{id}/calendar.ics - Booking cancelled: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusGone, msgBookingCancelled)

		default:
			h.logger.Error("GET /bookings/{id}/calendar.ics - Failed: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="booking.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(renderICS(event))); err != nil {
		h.logger.Error("GET /bookings/{id}/calendar.ics - Write failed: booking_id=%d, error=%v", bookingID, err)
	}
}

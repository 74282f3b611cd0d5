package open_payment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/d1sq/BMS-BookingEngine/internal/api/handlers"
	openPayment "github.com/d1sq/BMS-BookingEngine/internal/usecase/open_payment"
)

const (
	msgInvalidBookingID    = "некорректный идентификатор бронирования"
	msgBookingNotFound     = "бронирование не найдено"
	msgNotPaymentPending   = "бронирование не ожидает оплаты"
	msgReservationExpired  = "время на оплату истекло, создайте бронирование заново"
	msgPaymentsNotAccepted = "бизнес не принимает онлайн-оплату"
	msgGatewayUnavailable  = "платежный шлюз временно недоступен"
)

type Handler struct {
	useCase OpenPaymentUseCase
	logger  Logger
}

func NewHandler(useCase OpenPaymentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/payment-order
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/payment-order - Invalid booking id: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &openPayment.Request{BookingID: bookingID})
	if err != nil {
		switch {
		case errors.Is(err, openPayment.ErrBookingNotFound), errors.Is(err, openPayment.ErrBusinessNotFound):
			h.logger.Warn("POST /bookings/{id}/payment-order - Not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, openPayment.ErrNotPaymentPending):
			h.logger.Warn("POST /bookings/{id}/payment-order - Not payment pending: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgNotPaymentPending)

		case errors.Is(err, openPayment.ErrReservationExpired):
			h.logger.Warn("POST /bookings/{id}/payment-order - Reservation expired: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgReservationExpired)

		case errors.Is(err, openPayment.ErrPaymentsNotAccepted):
			h.logger.Warn("POST /bookings/{id}/payment-order - Payments not accepted: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgPaymentsNotAccepted)

		case errors.Is(err, openPayment.ErrGatewayUnavailable):
			h.logger.Error("POST /bookings/{id}/payment-order - Gateway unavailable: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgGatewayUnavailable)

		case errors.Is(err, openPayment.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/payment-order - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidBookingID)

		default:
			h.logger.Error("POST /bookings/{id}/payment-order - Failed: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/payment-order - Order opened: booking_id=%d, order_id=%s", bookingID, result.OrderID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}

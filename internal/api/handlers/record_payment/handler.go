package record_payment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/d1sq/BMS-BookingEngine/internal/api/handlers"
	recordPayment "github.com/d1sq/BMS-BookingEngine/internal/usecase/record_payment"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidBookingID   = "некорректный идентификатор бронирования"
	msgBookingNotFound    = "бронирование не найдено"
	msgOrderMismatch      = "заказ не соответствует бронированию"
	msgInvalidSignature   = "неверная подпись платежа"
)

type Handler struct {
	useCase RecordPaymentUseCase
	logger  Logger
}

func NewHandler(useCase RecordPaymentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/payment
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/payment - Invalid booking id: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req RecordPaymentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/payment - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &recordPayment.Request{
		BookingID: bookingID,
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		switch {
		case errors.Is(err, recordPayment.ErrBookingNotFound), errors.Is(err, recordPayment.ErrBusinessNotFound):
			h.logger.Warn("POST /bookings/{id}/payment - Not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, recordPayment.ErrOrderMismatch):
			h.logger.Warn("POST /bookings/{id}/payment - Order mismatch: booking_id=%d, order_id=%s", bookingID, req.OrderID)
			handlers.RespondError(w, http.StatusConflict, msgOrderMismatch)

		case errors.Is(err, recordPayment.ErrInvalidSignature):
			h.logger.Warn("POST /bookings/{id}/payment - Invalid signature: booking_id=%d", bookingID)
			handlers.RespondForbidden(w, msgInvalidSignature)

		case errors.Is(err, recordPayment.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/payment - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /bookings/{id}/payment - Failed: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/payment - Payment recorded: booking_id=%d", bookingID)
	handlers.RespondJSON(w, http.StatusOK, &RecordPaymentResponse{
		BookingID:     result.BookingID,
		Status:        result.Status,
		PaymentStatus: result.PaymentStatus,
	})
}

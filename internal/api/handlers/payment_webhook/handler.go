package payment_webhook

import (
	"errors"
	"io"
	"net/http"

	"github.com/d1sq/BMS-BookingEngine/internal/api/handlers"
	confirmPayment "github.com/d1sq/BMS-BookingEngine/internal/usecase/confirm_payment"
)

// signatureHeader заголовок с подписью тела вебхука
const signatureHeader = "X-Webhook-Signature"

// maxBodySize максимальный размер тела вебхука
const maxBodySize = 1 << 20 // 1 MB

const (
	msgInvalidPayload   = "некорректное тело вебхука"
	msgInvalidSignature = "неверная подпись вебхука"
	msgBookingNotFound  = "бронирование для заказа не найдено"
	msgNotConfirmable   = "бронирование нельзя подтвердить"
)

// WebhookResponse HTTP response model
type WebhookResponse struct {
	Status string `json:"status"`
}

type Handler struct {
	useCase ConfirmPaymentUseCase
	logger  Logger
}

func NewHandler(useCase ConfirmPaymentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/payments/webhook
// Подпись считается от сырого тела, поэтому оно читается до парсинга.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.logger.Warn("POST /payments/webhook - Failed to read body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPayload)
		return
	}
	defer r.Body.Close()

	result, err := h.useCase.Execute(r.Context(), &confirmPayment.Request{
		Body:      body,
		Signature: r.Header.Get(signatureHeader),
	})
	if err != nil {
		switch {
		case errors.Is(err, confirmPayment.ErrUnsupportedEvent):
			// Неинтересные события подтверждаем, чтобы шлюз их не повторял
			handlers.RespondJSON(w, http.StatusOK, &WebhookResponse{Status: "ignored"})

		case errors.Is(err, confirmPayment.ErrInvalidPayload):
			h.logger.Warn("POST /payments/webhook - Invalid payload: %v", err)
			handlers.RespondBadRequest(w, msgInvalidPayload)

		case errors.Is(err, confirmPayment.ErrInvalidSignature):
			h.logger.Error("POST /payments/webhook - Invalid signature")
			handlers.RespondForbidden(w, msgInvalidSignature)

		case errors.Is(err, confirmPayment.ErrAmountMismatch):
			h.logger.Error("POST /payments/webhook - Amount mismatch: %v", err)
			handlers.RespondError(w, http.StatusConflict, msgNotConfirmable)

		case errors.Is(err, confirmPayment.ErrBookingNotFound), errors.Is(err, confirmPayment.ErrBusinessNotFound):
			h.logger.Warn("POST /payments/webhook - Booking not found: %v", err)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, confirmPayment.ErrNotConfirmable):
			h.logger.Warn("POST /payments/webhook - Not confirmable: %v", err)
			handlers.RespondError(w, http.StatusConflict, msgNotConfirmable)

		default:
			h.logger.Error("POST /payments/webhook - Failed: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	if result.AlreadyConfirmed {
		h.logger.Info("POST /payments/webhook - Replay for booking_id=%d", result.BookingID)
	} else {
		h.logger.Info("POST /payments/webhook - Confirmed booking_id=%d", result.BookingID)
	}
	handlers.RespondJSON(w, http.StatusOK, &WebhookResponse{Status: "ok"})
}

package open_payment

import (
	"time"

	openPayment "github.com/d1sq/BMS-BookingEngine/internal/usecase/open_payment"
)

// PaymentOrderResponse HTTP модель данных для оплаты на стороне клиента
type PaymentOrderResponse struct {
	OrderID       string  `json:"orderId"`
	Amount        int64   `json:"amount"`
	Currency      string  `json:"currency"`
	KeyID         string  `json:"keyId"`
	ReservedUntil *string `json:"reservedUntil,omitempty"`
	Prefill       struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Email string `json:"email,omitempty"`
	} `json:"prefill"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP модель
func FromUseCaseResponse(result *openPayment.Response) *PaymentOrderResponse {
	resp := &PaymentOrderResponse{
		OrderID:  result.OrderID,
		Amount:   result.Amount,
		Currency: result.Currency,
		KeyID:    result.KeyID,
	}
	if result.ReservedUntil != nil {
		reserved := result.ReservedUntil.Format(time.RFC3339)
		resp.ReservedUntil = &reserved
	}
	resp.Prefill.Name = result.CustomerName
	resp.Prefill.Phone = result.CustomerPhone
	resp.Prefill.Email = result.CustomerEmail
	return resp
}

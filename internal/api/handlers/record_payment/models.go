package record_payment

// RecordPaymentRequest HTTP request model с данными колбэка платежного виджета
type RecordPaymentRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

// RecordPaymentResponse HTTP response model.
// Ответ подтверждает только прием данных: статус бронирования
// изменится после вебхука шлюза.
type RecordPaymentResponse struct {
	BookingID     int64  `json:"bookingId"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
}

package confirm_payment

// Request модель запроса обработки вебхука платежного шлюза
type Request struct {
	Body      []byte // Сырое тело вебхука; подпись считается именно от него
	Signature string // Подпись из заголовка X-Webhook-Signature
}

// Response модель ответа обработки вебхука
type Response struct {
	BookingID int64  // ID подтвержденного бронирования
	Status    string // Статус бронирования после обработки
	// AlreadyConfirmed признак повторной доставки вебхука
	AlreadyConfirmed bool
}

// webhookEvent тело вебхука платежного шлюза
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Amount  int64  `json:"amount"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// eventPaymentCaptured единственное событие, подтверждающее бронирование
const eventPaymentCaptured = "payment.captured"

package record_payment

// Request модель запроса на фиксацию оплаты со стороны клиента
type Request struct {
	BookingID int64  // ID бронирования
	OrderID   string // ID заказа платежного шлюза
	PaymentID string // ID платежа
	Signature string // Подпись шлюза для пары заказ+платеж
}

// Response модель ответа.
// Фиксация клиентской оплаты не подтверждает бронирование: подтверждение
// выполняет только вебхук шлюза.
type Response struct {
	BookingID     int64  // ID бронирования
	Status        string // Текущий статус бронирования
	PaymentStatus string // Текущий статус оплаты
}

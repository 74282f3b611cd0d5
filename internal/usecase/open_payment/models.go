package open_payment

import "time"

// Request модель запроса на открытие платежного заказа
type Request struct {
	BookingID int64 // ID бронирования
}

// Response модель ответа с данными для оплаты на стороне клиента
type Response struct {
	OrderID       string     // ID заказа в платежном шлюзе
	Amount        int64      // Сумма в минимальных единицах валюты
	Currency      string     // Валюта
	KeyID         string     // Публичный ключ шлюза для виджета оплаты
	ReservedUntil *time.Time // Крайний срок оплаты

	// Prefill данные для автозаполнения платежной формы
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
}

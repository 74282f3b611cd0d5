package cancel_booking

// Request модель запроса на отмену бронирования
type Request struct {
	BookingID   int64  // ID бронирования
	CancelToken string // Токен отмены из ссылки клиента
	Reason      string // Причина отмены (опционально)
}

// Response модель ответа на отмену
type Response struct {
	BookingID int64  // ID бронирования
	Status    string // Статус после отмены
}

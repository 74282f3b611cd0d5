package cancel_booking

// CancelBookingRequest HTTP request model.
// Токен можно передать и в теле, и query-параметром token (ссылка из письма).
type CancelBookingRequest struct {
	CancelToken string `json:"cancelToken"`
	Reason      string `json:"reason,omitempty"`
}

// CancelBookingResponse HTTP response model
type CancelBookingResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

package notify

import "github.com/d1sq/BMS-BookingEngine/internal/domain"

// Notification задание на уведомление клиента о смене статуса бронирования
type Notification struct {
	BusinessID     int64
	BookingID      int64
	PublicRef      string
	CustomerName   string
	CustomerPhone  string
	CustomerEmail  string
	ServiceName    string
	BookingDate    string
	StartTime      string
	PreviousStatus domain.BookingStatus
	NewStatus      domain.BookingStatus
	CancelURL      string
}

// FromBooking собирает уведомление о переходе бронирования
// из previousStatus в текущий статус
func FromBooking(b *domain.Booking, previousStatus domain.BookingStatus, cancelURL string) Notification {
	var email string
	if b.CustomerEmail != nil {
		email = *b.CustomerEmail
	}
	return Notification{
		BusinessID:     b.BusinessID,
		BookingID:      b.ID,
		PublicRef:      b.PublicRef,
		CustomerName:   b.CustomerName,
		CustomerPhone:  b.CustomerPhone,
		CustomerEmail:  email,
		ServiceName:    b.ServiceName,
		BookingDate:    b.BookingDate.Format(domain.DateFormat),
		StartTime:      string(b.StartTime),
		PreviousStatus: previousStatus,
		NewStatus:      b.Status,
		CancelURL:      cancelURL,
	}
}

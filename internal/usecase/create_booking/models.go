package create_booking

import (
	"time"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	"github.com/d1sq/BMS-BookingEngine/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	BusinessID     int64            // ID бизнеса
	ServiceID      int64            // ID услуги
	Date           time.Time        // Дата бронирования (без времени)
	StartTime      types.TimeString // Время начала слота (например, "10:00")
	CustomerName   string           // Имя клиента
	CustomerPhone  string           // Телефон клиента
	CustomerEmail  *string          // Email (опционально)
	CustomerAddr   *string          // Адрес клиента, для выездных услуг (опционально)
	Notes          *string          // Дополнительные заметки (опционально)
	IdempotencyKey *string          // Ключ идемпотентности клиента (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID              int64            // ID созданного бронирования
	PublicRef       string           // Публичный идентификатор
	BusinessID      int64            // ID бизнеса
	ServiceID       int64            // ID услуги
	AssignedStaffID *int64           // Назначенный мастер (nil в режиме capacity)
	BookingDate     time.Time        // Дата бронирования
	StartTime       types.TimeString // Время начала
	DurationMinutes int              // Длительность в минутах
	Status          string           // Статус бронирования
	PaymentStatus   string           // Статус оплаты

	// Денормализованные данные
	BusinessName string  // Название бизнеса
	ServiceName  string  // Название услуги
	ServicePrice float64 // Цена услуги

	ReservedUntil *time.Time // Крайний срок оплаты (только для payment_pending)
	CancelToken   string     // Токен для отмены бронирования клиентом
	CancelURL     string     // Ссылка для отмены
	CalendarURL   string     // Ссылка на экспорт в календарь (iCalendar)

	CreatedAt time.Time // Время создания
}

func (uc *UseCase) toResponse(b *domain.Booking, business *domain.Business) *Response {
	return &Response{
		ID:              b.ID,
		PublicRef:       b.PublicRef,
		BusinessID:      b.BusinessID,
		ServiceID:       b.ServiceID,
		AssignedStaffID: b.AssignedStaffID,
		BookingDate:     b.BookingDate,
		StartTime:       b.StartTime,
		DurationMinutes: b.DurationMinutes,
		Status:          string(b.Status),
		PaymentStatus:   string(b.PaymentStatus),
		BusinessName:    business.Name,
		ServiceName:     b.ServiceName,
		ServicePrice:    b.ServicePrice,
		ReservedUntil:   b.ReservedUntil,
		CancelToken:     b.CancelToken,
		CancelURL:       uc.cancelURL(b),
		CalendarURL:     uc.calendarURL(b),
		CreatedAt:       b.CreatedAt,
	}
}

package confirm_payment

import (
	"context"
	"time"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	"github.com/d1sq/BMS-BookingEngine/internal/service/notify"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByGatewayOrderID(ctx context.Context, orderID string) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Confirm(ctx context.Context, id int64, paymentID string, now time.Time) error
}

// BusinessRepository интерфейс репозитория бизнесов
type BusinessRepository interface {
	GetBusiness(ctx context.Context, id int64) (*domain.Business, error)
}

// WebhookVerifier проверяет подпись тела вебхука
type WebhookVerifier func(body []byte, signature, webhookSecret string) bool

// Notifier интерфейс диспетчера уведомлений
type Notifier interface {
	Submit(n notify.Notification) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

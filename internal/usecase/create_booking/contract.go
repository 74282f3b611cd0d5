package create_booking

import (
	"context"
	"time"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	"github.com/d1sq/BMS-BookingEngine/internal/service/notify"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByIdempotencyKey(ctx context.Context, businessID int64, key string) (*domain.Booking, error)
	GetForBusinessDate(ctx context.Context, businessID int64, date time.Time, now time.Time) ([]*domain.Booking, error)
}

// BusinessRepository интерфейс репозитория бизнесов
type BusinessRepository interface {
	GetBusiness(ctx context.Context, id int64) (*domain.Business, error)
	GetService(ctx context.Context, businessID, serviceID int64) (*domain.Service, error)
	GetStaffCandidates(ctx context.Context, businessID, serviceID int64) ([]domain.StaffCandidate, error)
}

// DuplicateGuard интерфейс сервиса защиты от дублей
type DuplicateGuard interface {
	CheckIdempotency(ctx context.Context, businessID int64, idempotencyKey string) (*domain.Booking, error)
	CheckFingerprint(ctx context.Context, fingerprint string) error
	Release(ctx context.Context, fingerprint string)
}

// Notifier интерфейс диспетчера уведомлений
type Notifier interface {
	Submit(n notify.Notification) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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

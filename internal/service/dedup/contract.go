package dedup

import (
	"context"
	"time"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
)

// BookingRepo интерфейс репозитория бронирований для проверки дубликатов
type BookingRepo interface {
	GetByIdempotencyKey(ctx context.Context, businessID int64, key string) (*domain.Booking, error)
	GetByFingerprintSince(ctx context.Context, fingerprint string, since time.Time) ([]*domain.Booking, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// TimeProvider предоставляет текущее время
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

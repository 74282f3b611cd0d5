package record_payment

import (
	"context"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	SetPaymentRef(ctx context.Context, id int64, paymentID string) error
}

// BusinessRepository интерфейс репозитория бизнесов
type BusinessRepository interface {
	GetBusiness(ctx context.Context, id int64) (*domain.Business, error)
}

// SignatureVerifier проверяет подпись платежа на стороне клиента
type SignatureVerifier func(orderID, paymentID, signature, keySecret string) bool

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

package open_payment

import (
	"context"

	openPayment "github.com/d1sq/BMS-BookingEngine/internal/usecase/open_payment"
)

type OpenPaymentUseCase interface {
	Execute(ctx context.Context, req *openPayment.Request) (*openPayment.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

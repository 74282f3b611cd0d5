package record_payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	bookingRepo "github.com/d1sq/BMS-BookingEngine/internal/infra/storage/booking"
)

type testLogger struct{}

func (l *testLogger) Info(format string, v ...interface{})  {}
func (l *testLogger) Warn(format string, v ...interface{})  {}
func (l *testLogger) Error(format string, v ...interface{}) {}

type fakeBookingRepository struct {
	booking *domain.Booking
	getErr  error

	storedPaymentID string
}

func (r *fakeBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.booking, nil
}

func (r *fakeBookingRepository) SetPaymentRef(ctx context.Context, id int64, paymentID string) error {
	r.storedPaymentID = paymentID
	return nil
}

type fakeBusinessRepository struct {
	business *domain.Business
}

func (r *fakeBusinessRepository) GetBusiness(ctx context.Context, id int64) (*domain.Business, error) {
	return r.business, nil
}

func alwaysValid(orderID, paymentID, signature, keySecret string) bool   { return true }
func alwaysInvalid(orderID, paymentID, signature, keySecret string) bool { return false }

func pendingBooking() *domain.Booking {
	orderID := "order_123"
	return &domain.Booking{
		ID:             10,
		BusinessID:     1,
		Status:         domain.StatusPaymentPending,
		PaymentStatus:  domain.PaymentUnpaid,
		GatewayOrderID: &orderID,
	}
}

func validRequest() *Request {
	return &Request{
		BookingID: 10,
		OrderID:   "order_123",
		PaymentID: "pay_456",
		Signature: "sig",
	}
}

func TestExecute_RecordsPaymentRef(t *testing.T) {
	repo := &fakeBookingRepository{booking: pendingBooking()}
	uc := NewUseCase(repo, &fakeBusinessRepository{business: &domain.Business{ID: 1, GatewayKeySecret: "secret"}}, alwaysValid, &testLogger{})

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	// Статус бронирования не меняется: подтверждает только вебхук
	assert.Equal(t, string(domain.StatusPaymentPending), resp.Status)
	assert.Equal(t, string(domain.PaymentPending), resp.PaymentStatus)
	assert.Equal(t, "pay_456", repo.storedPaymentID)
}

func TestExecute_InvalidSignatureRejected(t *testing.T) {
	repo := &fakeBookingRepository{booking: pendingBooking()}
	uc := NewUseCase(repo, &fakeBusinessRepository{business: &domain.Business{ID: 1}}, alwaysInvalid, &testLogger{})

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Empty(t, repo.storedPaymentID)
}

func TestExecute_OrderMismatchRejected(t *testing.T) {
	repo := &fakeBookingRepository{booking: pendingBooking()}
	uc := NewUseCase(repo, &fakeBusinessRepository{business: &domain.Business{ID: 1}}, alwaysValid, &testLogger{})

	req := validRequest()
	req.OrderID = "order_999"
	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrOrderMismatch)
}

func TestExecute_BookingWithoutOrderRejected(t *testing.T) {
	b := pendingBooking()
	b.GatewayOrderID = nil
	uc := NewUseCase(&fakeBookingRepository{booking: b}, &fakeBusinessRepository{business: &domain.Business{ID: 1}}, alwaysValid, &testLogger{})

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrOrderMismatch)
}

func TestExecute_NotFound(t *testing.T) {
	repo := &fakeBookingRepository{getErr: bookingRepo.ErrBookingNotFound}
	uc := NewUseCase(repo, &fakeBusinessRepository{}, alwaysValid, &testLogger{})

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_InputValidation(t *testing.T) {
	uc := NewUseCase(&fakeBookingRepository{}, &fakeBusinessRepository{}, alwaysValid, &testLogger{})

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{name: "zero booking id", mutate: func(r *Request) { r.BookingID = 0 }},
		{name: "empty order id", mutate: func(r *Request) { r.OrderID = "" }},
		{name: "empty payment id", mutate: func(r *Request) { r.PaymentID = "" }},
		{name: "empty signature", mutate: func(r *Request) { r.Signature = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			_, err := uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

package cancel_booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	bookingRepo "github.com/d1sq/BMS-BookingEngine/internal/infra/storage/booking"
	"github.com/d1sq/BMS-BookingEngine/internal/service/notify"
)

type testLogger struct{}

func (l *testLogger) Info(format string, v ...interface{})  {}
func (l *testLogger) Warn(format string, v ...interface{})  {}
func (l *testLogger) Error(format string, v ...interface{}) {}

type fakeBookingRepository struct {
	booking   *domain.Booking
	getErr    error
	cancelErr error

	cancelledID     int64
	cancelledReason string
}

func (r *fakeBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.booking, nil
}

func (r *fakeBookingRepository) Cancel(ctx context.Context, id int64, reason string) error {
	if r.cancelErr != nil {
		return r.cancelErr
	}
	r.cancelledID = id
	r.cancelledReason = reason
	return nil
}

type fakeNotifier struct {
	submitted []notify.Notification
}

func (n *fakeNotifier) Submit(notification notify.Notification) error {
	n.submitted = append(n.submitted, notification)
	return nil
}

func pendingBooking() *domain.Booking {
	return &domain.Booking{
		ID:          5,
		BusinessID:  1,
		Status:      domain.StatusPaymentPending,
		CancelToken: "secret-token",
	}
}

func TestExecute_CancelsPendingBooking(t *testing.T) {
	repo := &fakeBookingRepository{booking: pendingBooking()}
	notifier := &fakeNotifier{}
	uc := NewUseCase(repo, notifier, &testLogger{})

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 5, CancelToken: "secret-token"})
	require.NoError(t, err)

	assert.Equal(t, int64(5), resp.BookingID)
	assert.Equal(t, string(domain.StatusCancelled), resp.Status)
	assert.Equal(t, int64(5), repo.cancelledID)
	assert.Equal(t, defaultCancelReason, repo.cancelledReason)

	require.Len(t, notifier.submitted, 1)
	assert.Equal(t, domain.StatusPaymentPending, notifier.submitted[0].PreviousStatus)
	assert.Equal(t, domain.StatusCancelled, notifier.submitted[0].NewStatus)
}

func TestExecute_CustomReasonIsKept(t *testing.T) {
	repo := &fakeBookingRepository{booking: pendingBooking()}
	uc := NewUseCase(repo, &fakeNotifier{}, &testLogger{})

	_, err := uc.Execute(context.Background(), &Request{BookingID: 5, CancelToken: "secret-token", Reason: "changed plans"})
	require.NoError(t, err)
	assert.Equal(t, "changed plans", repo.cancelledReason)
}

func TestExecute_InvalidTokenRejected(t *testing.T) {
	repo := &fakeBookingRepository{booking: pendingBooking()}
	uc := NewUseCase(repo, &fakeNotifier{}, &testLogger{})

	_, err := uc.Execute(context.Background(), &Request{BookingID: 5, CancelToken: "wrong-token"})
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Zero(t, repo.cancelledID)
}

func TestExecute_ConfirmedBookingCannotBeCancelled(t *testing.T) {
	confirmed := pendingBooking()
	confirmed.Status = domain.StatusConfirmed
	repo := &fakeBookingRepository{booking: confirmed}
	uc := NewUseCase(repo, &fakeNotifier{}, &testLogger{})

	_, err := uc.Execute(context.Background(), &Request{BookingID: 5, CancelToken: "secret-token"})
	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestExecute_ConcurrentTerminalTransition(t *testing.T) {
	repo := &fakeBookingRepository{booking: pendingBooking(), cancelErr: bookingRepo.ErrCannotCancel}
	notifier := &fakeNotifier{}
	uc := NewUseCase(repo, notifier, &testLogger{})

	_, err := uc.Execute(context.Background(), &Request{BookingID: 5, CancelToken: "secret-token"})
	assert.ErrorIs(t, err, ErrCannotCancel)
	assert.Empty(t, notifier.submitted)
}

func TestExecute_NotFound(t *testing.T) {
	repo := &fakeBookingRepository{getErr: bookingRepo.ErrBookingNotFound}
	uc := NewUseCase(repo, &fakeNotifier{}, &testLogger{})

	_, err := uc.Execute(context.Background(), &Request{BookingID: 5, CancelToken: "secret-token"})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_InputValidation(t *testing.T) {
	uc := NewUseCase(&fakeBookingRepository{}, &fakeNotifier{}, &testLogger{})

	_, err := uc.Execute(context.Background(), &Request{BookingID: 0, CancelToken: "t"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{BookingID: 5})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

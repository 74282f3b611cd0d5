package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	storage "github.com/d1sq/BMS-BookingEngine/internal/infra/storage/booking"
)

type fakeLogger struct{}

func (l *fakeLogger) Info(format string, v ...interface{})  {}
func (l *fakeLogger) Warn(format string, v ...interface{})  {}
func (l *fakeLogger) Error(format string, v ...interface{}) {}

type fixedTime struct {
	now time.Time
}

func (p *fixedTime) Now() time.Time { return p.now }

type fakeBookingRepo struct {
	byKey         *domain.Booking
	byKeyErr      error
	byFingerprint []*domain.Booking
	fpErr         error
}

func (r *fakeBookingRepo) GetByIdempotencyKey(ctx context.Context, businessID int64, key string) (*domain.Booking, error) {
	if r.byKeyErr != nil {
		return nil, r.byKeyErr
	}
	return r.byKey, nil
}

func (r *fakeBookingRepo) GetByFingerprintSince(ctx context.Context, fingerprint string, since time.Time) ([]*domain.Booking, error) {
	if r.fpErr != nil {
		return nil, r.fpErr
	}
	return r.byFingerprint, nil
}

func TestFingerprint(t *testing.T) {
	fp := Fingerprint(1, "+79990001122", "2026-03-15", "10:00", 42)

	// Отпечаток детерминирован
	assert.Equal(t, fp, Fingerprint(1, "+79990001122", "2026-03-15", "10:00", 42))
	assert.Len(t, fp, 64)

	// Любое изменение поля меняет отпечаток
	assert.NotEqual(t, fp, Fingerprint(2, "+79990001122", "2026-03-15", "10:00", 42))
	assert.NotEqual(t, fp, Fingerprint(1, "+79990001123", "2026-03-15", "10:00", 42))
	assert.NotEqual(t, fp, Fingerprint(1, "+79990001122", "2026-03-16", "10:00", 42))
	assert.NotEqual(t, fp, Fingerprint(1, "+79990001122", "2026-03-15", "10:30", 42))
	assert.NotEqual(t, fp, Fingerprint(1, "+79990001122", "2026-03-15", "10:00", 43))
}

func TestGuard_CheckIdempotency(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("empty key is a no-op", func(t *testing.T) {
		guard := NewGuard(nil, &fakeBookingRepo{}, time.Minute, &fakeLogger{}, &fixedTime{now: now})
		booking, err := guard.CheckIdempotency(context.Background(), 1, "")
		require.NoError(t, err)
		assert.Nil(t, booking)
	})

	t.Run("unused key returns nil", func(t *testing.T) {
		repo := &fakeBookingRepo{byKeyErr: storage.ErrBookingNotFound}
		guard := NewGuard(nil, repo, time.Minute, &fakeLogger{}, &fixedTime{now: now})
		booking, err := guard.CheckIdempotency(context.Background(), 1, "key-1")
		require.NoError(t, err)
		assert.Nil(t, booking)
	})

	t.Run("used key returns the existing booking", func(t *testing.T) {
		existing := &domain.Booking{ID: 77, Status: domain.StatusConfirmed}
		guard := NewGuard(nil, &fakeBookingRepo{byKey: existing}, time.Minute, &fakeLogger{}, &fixedTime{now: now})
		booking, err := guard.CheckIdempotency(context.Background(), 1, "key-1")
		require.NoError(t, err)
		assert.Equal(t, existing, booking)
	})

	t.Run("storage failure wraps internal error", func(t *testing.T) {
		repo := &fakeBookingRepo{byKeyErr: assert.AnError}
		guard := NewGuard(nil, repo, time.Minute, &fakeLogger{}, &fixedTime{now: now})
		_, err := guard.CheckIdempotency(context.Background(), 1, "key-1")
		assert.ErrorIs(t, err, ErrInternal)
	})
}

func TestGuard_CheckFingerprint_DBFallback(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("no recent bookings", func(t *testing.T) {
		guard := NewGuard(nil, &fakeBookingRepo{}, time.Minute, &fakeLogger{}, &fixedTime{now: now})
		assert.NoError(t, guard.CheckFingerprint(context.Background(), "fp"))
	})

	t.Run("active recent booking is a duplicate", func(t *testing.T) {
		repo := &fakeBookingRepo{byFingerprint: []*domain.Booking{
			{Status: domain.StatusConfirmed},
		}}
		guard := NewGuard(nil, repo, time.Minute, &fakeLogger{}, &fixedTime{now: now})
		assert.ErrorIs(t, guard.CheckFingerprint(context.Background(), "fp"), ErrDuplicateRequest)
	})

	t.Run("cancelled booking does not block a retry", func(t *testing.T) {
		repo := &fakeBookingRepo{byFingerprint: []*domain.Booking{
			{Status: domain.StatusCancelled},
		}}
		guard := NewGuard(nil, repo, time.Minute, &fakeLogger{}, &fixedTime{now: now})
		assert.NoError(t, guard.CheckFingerprint(context.Background(), "fp"))
	})

	t.Run("expired reservation does not block a retry", func(t *testing.T) {
		expired := now.Add(-time.Minute)
		repo := &fakeBookingRepo{byFingerprint: []*domain.Booking{
			{Status: domain.StatusPaymentPending, ReservedUntil: &expired},
		}}
		guard := NewGuard(nil, repo, time.Minute, &fakeLogger{}, &fixedTime{now: now})
		assert.NoError(t, guard.CheckFingerprint(context.Background(), "fp"))
	})

	t.Run("storage failure wraps internal error", func(t *testing.T) {
		repo := &fakeBookingRepo{fpErr: assert.AnError}
		guard := NewGuard(nil, repo, time.Minute, &fakeLogger{}, &fixedTime{now: now})
		assert.ErrorIs(t, guard.CheckFingerprint(context.Background(), "fp"), ErrInternal)
	})
}

func TestGuard_Release_WithoutRedis(t *testing.T) {
	guard := NewGuard(nil, &fakeBookingRepo{}, time.Minute, &fakeLogger{}, &RealTimeProvider{})
	// Без redis снимать нечего, вызов безопасен
	guard.Release(context.Background(), "fp")
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/d1sq/BMS-BookingEngine/pkg/types"
)

func TestBooking_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from BookingStatus
		to   BookingStatus
		want bool
	}{
		{name: "draft to payment_pending", from: StatusDraft, to: StatusPaymentPending, want: true},
		{name: "draft to confirmed", from: StatusDraft, to: StatusConfirmed, want: true},
		{name: "draft to cancelled", from: StatusDraft, to: StatusCancelled, want: true},
		{name: "payment_pending to confirmed", from: StatusPaymentPending, to: StatusConfirmed, want: true},
		{name: "payment_pending to cancelled", from: StatusPaymentPending, to: StatusCancelled, want: true},
		{name: "payment_pending back to draft", from: StatusPaymentPending, to: StatusDraft, want: false},
		{name: "confirmed is terminal", from: StatusConfirmed, to: StatusCancelled, want: false},
		{name: "cancelled is terminal", from: StatusCancelled, to: StatusConfirmed, want: false},
		{name: "confirmed back to payment_pending", from: StatusConfirmed, to: StatusPaymentPending, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{Status: tt.from}
			assert.Equal(t, tt.want, b.CanTransitionTo(tt.to))
		})
	}
}

func TestBooking_IsTerminal(t *testing.T) {
	assert.False(t, (&Booking{Status: StatusDraft}).IsTerminal())
	assert.False(t, (&Booking{Status: StatusPaymentPending}).IsTerminal())
	assert.True(t, (&Booking{Status: StatusConfirmed}).IsTerminal())
	assert.True(t, (&Booking{Status: StatusCancelled}).IsTerminal())
}

func TestBooking_CanBeCancelled(t *testing.T) {
	assert.True(t, (&Booking{Status: StatusDraft}).CanBeCancelled())
	assert.True(t, (&Booking{Status: StatusPaymentPending}).CanBeCancelled())
	assert.False(t, (&Booking{Status: StatusConfirmed}).CanBeCancelled())
	assert.False(t, (&Booking{Status: StatusCancelled}).CanBeCancelled())
}

func TestBooking_IsReservationExpired(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("pending with passed deadline", func(t *testing.T) {
		deadline := now.Add(-time.Minute)
		b := &Booking{Status: StatusPaymentPending, ReservedUntil: &deadline}
		assert.True(t, b.IsReservationExpired(now))
	})

	t.Run("deadline exactly now counts as expired", func(t *testing.T) {
		deadline := now
		b := &Booking{Status: StatusPaymentPending, ReservedUntil: &deadline}
		assert.True(t, b.IsReservationExpired(now))
	})

	t.Run("pending with future deadline", func(t *testing.T) {
		deadline := now.Add(10 * time.Minute)
		b := &Booking{Status: StatusPaymentPending, ReservedUntil: &deadline}
		assert.False(t, b.IsReservationExpired(now))
	})

	t.Run("pending without deadline", func(t *testing.T) {
		b := &Booking{Status: StatusPaymentPending}
		assert.False(t, b.IsReservationExpired(now))
	})

	t.Run("confirmed never expires", func(t *testing.T) {
		deadline := now.Add(-time.Hour)
		b := &Booking{Status: StatusConfirmed, ReservedUntil: &deadline}
		assert.False(t, b.IsReservationExpired(now))
	})
}

func TestBooking_EffectivelyActive(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("confirmed is active", func(t *testing.T) {
		assert.True(t, (&Booking{Status: StatusConfirmed}).EffectivelyActive(now))
	})

	t.Run("cancelled is not active", func(t *testing.T) {
		assert.False(t, (&Booking{Status: StatusCancelled}).EffectivelyActive(now))
	})

	t.Run("live reservation holds the slot", func(t *testing.T) {
		deadline := now.Add(5 * time.Minute)
		b := &Booking{Status: StatusPaymentPending, ReservedUntil: &deadline}
		assert.True(t, b.EffectivelyActive(now))
	})

	t.Run("expired reservation releases the slot before sweep", func(t *testing.T) {
		deadline := now.Add(-5 * time.Minute)
		b := &Booking{Status: StatusPaymentPending, ReservedUntil: &deadline}
		assert.False(t, b.EffectivelyActive(now))
	})
}

func TestBooking_EndTime(t *testing.T) {
	b := &Booking{StartTime: types.TimeString("10:00"), DurationMinutes: 90}
	end, err := b.EndTime()
	assert.NoError(t, err)
	assert.Equal(t, types.TimeString("11:30"), end)
}

func TestBooking_RequiresPayment(t *testing.T) {
	assert.True(t, (&Booking{Status: StatusPaymentPending}).RequiresPayment())
	assert.False(t, (&Booking{Status: StatusConfirmed}).RequiresPayment())
}

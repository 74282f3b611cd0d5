package domain

import (
	"time"

	"github.com/d1sq/BMS-BookingEngine/pkg/types"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	StatusDraft          BookingStatus = "draft"
	StatusPaymentPending BookingStatus = "payment_pending"
	StatusConfirmed      BookingStatus = "confirmed"
	StatusCancelled      BookingStatus = "cancelled"
)

// PaymentStatus represents the payment state of a booking
type PaymentStatus string

const (
	PaymentUnpaid     PaymentStatus = "unpaid"
	PaymentPending    PaymentStatus = "pending"
	PaymentPaid       PaymentStatus = "paid"
	PaymentPayAtVenue PaymentStatus = "pay_at_venue"
	PaymentFree       PaymentStatus = "free"
)

// Booking represents a customer appointment booking
type Booking struct {
	ID              int64
	PublicRef       string // Публичный идентификатор для ссылок клиенту
	BusinessID      int64
	ServiceID       int64
	AssignedStaffID *int64 // NULL = бизнес работает в режиме capacity без мастеров

	CustomerName    string
	CustomerPhone   string
	CustomerEmail   *string
	CustomerAddress *string
	Notes           *string

	BookingDate     time.Time
	StartTime       types.TimeString
	DurationMinutes int

	Status        BookingStatus
	PaymentStatus PaymentStatus

	// Denormalized data for history
	ServiceName  string
	ServicePrice float64

	ReservedUntil    *time.Time // Установлен только для payment_pending
	IdempotencyKey   *string
	Fingerprint      string
	CancelToken      string
	GatewayOrderID   *string
	GatewayPaymentID *string

	CancellationReason *string
	CancelledAt        *time.Time
	ConfirmedAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// bookingTransitions допустимые переходы статусов.
// Статусы двигаются только вперед: confirmed и cancelled терминальные.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusDraft:          {StatusPaymentPending, StatusConfirmed, StatusCancelled},
	StatusPaymentPending: {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {},
	StatusCancelled:      {},
}

// CanTransitionTo returns true if moving from the current status to next
// is a legal forward transition.
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[b.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal returns true for confirmed and cancelled bookings.
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusConfirmed || b.Status == StatusCancelled
}

// CanBeCancelled returns true if the booking may still be cancelled.
func (b *Booking) CanBeCancelled() bool {
	return b.CanTransitionTo(StatusCancelled)
}

// IsReservationExpired returns true for a payment_pending booking whose
// reservation window has passed.
func (b *Booking) IsReservationExpired(now time.Time) bool {
	return b.Status == StatusPaymentPending &&
		b.ReservedUntil != nil &&
		!b.ReservedUntil.After(now)
}

// EffectivelyActive returns true if the booking still occupies its slot.
// Cancelled bookings never block a slot; an expired payment_pending
// reservation is treated as released even before the sweep flips it to
// cancelled.
func (b *Booking) EffectivelyActive(now time.Time) bool {
	if b.Status == StatusCancelled {
		return false
	}
	if b.IsReservationExpired(now) {
		return false
	}
	return true
}

// EndTime returns the booking end as start + duration.
func (b *Booking) EndTime() (types.TimeString, error) {
	return b.StartTime.AddMinutes(b.DurationMinutes)
}

// RequiresPayment returns true if the booking is gated on an online payment.
func (b *Booking) RequiresPayment() bool {
	return b.Status == StatusPaymentPending
}

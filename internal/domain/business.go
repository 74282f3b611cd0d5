package domain

import (
	"time"

	"github.com/d1sq/BMS-BookingEngine/pkg/types"
)

// Business represents a tenant accepting bookings.
// Created by onboarding flows; read-only for the booking engine.
type Business struct {
	ID                  int64
	Name                string
	Timezone            string
	OpenTime            types.TimeString
	CloseTime           types.TimeString
	SlotDurationMinutes int
	PaymentsEnabled     bool

	// Учетные данные платежного шлюза; для движка это непрозрачные строки
	GatewayKeyID     string
	GatewayKeySecret string
	WebhookSecret    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AcceptsOnlinePayments returns true if the business can open gateway orders.
func (b *Business) AcceptsOnlinePayments() bool {
	return b.PaymentsEnabled && b.GatewayKeyID != "" && b.GatewayKeySecret != ""
}

// PaymentMode defines how a service can be paid for
type PaymentMode string

const (
	PaymentModeOnline PaymentMode = "online"
	PaymentModeCash   PaymentMode = "cash"
	PaymentModeBoth   PaymentMode = "both"
)

// Service represents a bookable service offered by a business
type Service struct {
	ID              int64
	BusinessID      int64
	Name            string
	DurationMinutes int
	Price           float64
	PaymentMode     PaymentMode
	// Capacity максимальное число одновременных бронирований на слот,
	// когда бизнес работает без модели мастеров
	Capacity int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AllowsOnlinePayment returns true if the service may be paid online.
func (s *Service) AllowsOnlinePayment() bool {
	return s.PaymentMode == PaymentModeOnline || s.PaymentMode == PaymentModeBoth
}

// AllowsCashPayment returns true if the service may be paid at the venue.
func (s *Service) AllowsCashPayment() bool {
	return s.PaymentMode == PaymentModeCash || s.PaymentMode == PaymentModeBoth
}

// IsFree returns true for zero-priced services.
func (s *Service) IsFree() bool {
	return s.Price <= 0
}

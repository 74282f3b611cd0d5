package models

import (
	"github.com/d1sq/BMS-BookingEngine/internal/domain"
)

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              int64   `json:"id"`
	PublicRef       string  `json:"publicRef"`
	BusinessID      int64   `json:"businessId"`
	ServiceID       int64   `json:"serviceId"`
	ServiceName     string  `json:"serviceName"`
	ServicePrice    float64 `json:"servicePrice"`
	AssignedStaffID *int64  `json:"assignedStaffId,omitempty"`
	CustomerName    string  `json:"customerName"`
	CustomerPhone   string  `json:"customerPhone"`
	CustomerEmail   *string `json:"customerEmail,omitempty"`
	CustomerAddress *string `json:"customerAddress,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	BookingDate     string  `json:"bookingDate"` // "2026-03-15"
	StartTime       string  `json:"startTime"`   // "10:00"
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	PaymentStatus   string  `json:"paymentStatus"`
	ReservedUntil   *string `json:"reservedUntil,omitempty"` // RFC3339, только для payment_pending
	CreatedAt       string  `json:"createdAt"`
}

// FromDomainBooking конвертирует domain.Booking в response модель
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	resp := &BookingResponse{
		ID:              b.ID,
		PublicRef:       b.PublicRef,
		BusinessID:      b.BusinessID,
		ServiceID:       b.ServiceID,
		ServiceName:     b.ServiceName,
		ServicePrice:    b.ServicePrice,
		AssignedStaffID: b.AssignedStaffID,
		CustomerName:    b.CustomerName,
		CustomerPhone:   b.CustomerPhone,
		CustomerEmail:   b.CustomerEmail,
		CustomerAddress: b.CustomerAddress,
		Notes:           b.Notes,
		BookingDate:     b.BookingDate.Format(domain.DateFormat),
		StartTime:       string(b.StartTime),
		DurationMinutes: b.DurationMinutes,
		Status:          string(b.Status),
		PaymentStatus:   string(b.PaymentStatus),
		CreatedAt:       b.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	if b.ReservedUntil != nil {
		reserved := b.ReservedUntil.Format("2006-01-02T15:04:05Z07:00")
		resp.ReservedUntil = &reserved
	}

	return resp
}

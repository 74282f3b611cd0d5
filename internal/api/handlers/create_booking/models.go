package create_booking

import (
	"time"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	createBooking "github.com/d1sq/BMS-BookingEngine/internal/usecase/create_booking"
	"github.com/d1sq/BMS-BookingEngine/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ServiceID       int64   `json:"serviceId"`
	BookingDate     string  `json:"bookingDate"` // "2026-03-15"
	StartTime       string  `json:"startTime"`   // "10:00"
	CustomerName    string  `json:"customerName"`
	CustomerPhone   string  `json:"customerPhone"`
	CustomerEmail   *string `json:"customerEmail,omitempty"`
	CustomerAddress *string `json:"customerAddress,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	IdempotencyKey  *string `json:"idempotencyKey,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID              int64   `json:"id"`
	PublicRef       string  `json:"publicRef"`
	BusinessID      int64   `json:"businessId"`
	ServiceID       int64   `json:"serviceId"`
	AssignedStaffID *int64  `json:"assignedStaffId,omitempty"`
	BookingDate     string  `json:"bookingDate"`
	StartTime       string  `json:"startTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	PaymentStatus   string  `json:"paymentStatus"`
	BusinessName    string  `json:"businessName"`
	ServiceName     string  `json:"serviceName"`
	ServicePrice    float64 `json:"servicePrice"`
	ReservedUntil   *string `json:"reservedUntil,omitempty"`
	CancelToken     string  `json:"cancelToken"`
	CancelURL       string  `json:"cancelUrl,omitempty"`
	CalendarURL     string  `json:"calendarUrl,omitempty"`
	CreatedAt       string  `json:"createdAt"`
}

// SlotResponse модель альтернативного слота в ответе об отказе
type SlotResponse struct {
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
	AvailableSpots  int    `json:"availableSpots"`
	TotalSpots      int    `json:"totalSpots"`
}

// ConflictResponse тело ответа 409 с альтернативными слотами
type ConflictResponse struct {
	Message        string         `json:"message"`
	AvailableSlots []SlotResponse `json:"availableSlots"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(businessID int64, idempotencyHeader string) (*createBooking.Request, error) {
	bookingDate, err := time.Parse(domain.DateFormat, r.BookingDate)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	// Заголовок Idempotency-Key имеет приоритет над полем тела
	idempotencyKey := r.IdempotencyKey
	if idempotencyHeader != "" {
		idempotencyKey = &idempotencyHeader
	}

	return &createBooking.Request{
		BusinessID:     businessID,
		ServiceID:      r.ServiceID,
		Date:           bookingDate,
		StartTime:      startTime,
		CustomerName:   r.CustomerName,
		CustomerPhone:  r.CustomerPhone,
		CustomerEmail:  r.CustomerEmail,
		CustomerAddr:   r.CustomerAddress,
		Notes:          r.Notes,
		IdempotencyKey: idempotencyKey,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP модель
func FromUseCaseResponse(result *createBooking.Response) *BookingResponse {
	resp := &BookingResponse{
		ID:              result.ID,
		PublicRef:       result.PublicRef,
		BusinessID:      result.BusinessID,
		ServiceID:       result.ServiceID,
		AssignedStaffID: result.AssignedStaffID,
		BookingDate:     result.BookingDate.Format(domain.DateFormat),
		StartTime:       string(result.StartTime),
		DurationMinutes: result.DurationMinutes,
		Status:          result.Status,
		PaymentStatus:   result.PaymentStatus,
		BusinessName:    result.BusinessName,
		ServiceName:     result.ServiceName,
		ServicePrice:    result.ServicePrice,
		CancelToken:     result.CancelToken,
		CancelURL:       result.CancelURL,
		CalendarURL:     result.CalendarURL,
		CreatedAt:       result.CreatedAt.Format(time.RFC3339),
	}
	if result.ReservedUntil != nil {
		reserved := result.ReservedUntil.Format(time.RFC3339)
		resp.ReservedUntil = &reserved
	}
	return resp
}

// toConflictResponse собирает тело 409 из типизированной ошибки занятости
func toConflictResponse(message string, slotErr *createBooking.SlotUnavailableError) *ConflictResponse {
	slots := make([]SlotResponse, 0, len(slotErr.Alternatives))
	for _, s := range slotErr.Alternatives {
		slots = append(slots, SlotResponse{
			StartTime:       string(s.StartTime),
			DurationMinutes: s.DurationMinutes,
			AvailableSpots:  s.AvailableSpots,
			TotalSpots:      s.TotalSpots,
		})
	}
	return &ConflictResponse{
		Message:        message,
		AvailableSlots: slots,
	}
}

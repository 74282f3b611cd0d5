package get_available_slots

import (
	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	getAvailableSlots "github.com/d1sq/BMS-BookingEngine/internal/usecase/get_available_slots"
)

// SlotResponse HTTP модель временного слота
type SlotResponse struct {
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
	AvailableSpots  int    `json:"availableSpots"`
	TotalSpots      int    `json:"totalSpots"`
}

// SlotsResponse HTTP модель ответа со списком слотов
type SlotsResponse struct {
	Date       string         `json:"date"`
	BusinessID int64          `json:"businessId"`
	ServiceID  int64          `json:"serviceId"`
	Slots      []SlotResponse `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP модель
func FromUseCaseResponse(result *getAvailableSlots.Response) *SlotsResponse {
	slots := make([]SlotResponse, 0, len(result.Slots))
	for _, s := range result.Slots {
		slots = append(slots, SlotResponse{
			StartTime:       string(s.StartTime),
			DurationMinutes: s.DurationMinutes,
			AvailableSpots:  s.AvailableSpots,
			TotalSpots:      s.TotalSpots,
		})
	}
	return &SlotsResponse{
		Date:       result.Date.Format(domain.DateFormat),
		BusinessID: result.BusinessID,
		ServiceID:  result.ServiceID,
		Slots:      slots,
	}
}

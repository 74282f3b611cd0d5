package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	businessRepo "github.com/d1sq/BMS-BookingEngine/internal/infra/storage/business"
	"github.com/d1sq/BMS-BookingEngine/internal/scheduling"
	"github.com/d1sq/BMS-BookingEngine/pkg/types"
)

// UseCase use case для получения доступных слотов для бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	businessRepo BusinessRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	businessRepo BusinessRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		businessRepo: businessRepo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case получения доступных слотов.
// Для бизнеса с мастерами слот свободен, пока хотя бы один подходящий
// мастер не занят в интервале; без мастеров действует вместимость услуги.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: business=%d, service=%d, date=%s",
		req.BusinessID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	if err := validateDate(req.Date, now); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем бизнес и услугу
	business, err := uc.businessRepo.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, businessRepo.ErrBusinessNotFound) {
			uc.logger.Warn("GetAvailableSlots: business id=%d not found", req.BusinessID)
			return nil, ErrBusinessNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	service, err := uc.businessRepo.GetService(ctx, req.BusinessID, req.ServiceID)
	if err != nil {
		if errors.Is(err, businessRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 3. Активные бронирования дня
	bookings, err := uc.bookingRepo.GetForBusinessDate(ctx, req.BusinessID, req.Date, now)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}
	intervals := scheduling.ActiveIntervals(bookings, now)

	// 4. Считаем занятость по сетке слотов
	slotDuration := business.SlotDurationMinutes
	if slotDuration <= 0 {
		slotDuration = domain.DefaultSlotDurationMinutes
	}

	candidates, err := uc.businessRepo.GetStaffCandidates(ctx, req.BusinessID, req.ServiceID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get staff candidates: %v", err)
		return nil, fmt.Errorf("%w: failed to get staff candidates: %v", ErrInternal, err)
	}

	var slots []domain.AvailableSlot
	if len(candidates) > 0 {
		slots, err = scheduling.ComputeStaffSlots(business.OpenTime, business.CloseTime, slotDuration, service.DurationMinutes, candidates, intervals)
	} else {
		capacity := service.Capacity
		if capacity <= 0 {
			capacity = domain.DefaultCapacity
		}
		slots, err = scheduling.ComputeSlots(business.OpenTime, business.CloseTime, slotDuration, intervals, capacity)
	}
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to compute slots: %v", err)
		return nil, fmt.Errorf("%w: failed to compute slots: %v", ErrInternal, err)
	}

	// 5. Сегодняшние слоты, которые уже начались, не предлагаем
	nowTS := types.NewTimeString(now)
	today := isSameDay(req.Date, now)

	available := make([]domain.AvailableSlot, 0, len(slots))
	for _, slot := range slots {
		if slot.IsFull() {
			continue
		}
		if today && slot.StartTime.IsBefore(nowTS) {
			continue
		}
		available = append(available, slot)
	}

	uc.logger.Info("GetAvailableSlots: business=%d, service=%d, date=%s: %d slots available",
		req.BusinessID, req.ServiceID, req.Date.Format(domain.DateFormat), len(available))

	return &Response{
		Date:       req.Date,
		BusinessID: req.BusinessID,
		ServiceID:  req.ServiceID,
		Slots:      toSlots(available),
	}, nil
}

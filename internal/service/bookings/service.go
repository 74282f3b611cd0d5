// Package bookings реализует read-сторону работы с бронированиями.
package bookings

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	bookingRepo "github.com/d1sq/BMS-BookingEngine/internal/infra/storage/booking"
	"github.com/d1sq/BMS-BookingEngine/internal/service/bookings/models"
)

// Service сервис для чтения бронирований
type Service struct {
	bookingRepo  BookingRepository
	businessRepo BusinessRepository
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(bookingRepo BookingRepository, businessRepo BusinessRepository, logger Logger) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		businessRepo: businessRepo,
		logger:       logger,
	}
}

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.BookingResponse, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBooking(booking), nil
}

// CalendarEvent собирает данные бронирования для экспорта в календарь.
// Доступ закрыт токеном отмены: его знает только получатель ссылки.
// Токен сравнивается за постоянное время, как при отмене.
func (s *Service) CalendarEvent(ctx context.Context, id int64, token string) (*models.CalendarEvent, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("CalendarEvent: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("CalendarEvent: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: CalendarEvent - repository error: %v", ErrInternal, err)
	}

	if subtle.ConstantTimeCompare([]byte(booking.CancelToken), []byte(token)) != 1 {
		s.logger.Warn("CalendarEvent: invalid token for booking id=%d", id)
		return nil, ErrInvalidToken
	}

	if booking.Status == domain.StatusCancelled {
		s.logger.Warn("CalendarEvent: booking id=%d is cancelled", id)
		return nil, ErrBookingCancelled
	}

	business, err := s.businessRepo.GetBusiness(ctx, booking.BusinessID)
	if err != nil {
		s.logger.Error("CalendarEvent: failed to get business id=%d: %v", booking.BusinessID, err)
		return nil, fmt.Errorf("%w: CalendarEvent - failed to get business: %v", ErrInternal, err)
	}

	minutes, err := booking.StartTime.Minutes()
	if err != nil {
		s.logger.Error("CalendarEvent: malformed start time %q for booking id=%d: %v", booking.StartTime, id, err)
		return nil, fmt.Errorf("%w: CalendarEvent - malformed start time: %v", ErrInternal, err)
	}
	startsAt := booking.BookingDate.Add(time.Duration(minutes) * time.Minute)

	return &models.CalendarEvent{
		PublicRef:    booking.PublicRef,
		BusinessName: business.Name,
		ServiceName:  booking.ServiceName,
		StartsAt:     startsAt,
		EndsAt:       startsAt.Add(time.Duration(booking.DurationMinutes) * time.Minute),
		CreatedAt:    booking.CreatedAt,
	}, nil
}

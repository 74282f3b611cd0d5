package export_calendar

import (
	"context"

	"github.com/d1sq/BMS-BookingEngine/internal/service/bookings/models"
)

type BookingService interface {
	CalendarEvent(ctx context.Context, id int64, token string) (*models.CalendarEvent, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

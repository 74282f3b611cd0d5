// Package jobs содержит фоновые задачи движка бронирований.
package jobs

import (
	"context"
	"time"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	"github.com/d1sq/BMS-BookingEngine/internal/service/notify"
)

// defaultSweepInterval период обхода просроченных резерваций
const defaultSweepInterval = 30 * time.Second

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	ExpireReservations(ctx context.Context, now time.Time) ([]*domain.Booking, error)
}

// Notifier интерфейс диспетчера уведомлений
type Notifier interface {
	Submit(n notify.Notification) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// ExpirySweeper периодически отменяет payment_pending бронирования
// с истекшим окном оплаты. Занятость слотов не зависит от свипера:
// чтение занятости исключает просроченные резервации само, свипер лишь
// доводит строки до терминального статуса и шлет уведомления.
type ExpirySweeper struct {
	bookingRepo BookingRepository
	notifier    Notifier
	interval    time.Duration
	logger      Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewExpirySweeper создает новый свипер просроченных резерваций
func NewExpirySweeper(bookingRepo BookingRepository, notifier Notifier, interval time.Duration, logger Logger) *ExpirySweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &ExpirySweeper{
		bookingRepo: bookingRepo,
		notifier:    notifier,
		interval:    interval,
		logger:      logger,
	}
}

// Start запускает фоновый цикл свипера
func (s *ExpirySweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("ExpirySweeper: started, interval=%s", s.interval)

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("ExpirySweeper: stopped")
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

// Stop останавливает свипер и дожидается завершения текущего прохода
func (s *ExpirySweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *ExpirySweeper) sweep(ctx context.Context) {
	expired, err := s.bookingRepo.ExpireReservations(ctx, time.Now())
	if err != nil {
		s.logger.Error("ExpirySweeper: failed to expire reservations: %v", err)
		return
	}
	if len(expired) == 0 {
		return
	}

	s.logger.Info("ExpirySweeper: expired %d reservations", len(expired))

	for _, booking := range expired {
		if err := s.notifier.Submit(notify.FromBooking(booking, domain.StatusPaymentPending, "")); err != nil {
			s.logger.Warn("ExpirySweeper: failed to enqueue notification for booking id=%d: %v", booking.ID, err)
		}
	}
}

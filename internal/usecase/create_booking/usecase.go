package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	bookingRepo "github.com/d1sq/BMS-BookingEngine/internal/infra/storage/booking"
	businessRepo "github.com/d1sq/BMS-BookingEngine/internal/infra/storage/business"
	"github.com/d1sq/BMS-BookingEngine/internal/scheduling"
	"github.com/d1sq/BMS-BookingEngine/internal/service/dedup"
	"github.com/d1sq/BMS-BookingEngine/internal/service/notify"
	"github.com/d1sq/BMS-BookingEngine/pkg/ptr"
	"github.com/d1sq/BMS-BookingEngine/pkg/txmanager"
	"github.com/d1sq/BMS-BookingEngine/pkg/types"
)

// maxAlternatives максимум альтернативных слотов в ответе об отказе
const maxAlternatives = 5

// Параметры ожидания конкурирующего запроса с тем же ключом идемпотентности:
// проигравший ждет, пока победитель зафиксирует бронирование
const (
	idempotencyReplayAttempts = 3
	idempotencyReplayBackoff  = 50 * time.Millisecond
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo    BookingRepository
	businessRepo   BusinessRepository
	guard          DuplicateGuard
	notifier       Notifier
	txManager      TransactionManager
	timeProvider   TimeProvider
	logger         Logger
	publicBaseURL  string
	reservationTTL int // Минуты удержания слота в ожидании онлайн-оплаты
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	businessRepo BusinessRepository,
	guard DuplicateGuard,
	notifier Notifier,
	txManager TransactionManager,
	publicBaseURL string,
	reservationMinutes int,
	logger Logger,
) *UseCase {
	if reservationMinutes <= 0 {
		reservationMinutes = domain.DefaultReservationMinutes
	}
	return &UseCase{
		bookingRepo:    bookingRepo,
		businessRepo:   businessRepo,
		guard:          guard,
		notifier:       notifier,
		txManager:      txManager,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
		publicBaseURL:  publicBaseURL,
		reservationTTL: reservationMinutes,
	}
}

// Execute выполняет use case создания бронирования.
// Проверка занятости и вставка выполняются в сериализуемой транзакции
// с блокировкой бронирований дня (FOR UPDATE), чтобы два конкурирующих
// запроса не продали один слот дважды.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: business=%d, service=%d, date=%s, time=%s, phone=%s",
		req.BusinessID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime, req.CustomerPhone)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Получаем бизнес и услугу
	business, err := uc.businessRepo.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, businessRepo.ErrBusinessNotFound) {
			uc.logger.Warn("CreateBooking: business id=%d not found", req.BusinessID)
			return nil, ErrBusinessNotFound
		}
		uc.logger.Error("CreateBooking: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	service, err := uc.businessRepo.GetService(ctx, req.BusinessID, req.ServiceID)
	if err != nil {
		if errors.Is(err, businessRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 3. Идемпотентность: повторный запрос с тем же ключом получает
	// тот же результат, что и первый. Проверка идет до валидации даты:
	// повтор остается повтором, даже если слот с тех пор прошел
	if req.IdempotencyKey != nil && *req.IdempotencyKey != "" {
		existing, err := uc.guard.CheckIdempotency(ctx, req.BusinessID, *req.IdempotencyKey)
		if err != nil {
			uc.logger.Error("CreateBooking: idempotency check failed: %v", err)
			return nil, fmt.Errorf("%w: idempotency check failed: %v", ErrInternal, err)
		}
		if existing != nil {
			uc.logger.Info("CreateBooking: idempotency replay, returning booking id=%d", existing.ID)
			return uc.toResponse(existing, business), nil
		}
	}

	// 4. Валидация даты и времени
	if err := validateDate(req.Date, now); err != nil {
		uc.logger.Warn("CreateBooking: date validation failed: %v", err)
		return nil, err
	}
	if err := validateSlotStart(req.StartTime, business); err != nil {
		uc.logger.Warn("CreateBooking: slot start validation failed: %v", err)
		return nil, err
	}
	if isSameDay(req.Date, now) && req.StartTime.IsBefore(types.NewTimeString(now)) {
		uc.logger.Warn("CreateBooking: slot %s already passed today", req.StartTime)
		return nil, fmt.Errorf("%w: slot start has already passed", ErrInvalidTimeSlot)
	}

	// 5. Отпечаток заявки: ловим двойную отправку формы без ключа идемпотентности
	fingerprint := dedup.Fingerprint(req.BusinessID, req.CustomerPhone, req.Date.Format(domain.DateFormat), req.StartTime, req.ServiceID)
	if err := uc.guard.CheckFingerprint(ctx, fingerprint); err != nil {
		if errors.Is(err, dedup.ErrDuplicateRequest) {
			// Конкуренты с одним ключом идемпотентности делят и отпечаток:
			// проигравший обязан вернуть бронирование победителя, а не отказ
			if req.IdempotencyKey != nil && *req.IdempotencyKey != "" {
				if winner := uc.awaitIdempotentWinner(ctx, req.BusinessID, *req.IdempotencyKey); winner != nil {
					uc.logger.Info("CreateBooking: idempotency replay after fingerprint conflict, booking id=%d", winner.ID)
					return uc.toResponse(winner, business), nil
				}
			}
			uc.logger.Warn("CreateBooking: duplicate request, fingerprint=%s", fingerprint)
			return nil, ErrDuplicateRequest
		}
		uc.logger.Error("CreateBooking: fingerprint check failed: %v", err)
		return nil, fmt.Errorf("%w: fingerprint check failed: %v", ErrInternal, err)
	}

	var result *domain.Booking
	var previousStatus domain.BookingStatus

	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 6. Блокируем активные бронирования дня
		// Ошибки репозитория внутри транзакции оборачиваются через %w:
		// конфликт сериализации (40001) должен остаться в цепочке, иначе
		// менеджер транзакций не повторит транзакцию
		bookings, err := uc.bookingRepo.GetForBusinessDate(txCtx, req.BusinessID, req.Date, now)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get bookings: %v", err)
			return fmt.Errorf("%w: failed to get bookings: %w", ErrInternal, err)
		}
		intervals := scheduling.ActiveIntervals(bookings, now)

		// 7. Выбираем мастера либо проверяем вместимость слота
		var assignedStaffID *int64
		duration := service.DurationMinutes

		candidates, err := uc.businessRepo.GetStaffCandidates(txCtx, req.BusinessID, req.ServiceID)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get staff candidates: %v", err)
			return fmt.Errorf("%w: failed to get staff candidates: %w", ErrInternal, err)
		}

		if len(candidates) > 0 {
			resolution, err := scheduling.ResolveStaff(candidates, req.StartTime, service.DurationMinutes, intervals)
			if err != nil {
				if errors.Is(err, scheduling.ErrNoStaffAvailable) {
					uc.logger.Warn("CreateBooking: no staff available at %s", req.StartTime)
					return uc.slotUnavailable(business, service, candidates, intervals, req)
				}
				uc.logger.Error("CreateBooking: staff resolution failed: %v", err)
				return fmt.Errorf("%w: staff resolution failed: %v", ErrInternal, err)
			}
			assignedStaffID = ptr.Ptr(resolution.StaffID)
			duration = resolution.DurationMinutes
		} else {
			capacity := service.Capacity
			if capacity <= 0 {
				capacity = domain.DefaultCapacity
			}
			taken := scheduling.CountAtSlot(req.StartTime, intervals)
			if taken >= capacity {
				uc.logger.Warn("CreateBooking: slot %s full, %d/%d spots taken", req.StartTime, taken, capacity)
				return uc.slotUnavailable(business, service, nil, intervals, req)
			}
		}

		// 8. Начальный статус: услуги только с онлайн-оплатой удерживают
		// слот до оплаты, остальные подтверждаются сразу
		booking := &domain.Booking{
			PublicRef:       uuid.NewString(),
			BusinessID:      req.BusinessID,
			ServiceID:       req.ServiceID,
			AssignedStaffID: assignedStaffID,
			CustomerName:    req.CustomerName,
			CustomerPhone:   req.CustomerPhone,
			CustomerEmail:   req.CustomerEmail,
			CustomerAddress: req.CustomerAddr,
			Notes:           req.Notes,
			BookingDate:     req.Date,
			StartTime:       req.StartTime,
			DurationMinutes: duration,
			ServiceName:     service.Name,
			ServicePrice:    service.Price,
			IdempotencyKey:  req.IdempotencyKey,
			Fingerprint:     fingerprint,
			CancelToken:     uuid.NewString(),
		}

		switch {
		case service.IsFree():
			booking.Status = domain.StatusConfirmed
			booking.PaymentStatus = domain.PaymentFree
		case service.PaymentMode == domain.PaymentModeOnline && business.AcceptsOnlinePayments():
			booking.Status = domain.StatusPaymentPending
			booking.PaymentStatus = domain.PaymentUnpaid
			booking.ReservedUntil = ptr.Ptr(now.Add(uc.reservationDuration()))
		default:
			booking.Status = domain.StatusConfirmed
			booking.PaymentStatus = domain.PaymentPayAtVenue
		}
		previousStatus = domain.StatusDraft

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrIdempotencyConflict) && req.IdempotencyKey != nil {
				// Конкурирующий запрос с тем же ключом успел первым -
				// возвращаем его результат
				existing, getErr := uc.bookingRepo.GetByIdempotencyKey(txCtx, req.BusinessID, *req.IdempotencyKey)
				if getErr != nil {
					return fmt.Errorf("%w: failed to fetch booking after idempotency conflict: %w", ErrInternal, getErr)
				}
				result = existing
				previousStatus = existing.Status
				return nil
			}
			if errors.Is(err, bookingRepo.ErrConflict) {
				// Нарушение ограничения БД на занятость слота: для клиента
				// это занятый слот, а не внутренняя ошибка
				uc.logger.Warn("CreateBooking: constraint conflict on insert, slot %s", req.StartTime)
				return uc.slotUnavailable(business, service, candidates, intervals, req)
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		// Освобождаем отпечаток: повтор той же заявки после неудачи не дубль
		uc.guard.Release(ctx, fingerprint)
		if txmanager.IsSerializationFailure(err) {
			// Повторы сериализуемой транзакции исчерпаны: конкурент продает
			// тот же слот, для клиента это занятость, а не внутренняя ошибка
			uc.logger.Warn("CreateBooking: serialization conflict persisted after retries, slot %s", req.StartTime)
			return nil, &SlotUnavailableError{}
		}
		return nil, err
	}

	uc.logger.Info("CreateBooking: created booking id=%d status=%s", result.ID, result.Status)

	// 9. Уведомляем клиента о немедленном подтверждении; для payment_pending
	// уведомление отправит подтверждение оплаты
	if result.Status == domain.StatusConfirmed && previousStatus != result.Status {
		if err := uc.notifier.Submit(notify.FromBooking(result, previousStatus, uc.cancelURL(result))); err != nil {
			uc.logger.Warn("CreateBooking: failed to enqueue notification for booking id=%d: %v", result.ID, err)
		}
	}

	return uc.toResponse(result, business), nil
}

// awaitIdempotentWinner ждет, пока конкурирующий запрос с тем же ключом
// идемпотентности зафиксирует свое бронирование, и возвращает его.
// nil означает, что победитель так и не появился (отпечаток занял запрос
// без ключа либо победитель еще не закоммитил транзакцию).
func (uc *UseCase) awaitIdempotentWinner(ctx context.Context, businessID int64, key string) *domain.Booking {
	for attempt := 0; attempt < idempotencyReplayAttempts; attempt++ {
		existing, err := uc.guard.CheckIdempotency(ctx, businessID, key)
		if err != nil {
			uc.logger.Warn("CreateBooking: idempotency re-check failed: %v", err)
		} else if existing != nil {
			return existing
		}
		select {
		case <-time.After(time.Duration(attempt+1) * idempotencyReplayBackoff):
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}

// slotUnavailable собирает альтернативные свободные слоты дня и возвращает
// типизированную ошибку занятости
func (uc *UseCase) slotUnavailable(
	business *domain.Business,
	service *domain.Service,
	candidates []domain.StaffCandidate,
	intervals []scheduling.BookedInterval,
	req *Request,
) error {
	alternatives, err := uc.computeAlternatives(business, service, candidates, intervals, req)
	if err != nil {
		uc.logger.Warn("CreateBooking: failed to compute alternatives: %v", err)
		alternatives = nil
	}
	return &SlotUnavailableError{Alternatives: alternatives}
}

func (uc *UseCase) computeAlternatives(
	business *domain.Business,
	service *domain.Service,
	candidates []domain.StaffCandidate,
	intervals []scheduling.BookedInterval,
	req *Request,
) ([]domain.AvailableSlot, error) {
	slotDuration := business.SlotDurationMinutes
	if slotDuration <= 0 {
		slotDuration = domain.DefaultSlotDurationMinutes
	}

	var slots []domain.AvailableSlot
	var err error
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
		return nil, err
	}

	nowTS := types.NewTimeString(uc.timeProvider.Now())
	today := isSameDay(req.Date, uc.timeProvider.Now())

	alternatives := make([]domain.AvailableSlot, 0, maxAlternatives)
	for _, slot := range slots {
		if slot.IsFull() || slot.StartTime == req.StartTime {
			continue
		}
		if today && slot.StartTime.IsBefore(nowTS) {
			continue
		}
		alternatives = append(alternatives, slot)
		if len(alternatives) == maxAlternatives {
			break
		}
	}

	return alternatives, nil
}

func (uc *UseCase) reservationDuration() time.Duration {
	return time.Duration(uc.reservationTTL) * time.Minute
}

// cancelURL строит публичную ссылку отмены бронирования
func (uc *UseCase) cancelURL(b *domain.Booking) string {
	if uc.publicBaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/api/v1/bookings/%d/cancel?token=%s", uc.publicBaseURL, b.ID, b.CancelToken)
}

// calendarURL строит ссылку на экспорт бронирования в формате iCalendar.
// Токен отмены служит и токеном доступа к файлу.
func (uc *UseCase) calendarURL(b *domain.Booking) string {
	if uc.publicBaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/api/v1/bookings/%d/calendar.ics?token=%s", uc.publicBaseURL, b.ID, b.CancelToken)
}

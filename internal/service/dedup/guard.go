// Package dedup реализует защиту от повторных заявок на бронирование:
// явную идемпотентность по ключу клиента и неявную по отпечатку заявки.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	storage "github.com/d1sq/BMS-BookingEngine/internal/infra/storage/booking"
	"github.com/d1sq/BMS-BookingEngine/pkg/types"
)

const fingerprintKeyPrefix = "booking:fp:"

// Guard сервис защиты от дублей. Redis используется как быстрый слой
// с TTL-окном; при недоступности redis деградируем до проверки по БД.
type Guard struct {
	redisClient  *redis.Client
	bookingRepo  BookingRepo
	window       time.Duration
	logger       Logger
	timeProvider TimeProvider
}

// NewGuard создает новый экземпляр сервиса защиты от дублей.
// redisClient может быть nil - тогда работает только проверка по БД.
func NewGuard(redisClient *redis.Client, bookingRepo BookingRepo, window time.Duration, logger Logger, timeProvider TimeProvider) *Guard {
	if window <= 0 {
		window = time.Duration(domain.DefaultFingerprintWindowSeconds) * time.Second
	}
	return &Guard{
		redisClient:  redisClient,
		bookingRepo:  bookingRepo,
		window:       window,
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// Fingerprint вычисляет отпечаток заявки из бизнеса, телефона клиента,
// даты, времени начала и услуги
func Fingerprint(businessID int64, customerPhone string, date string, startTime types.TimeString, serviceID int64) string {
	payload := fmt.Sprintf("%d|%s|%s|%s|%d", businessID, customerPhone, date, startTime, serviceID)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// CheckIdempotency ищет бронирование, уже созданное по этому ключу
// идемпотентности. Возвращает nil, nil когда ключ еще не использовался.
func (g *Guard) CheckIdempotency(ctx context.Context, businessID int64, idempotencyKey string) (*domain.Booking, error) {
	if idempotencyKey == "" {
		return nil, nil
	}

	booking, err := g.bookingRepo.GetByIdempotencyKey(ctx, businessID, idempotencyKey)
	if err != nil {
		if errors.Is(err, storage.ErrBookingNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: CheckIdempotency - failed to get booking: %v", ErrInternal, err)
	}

	return booking, nil
}

// CheckFingerprint проверяет, не было ли такой же заявки в пределах окна.
// Сначала атомарно захватываем ключ в redis (SET NX EX), при недоступности
// redis проверяем активные бронирования с тем же отпечатком в БД.
func (g *Guard) CheckFingerprint(ctx context.Context, fingerprint string) error {
	if g.redisClient != nil {
		acquired, err := g.redisClient.SetNX(ctx, fingerprintKeyPrefix+fingerprint, 1, g.window).Result()
		if err == nil {
			if !acquired {
				return ErrDuplicateRequest
			}
			return nil
		}
		g.logger.Warn("[WARN] Dedup | CheckFingerprint - redis unavailable, falling back to DB: %v", err)
	}

	now := g.timeProvider.Now()
	bookings, err := g.bookingRepo.GetByFingerprintSince(ctx, fingerprint, now.Add(-g.window))
	if err != nil {
		return fmt.Errorf("%w: CheckFingerprint - failed to query bookings: %v", ErrInternal, err)
	}
	for _, b := range bookings {
		if b.EffectivelyActive(now) {
			return ErrDuplicateRequest
		}
	}

	return nil
}

// Release снимает захват отпечатка. Вызывается при неудачном создании
// бронирования, чтобы повторная заявка с теми же данными не отклонялась
// как дубль
func (g *Guard) Release(ctx context.Context, fingerprint string) {
	if g.redisClient == nil {
		return
	}
	if err := g.redisClient.Del(ctx, fingerprintKeyPrefix+fingerprint).Err(); err != nil {
		g.logger.Warn("[WARN] Dedup | Release - failed to release fingerprint: %v", err)
	}
}

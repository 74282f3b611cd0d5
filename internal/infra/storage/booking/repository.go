package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	"github.com/d1sq/BMS-BookingEngine/pkg/dbmetrics"
	"github.com/d1sq/BMS-BookingEngine/pkg/psqlbuilder"
)

// pgUniqueViolation код ошибки PostgreSQL при нарушении уникального ограничения
const pgUniqueViolation = "23505"

// pgSerializationFailure код ошибки PostgreSQL при конфликте сериализуемых транзакций
const pgSerializationFailure = "40001"

// mapDriverError оборачивает ошибку драйвера, сохраняя её в цепочке:
// конфликт сериализации мапится в ErrSerialization, остальное - в fallback.
// Цепочка не обрывается, чтобы менеджер транзакций видел код 40001 и
// повторял сериализуемую транзакцию.
func mapDriverError(fallback error, method, action string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgSerializationFailure {
		return fmt.Errorf("%w: %s - %s: %w", ErrSerialization, method, action, err)
	}
	return fmt.Errorf("%w: %s - %s: %w", fallback, method, action, err)
}

var bookingColumns = []string{
	"id",
	"public_ref",
	"business_id",
	"service_id",
	"assigned_staff_id",
	"customer_name",
	"customer_phone",
	"customer_email",
	"customer_address",
	"notes",
	"booking_date",
	"start_time",
	"duration_minutes",
	"status",
	"payment_status",
	"service_name",
	"service_price",
	"reserved_until",
	"idempotency_key",
	"fingerprint",
	"cancel_token",
	"gateway_order_id",
	"gateway_payment_id",
	"cancellation_reason",
	"cancelled_at",
	"confirmed_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Если в контексте передана активная транзакция, использует её.
// Уникальные ограничения БД остаются последней линией защиты от гонок:
// нарушение по idempotency_key мапится в ErrIdempotencyConflict (вызывающий
// код перечитывает существующее бронирование), остальные нарушения - в
// ErrConflict (для клиента это занятый слот, а не внутренняя ошибка).
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"public_ref",
			"business_id",
			"service_id",
			"assigned_staff_id",
			"customer_name",
			"customer_phone",
			"customer_email",
			"customer_address",
			"notes",
			"booking_date",
			"start_time",
			"duration_minutes",
			"status",
			"payment_status",
			"service_name",
			"service_price",
			"reserved_until",
			"idempotency_key",
			"fingerprint",
			"cancel_token",
		).
		Values(
			booking.PublicRef,
			booking.BusinessID,
			booking.ServiceID,
			booking.AssignedStaffID,
			booking.CustomerName,
			booking.CustomerPhone,
			booking.CustomerEmail,
			booking.CustomerAddress,
			booking.Notes,
			booking.BookingDate,
			booking.StartTime,
			booking.DurationMinutes,
			booking.Status,
			booking.PaymentStatus,
			booking.ServiceName,
			booking.ServicePrice,
			booking.ReservedUntil,
			booking.IdempotencyKey,
			booking.Fingerprint,
			booking.CancelToken,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			if strings.Contains(pqErr.Constraint, "idempotency") {
				return nil, ErrIdempotencyConflict
			}
			return nil, ErrConflict
		}
		return nil, mapDriverError(ErrExecQuery, "Create", "execute insert", err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, "GetByID")
}

// GetByIdempotencyKey получает бронирование по ключу идемпотентности.
// Возвращает ErrBookingNotFound, если ключ еще не использовался.
func (r *Repository) GetByIdempotencyKey(ctx context.Context, businessID int64, key string) (*domain.Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"business_id": businessID, "idempotency_key": key}, "GetByIdempotencyKey")
}

// GetByGatewayOrderID получает бронирование по ID заказа платежного шлюза
func (r *Repository) GetByGatewayOrderID(ctx context.Context, orderID string) (*domain.Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"gateway_order_id": orderID}, "GetByGatewayOrderID")
}

func (r *Repository) getOne(ctx context.Context, where squirrel.Eq, method string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(where).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, method, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, mapDriverError(ErrScanRow, method, "scan booking", err)
	}

	return booking, nil
}

// GetForBusinessDate получает бронирования бизнеса на дату, фактически
// занимающие слоты: отмененные исключены, как и payment_pending с истекшим
// reserved_until (истекшая бронь считается освобожденной еще до того, как
// фоновая джоба переведет её в cancelled).
// Внутри транзакции добавляется FOR UPDATE - блокировка строк на время
// проверки доступности слота при создании бронирования.
func (r *Repository) GetForBusinessDate(ctx context.Context, businessID int64, date time.Time, now time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"business_id": businessID, "booking_date": date}).
		Where(squirrel.NotEq{"status": string(domain.StatusCancelled)}).
		Where(squirrel.Or{
			squirrel.NotEq{"status": string(domain.StatusPaymentPending)},
			squirrel.Eq{"reserved_until": nil},
			squirrel.Gt{"reserved_until": now},
		}).
		OrderBy("start_time ASC, id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetForBusinessDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapDriverError(ErrExecQuery, "GetForBusinessDate", "execute query", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetByFingerprintSince получает неотмененные бронирования с указанным
// отпечатком, созданные после since. Используется как fallback-проверка
// двойной отправки формы, когда Redis недоступен.
func (r *Repository) GetByFingerprintSince(ctx context.Context, fingerprint string, since time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"fingerprint": fingerprint}).
		Where(squirrel.NotEq{"status": string(domain.StatusCancelled)}).
		Where(squirrel.GtOrEq{"created_at": since}).
		OrderBy("created_at DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByFingerprintSince - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapDriverError(ErrExecQuery, "GetByFingerprintSince", "execute query", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// SetGatewayOrder записывает ID заказа платежного шлюза.
// Заказ можно открыть только для payment_pending бронирования без
// существующего заказа; повторное открытие обрабатывается на уровне usecase
// как идемпотентный возврат существующего заказа.
func (r *Repository) SetGatewayOrder(ctx context.Context, id int64, orderID string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("gateway_order_id", orderID).
		Set("payment_status", domain.PaymentPending).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":               id,
			"status":           string(domain.StatusPaymentPending),
			"gateway_order_id": nil,
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetGatewayOrder - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "SetGatewayOrder", ErrNotPending)
}

// SetPaymentRef записывает ссылку на платеж, полученную из клиентского
// callback. Статус бронирования намеренно не меняется: подтверждение
// авторитетно только из вебхука.
func (r *Repository) SetPaymentRef(ctx context.Context, id int64, paymentID string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("gateway_payment_id", paymentID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetPaymentRef - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "SetPaymentRef", ErrBookingNotFound)
}

// Confirm переводит payment_pending бронирование в confirmed.
// Условие WHERE гарантирует идемпотентность: повторный вебхук не находит
// строку в payment_pending и получает ErrNotPending. Истекшая резервация
// не подтверждается - слот уже мог быть продан заново.
func (r *Repository) Confirm(ctx context.Context, id int64, paymentID string, now time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusConfirmed).
		Set("payment_status", domain.PaymentPaid).
		Set("gateway_payment_id", paymentID).
		Set("reserved_until", nil).
		Set("confirmed_at", now).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":     id,
			"status": string(domain.StatusPaymentPending),
		}).
		Where(squirrel.Or{
			squirrel.Eq{"reserved_until": nil},
			squirrel.Gt{"reserved_until": now},
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Confirm - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "Confirm", ErrNotPending)
}

// Cancel отменяет бронирование с указанием причины и снимает резервацию
func (r *Repository) Cancel(ctx context.Context, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("reserved_until", nil).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": []string{
			string(domain.StatusDraft),
			string(domain.StatusPaymentPending),
		}}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, query, args, "Cancel", ErrCannotCancel)
}

// ExpireReservations отменяет все payment_pending бронирования с истекшим
// reserved_until и возвращает затронутые строки для отправки уведомлений
func (r *Repository) ExpireReservations(ctx context.Context, now time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("reserved_until", nil).
		Set("cancellation_reason", "payment reservation expired").
		Set("cancelled_at", now).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"status": string(domain.StatusPaymentPending)}).
		Where(squirrel.LtOrEq{"reserved_until": now}).
		Suffix("RETURNING " + strings.Join(bookingColumns, ", ")).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ExpireReservations - build update query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapDriverError(ErrExecQuery, "ExpireReservations", "execute query", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

func (r *Repository) execExpectingRow(ctx context.Context, executor DBExecutor, query string, args []interface{}, method string, noRowErr error) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return mapDriverError(ErrExecQuery, method, "execute update", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, method, err)
	}

	if rowsAffected == 0 {
		return noRowErr
	}

	return nil
}

// rowScanner покрывает *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.PublicRef,
		&booking.BusinessID,
		&booking.ServiceID,
		&booking.AssignedStaffID,
		&booking.CustomerName,
		&booking.CustomerPhone,
		&booking.CustomerEmail,
		&booking.CustomerAddress,
		&booking.Notes,
		&booking.BookingDate,
		&booking.StartTime,
		&booking.DurationMinutes,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.ServiceName,
		&booking.ServicePrice,
		&booking.ReservedUntil,
		&booking.IdempotencyKey,
		&booking.Fingerprint,
		&booking.CancelToken,
		&booking.GatewayOrderID,
		&booking.GatewayPaymentID,
		&booking.CancellationReason,
		&booking.CancelledAt,
		&booking.ConfirmedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, mapDriverError(ErrScanRow, "scanBookings", "scan row", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, mapDriverError(ErrScanRow, "scanBookings", "rows error", err)
	}

	return bookings, nil
}

package business

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	"github.com/d1sq/BMS-BookingEngine/pkg/dbmetrics"
	"github.com/d1sq/BMS-BookingEngine/pkg/psqlbuilder"
)

// DBExecutor общий интерфейс выполнения запросов
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий для чтения данных бизнеса, услуг и мастеров.
// Эти сущности управляются админ-флоу вне движка бронирований; здесь
// только чтение плюс идемпотентное автосоздание мастера "Owner".
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бизнеса
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetBusiness получает бизнес по ID
func (r *Repository) GetBusiness(ctx context.Context, id int64) (*domain.Business, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"timezone",
		"open_time",
		"close_time",
		"slot_duration_minutes",
		"payments_enabled",
		"gateway_key_id",
		"gateway_key_secret",
		"webhook_secret",
		"created_at",
		"updated_at",
	).
		From("businesses").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetBusiness - build select query: %v", ErrBuildQuery, err)
	}

	var b domain.Business
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&b.Name,
		&b.Timezone,
		&b.OpenTime,
		&b.CloseTime,
		&b.SlotDurationMinutes,
		&b.PaymentsEnabled,
		&b.GatewayKeyID,
		&b.GatewayKeySecret,
		&b.WebhookSecret,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrBusinessNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetBusiness - scan business: %w", ErrScanRow, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}

// GetService получает услугу бизнеса по ID
func (r *Repository) GetService(ctx context.Context, businessID, serviceID int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"business_id",
		"name",
		"duration_minutes",
		"price",
		"payment_mode",
		"capacity",
		"created_at",
		"updated_at",
	).
		From("services").
		Where(squirrel.Eq{"id": serviceID, "business_id": businessID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.Service
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.BusinessID,
		&s.Name,
		&s.DurationMinutes,
		&s.Price,
		&s.PaymentMode,
		&s.Capacity,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %w", ErrScanRow, err)
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}

// GetStaffCandidates получает активных мастеров, привязанных к услуге,
// в детерминированном порядке: приоритет привязки, затем ID мастера.
// Перед чтением идемпотентно создается мастер "Owner", если у бизнеса
// еще нет ни одной записи staff.
// Пустой результат означает, что услуга работает в режиме capacity.
func (r *Repository) GetStaffCandidates(ctx context.Context, businessID, serviceID int64) ([]domain.StaffCandidate, error) {
	if err := r.EnsureOwnerStaff(ctx, businessID); err != nil {
		return nil, err
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"s.id",
		"s.business_id",
		"s.name",
		"s.active",
		"s.custom_hours",
		"s.created_at",
		"s.updated_at",
		"a.staff_id",
		"a.service_id",
		"a.priority",
		"a.duration_override_minutes",
		"a.created_at",
	).
		From("staff s").
		Join("staff_service_assignments a ON a.staff_id = s.id").
		Where(squirrel.Eq{
			"s.business_id": businessID,
			"a.service_id":  serviceID,
			"s.active":      true,
		}).
		OrderBy("a.priority ASC", "s.id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetStaffCandidates - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetStaffCandidates - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	candidates := make([]domain.StaffCandidate, 0)
	for rows.Next() {
		var c domain.StaffCandidate
		var staffCreated, staffUpdated, assignCreated sql.NullTime

		err := rows.Scan(
			&c.Staff.ID,
			&c.Staff.BusinessID,
			&c.Staff.Name,
			&c.Staff.Active,
			&c.Staff.CustomHours,
			&staffCreated,
			&staffUpdated,
			&c.Assignment.StaffID,
			&c.Assignment.ServiceID,
			&c.Assignment.Priority,
			&c.Assignment.DurationOverrideMinutes,
			&assignCreated,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetStaffCandidates - scan row: %w", ErrScanRow, err)
		}

		c.Staff.CreatedAt = staffCreated.Time
		c.Staff.UpdatedAt = staffUpdated.Time
		c.Assignment.CreatedAt = assignCreated.Time

		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetStaffCandidates - rows error: %w", ErrScanRow, err)
	}

	return candidates, nil
}

// EnsureOwnerStaff создает мастера "Owner" для бизнеса без единой записи
// staff. Операция идемпотентна и безопасна при повторных вызовах: INSERT
// выполняется только при отсутствии строк.
func (r *Repository) EnsureOwnerStaff(ctx context.Context, businessID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query := `INSERT INTO staff (business_id, name, active, custom_hours)
		SELECT $1, $2, TRUE, FALSE
		WHERE NOT EXISTS (SELECT 1 FROM staff WHERE business_id = $1)`

	if _, err := executor.ExecContext(ctx, query, businessID, domain.DefaultOwnerStaffName); err != nil {
		return fmt.Errorf("%w: EnsureOwnerStaff - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

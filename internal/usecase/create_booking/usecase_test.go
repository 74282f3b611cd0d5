package create_booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	bookingRepo "github.com/d1sq/BMS-BookingEngine/internal/infra/storage/booking"
	"github.com/d1sq/BMS-BookingEngine/internal/service/dedup"
	"github.com/d1sq/BMS-BookingEngine/internal/service/notify"
	"github.com/d1sq/BMS-BookingEngine/pkg/types"
)

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type testLogger struct{}

func (l *testLogger) Info(format string, v ...interface{})  {}
func (l *testLogger) Warn(format string, v ...interface{})  {}
func (l *testLogger) Error(format string, v ...interface{}) {}

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time { return p.now }

type fakeBookingRepository struct {
	existing    []*domain.Booking
	existingErr error
	byKey       *domain.Booking
	createErr   error
	created     *domain.Booking
	nextID      int64
}

func (r *fakeBookingRepository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	copied := *b
	r.nextID++
	copied.ID = r.nextID
	copied.CreatedAt = testNow
	r.created = &copied
	return &copied, nil
}

func (r *fakeBookingRepository) GetByIdempotencyKey(ctx context.Context, businessID int64, key string) (*domain.Booking, error) {
	if r.byKey == nil {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return r.byKey, nil
}

func (r *fakeBookingRepository) GetForBusinessDate(ctx context.Context, businessID int64, date, now time.Time) ([]*domain.Booking, error) {
	if r.existingErr != nil {
		return nil, r.existingErr
	}
	return r.existing, nil
}

type fakeBusinessRepository struct {
	business   *domain.Business
	service    *domain.Service
	candidates []domain.StaffCandidate
}

func (r *fakeBusinessRepository) GetBusiness(ctx context.Context, id int64) (*domain.Business, error) {
	return r.business, nil
}

func (r *fakeBusinessRepository) GetService(ctx context.Context, businessID, serviceID int64) (*domain.Service, error) {
	return r.service, nil
}

func (r *fakeBusinessRepository) GetStaffCandidates(ctx context.Context, businessID, serviceID int64) ([]domain.StaffCandidate, error) {
	return r.candidates, nil
}

type fakeGuard struct {
	idempotent *domain.Booking
	// idempotentAfter отдает idempotent начиная с N-го вызова CheckIdempotency:
	// имитация победителя, коммит которого завершается позже проверки
	idempotentAfter  int
	idempotencyCalls int
	fpErr            error
	releasedWith     []string
}

func (g *fakeGuard) CheckIdempotency(ctx context.Context, businessID int64, key string) (*domain.Booking, error) {
	g.idempotencyCalls++
	if g.idempotencyCalls < g.idempotentAfter {
		return nil, nil
	}
	return g.idempotent, nil
}

func (g *fakeGuard) CheckFingerprint(ctx context.Context, fingerprint string) error {
	return g.fpErr
}

func (g *fakeGuard) Release(ctx context.Context, fingerprint string) {
	g.releasedWith = append(g.releasedWith, fingerprint)
}

type fakeNotifier struct {
	submitted []notify.Notification
}

func (n *fakeNotifier) Submit(notification notify.Notification) error {
	n.submitted = append(n.submitted, notification)
	return nil
}

type inlineTxManager struct{}

func (m *inlineTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	uc       *UseCase
	bookings *fakeBookingRepository
	business *fakeBusinessRepository
	guard    *fakeGuard
	notifier *fakeNotifier
}

func newFixture() *fixture {
	f := &fixture{
		bookings: &fakeBookingRepository{},
		business: &fakeBusinessRepository{
			business: &domain.Business{
				ID:                  1,
				Name:                "Salon",
				OpenTime:            "09:00",
				CloseTime:           "18:00",
				SlotDurationMinutes: 30,
			},
			service: &domain.Service{
				ID:              42,
				BusinessID:      1,
				Name:            "Haircut",
				DurationMinutes: 30,
				Price:           500,
				PaymentMode:     domain.PaymentModeCash,
				Capacity:        1,
			},
		},
		guard:    &fakeGuard{},
		notifier: &fakeNotifier{},
	}
	f.uc = NewUseCase(f.bookings, f.business, f.guard, f.notifier, &inlineTxManager{}, "https://booking.example.com", 15, &testLogger{})
	f.uc.timeProvider = &fixedTimeProvider{now: testNow}
	return f
}

func validRequest() *Request {
	return &Request{
		BusinessID:    1,
		ServiceID:     42,
		Date:          time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		StartTime:     "10:00",
		CustomerName:  "Ivan Petrov",
		CustomerPhone: "+79990001122",
	}
}

func TestExecute_CashServiceConfirmedImmediately(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, string(domain.PaymentPayAtVenue), resp.PaymentStatus)
	assert.Nil(t, resp.ReservedUntil)
	assert.Nil(t, resp.AssignedStaffID)
	assert.NotEmpty(t, resp.PublicRef)
	assert.NotEmpty(t, resp.CancelToken)
	assert.Contains(t, resp.CancelURL, resp.CancelToken)
	assert.Contains(t, resp.CalendarURL, "calendar.ics")
	assert.Contains(t, resp.CalendarURL, resp.CancelToken)
	assert.Equal(t, "Salon", resp.BusinessName)
	assert.Equal(t, "Haircut", resp.ServiceName)
	assert.Equal(t, 500.0, resp.ServicePrice)

	require.Len(t, f.notifier.submitted, 1)
	assert.Equal(t, domain.StatusConfirmed, f.notifier.submitted[0].NewStatus)
	assert.Equal(t, domain.StatusDraft, f.notifier.submitted[0].PreviousStatus)
}

func TestExecute_FreeServiceConfirmedWithFreePayment(t *testing.T) {
	f := newFixture()
	f.business.service.Price = 0

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, string(domain.PaymentFree), resp.PaymentStatus)
}

func TestExecute_OnlineServiceHoldsSlot(t *testing.T) {
	f := newFixture()
	f.business.service.PaymentMode = domain.PaymentModeOnline
	f.business.business.PaymentsEnabled = true
	f.business.business.GatewayKeyID = "key"
	f.business.business.GatewayKeySecret = "secret"

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusPaymentPending), resp.Status)
	assert.Equal(t, string(domain.PaymentUnpaid), resp.PaymentStatus)
	require.NotNil(t, resp.ReservedUntil)
	assert.Equal(t, testNow.Add(15*time.Minute), *resp.ReservedUntil)

	// Уведомление уйдет после подтверждения оплаты, не сейчас
	assert.Empty(t, f.notifier.submitted)
}

func TestExecute_OnlineServiceFallsBackWithoutGateway(t *testing.T) {
	f := newFixture()
	f.business.service.PaymentMode = domain.PaymentModeOnline
	// Бизнес не настроил платежный шлюз

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, string(domain.PaymentPayAtVenue), resp.PaymentStatus)
}

func TestExecute_StaffModeAssignsByPriority(t *testing.T) {
	f := newFixture()
	f.business.candidates = []domain.StaffCandidate{
		{Staff: domain.Staff{ID: 2, Name: "Boris", Active: true}, Assignment: domain.StaffAssignment{Priority: 2}},
		{Staff: domain.Staff{ID: 1, Name: "Anna", Active: true}, Assignment: domain.StaffAssignment{Priority: 1}},
	}

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, resp.AssignedStaffID)
	assert.Equal(t, int64(1), *resp.AssignedStaffID)
}

func TestExecute_StaffModeFallsThroughToFreeStaff(t *testing.T) {
	f := newFixture()
	f.business.candidates = []domain.StaffCandidate{
		{Staff: domain.Staff{ID: 1, Name: "Anna", Active: true}, Assignment: domain.StaffAssignment{Priority: 1}},
		{Staff: domain.Staff{ID: 2, Name: "Boris", Active: true}, Assignment: domain.StaffAssignment{Priority: 2}},
	}
	anna := int64(1)
	f.bookings.existing = []*domain.Booking{
		{Status: domain.StatusConfirmed, StartTime: "10:00", DurationMinutes: 30, AssignedStaffID: &anna},
	}

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, resp.AssignedStaffID)
	assert.Equal(t, int64(2), *resp.AssignedStaffID)
}

func TestExecute_CapacityFullReturnsAlternatives(t *testing.T) {
	f := newFixture()
	f.bookings.existing = []*domain.Booking{
		{Status: domain.StatusConfirmed, StartTime: "10:00", DurationMinutes: 30},
	}

	_, err := f.uc.Execute(context.Background(), validRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSlotNotAvailable)

	var slotErr *SlotUnavailableError
	require.ErrorAs(t, err, &slotErr)
	require.NotEmpty(t, slotErr.Alternatives)
	assert.LessOrEqual(t, len(slotErr.Alternatives), maxAlternatives)
	for _, alt := range slotErr.Alternatives {
		assert.NotEqual(t, types.TimeString("10:00"), alt.StartTime)
		assert.Greater(t, alt.AvailableSpots, 0)
	}

	// Отпечаток освобожден: клиент может повторить с другим временем
	assert.NotEmpty(t, f.guard.releasedWith)
}

func TestExecute_AllStaffBusyReturnsSlotUnavailable(t *testing.T) {
	f := newFixture()
	f.business.candidates = []domain.StaffCandidate{
		{Staff: domain.Staff{ID: 1, Name: "Anna", Active: true}, Assignment: domain.StaffAssignment{Priority: 1}},
	}
	anna := int64(1)
	f.bookings.existing = []*domain.Booking{
		{Status: domain.StatusConfirmed, StartTime: "10:00", DurationMinutes: 30, AssignedStaffID: &anna},
	}

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestExecute_ExpiredReservationDoesNotBlockSlot(t *testing.T) {
	f := newFixture()
	expired := testNow.Add(-time.Minute)
	f.bookings.existing = []*domain.Booking{
		{Status: domain.StatusPaymentPending, StartTime: "10:00", DurationMinutes: 30, ReservedUntil: &expired},
	}

	resp, err := f.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
}

func TestExecute_IdempotencyReplayReturnsExisting(t *testing.T) {
	f := newFixture()
	key := "client-key-1"
	f.guard.idempotent = &domain.Booking{
		ID:          99,
		PublicRef:   "ref-existing",
		BusinessID:  1,
		ServiceID:   42,
		Status:      domain.StatusConfirmed,
		CancelToken: "token-existing",
	}

	req := validRequest()
	req.IdempotencyKey = &key

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(99), resp.ID)
	assert.Equal(t, "ref-existing", resp.PublicRef)

	// Повтор не создает новую запись и не шлет уведомление
	assert.Nil(t, f.bookings.created)
	assert.Empty(t, f.notifier.submitted)
}

func TestExecute_IdempotencyConflictFetchesWinner(t *testing.T) {
	f := newFixture()
	key := "client-key-1"
	f.bookings.createErr = bookingRepo.ErrIdempotencyConflict
	f.bookings.byKey = &domain.Booking{
		ID:        77,
		PublicRef: "ref-winner",
		Status:    domain.StatusConfirmed,
	}

	req := validRequest()
	req.IdempotencyKey = &key

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(77), resp.ID)
	// Статус победителя уже confirmed, повторного уведомления нет
	assert.Empty(t, f.notifier.submitted)
}

func TestExecute_DuplicateFingerprintRejected(t *testing.T) {
	f := newFixture()
	f.guard.fpErr = dedup.ErrDuplicateRequest

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrDuplicateRequest)
}

func TestExecute_ConcurrentSameKeyReplaysWinner(t *testing.T) {
	// Два одновременных запроса с одним ключом идемпотентности делят
	// отпечаток: проигравший отпечаточную гонку обязан дождаться
	// бронирования победителя и вернуть его, а не отказ "дубль"
	f := newFixture()
	key := "client-key-1"
	f.guard.fpErr = dedup.ErrDuplicateRequest
	f.guard.idempotent = &domain.Booking{
		ID:          99,
		PublicRef:   "ref-winner",
		BusinessID:  1,
		ServiceID:   42,
		Status:      domain.StatusConfirmed,
		CancelToken: "token-winner",
	}
	// Первая проверка ключа победителя еще не видит, повторная - видит
	f.guard.idempotentAfter = 2

	req := validRequest()
	req.IdempotencyKey = &key

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(99), resp.ID)
	assert.Equal(t, "ref-winner", resp.PublicRef)

	// Проигравший ничего не создает и не шлет уведомлений
	assert.Nil(t, f.bookings.created)
	assert.Empty(t, f.notifier.submitted)
}

func TestExecute_DuplicateWithKeyButNoWinnerRejected(t *testing.T) {
	// Отпечаток занят запросом без ключа: ждать нечего, это дубль
	f := newFixture()
	key := "client-key-1"
	f.guard.fpErr = dedup.ErrDuplicateRequest

	req := validRequest()
	req.IdempotencyKey = &key

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrDuplicateRequest)
	assert.Nil(t, f.bookings.created)
}

func TestExecute_SerializationConflictMapsToSlotUnavailable(t *testing.T) {
	// Конфликт 40001, переживший повторы транзакции, для клиента
	// означает занятый слот, а не внутреннюю ошибку
	f := newFixture()
	f.bookings.existingErr = fmt.Errorf("booking.repository: serialization conflict: GetForBusinessDate - execute query: %w",
		&pq.Error{Code: "40001"})

	_, err := f.uc.Execute(context.Background(), validRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.NotErrorIs(t, err, ErrInternal)
	assert.NotEmpty(t, f.guard.releasedWith)
}

func TestExecute_InsertConflictMapsToSlotUnavailable(t *testing.T) {
	// Нарушение ограничения БД на вставке трактуется как занятый слот
	// с альтернативами, а не как внутренняя ошибка
	f := newFixture()
	f.bookings.createErr = bookingRepo.ErrConflict

	_, err := f.uc.Execute(context.Background(), validRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.NotErrorIs(t, err, ErrInternal)

	var slotErr *SlotUnavailableError
	require.ErrorAs(t, err, &slotErr)
	assert.NotEmpty(t, slotErr.Alternatives)
}

func TestExecute_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr error
	}{
		{
			name:    "missing customer name",
			mutate:  func(r *Request) { r.CustomerName = "" },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing phone",
			mutate:  func(r *Request) { r.CustomerPhone = "" },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "date in the past",
			mutate:  func(r *Request) { r.Date = testNow.AddDate(0, 0, -1) },
			wantErr: ErrInvalidDate,
		},
		{
			name:    "start before opening",
			mutate:  func(r *Request) { r.StartTime = "08:00" },
			wantErr: ErrInvalidTimeSlot,
		},
		{
			name:    "start at closing time",
			mutate:  func(r *Request) { r.StartTime = "18:00" },
			wantErr: ErrInvalidTimeSlot,
		},
		{
			name:    "off-grid start",
			mutate:  func(r *Request) { r.StartTime = "10:15" },
			wantErr: ErrInvalidTimeSlot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := validRequest()
			tt.mutate(req)
			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExecute_PassedSlotTodayRejected(t *testing.T) {
	f := newFixture()
	req := validRequest()
	req.Date = testNow // 2026-03-14, сейчас 09:00
	req.StartTime = "09:00"
	// Ровно текущее время еще допустимо
	_, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	f = newFixture()
	f.uc.timeProvider = &fixedTimeProvider{now: testNow.Add(30 * time.Minute)} // 09:30
	req = validRequest()
	req.Date = testNow
	req.StartTime = "09:00"
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)
}

func TestExecute_CreateFailureReleasesFingerprint(t *testing.T) {
	f := newFixture()
	f.bookings.createErr = errors.New("db down")

	_, err := f.uc.Execute(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrInternal)
	assert.NotEmpty(t, f.guard.releasedWith)
}

package domain

// Default configuration values
const (
	DefaultSlotDurationMinutes = 30
	DefaultCapacity            = 1
	// DefaultReservationMinutes окно удержания слота в ожидании онлайн-оплаты
	DefaultReservationMinutes = 15
	// DefaultFingerprintWindowSeconds окно защиты от повторной отправки формы
	DefaultFingerprintWindowSeconds = 300
)

// Business validation constants
const (
	MinSlotDurationMinutes = 5
	MaxSlotDurationMinutes = 480 // 8 hours
	MinCapacity            = 1
	MaxCapacity            = 100
	MaxCustomerNameLength  = 120
	MaxPhoneLength         = 32
	MaxNotesLength         = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses список статусов, занимающих слот
// Используется при подсчете занятости; payment_pending с истекшим
// reserved_until дополнительно исключается условием на время
var ActiveStatuses = []BookingStatus{
	StatusDraft,
	StatusPaymentPending,
	StatusConfirmed,
}

// NotifiableStatuses статусы, о переходе в которые уведомляется клиент
var NotifiableStatuses = []BookingStatus{
	StatusConfirmed,
	StatusCancelled,
}

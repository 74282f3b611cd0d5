package scheduling

import (
	"errors"
	"sort"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	"github.com/d1sq/BMS-BookingEngine/pkg/types"
)

var (
	// ErrNoStaffConfigured возвращается, когда к услуге не привязан ни один
	// мастер; вызывающий код должен перейти в режим capacity
	ErrNoStaffConfigured = errors.New("scheduling: no staff configured for service")

	// ErrNoStaffAvailable возвращается, когда все мастера заняты в интервале;
	// для клиента это недоступность слота, а не внутренняя ошибка
	ErrNoStaffAvailable = errors.New("scheduling: no staff available for interval")
)

// StaffResolution is the result of assigning a staff member to a booking.
type StaffResolution struct {
	StaffID         int64
	StaffName       string
	DurationMinutes int
}

// ResolveStaff picks the first conflict-free eligible staff member for the
// requested start time. Candidates are tried in deterministic order
// (assignment priority, then staff id); determinism keeps test runs and
// concurrent re-checks reproducible.
func ResolveStaff(candidates []domain.StaffCandidate, start types.TimeString, serviceDuration int, existing []BookedInterval) (*StaffResolution, error) {
	if len(candidates) == 0 {
		return nil, ErrNoStaffConfigured
	}

	ordered := make([]domain.StaffCandidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Assignment.Priority != ordered[j].Assignment.Priority {
			return ordered[i].Assignment.Priority < ordered[j].Assignment.Priority
		}
		return ordered[i].Staff.ID < ordered[j].Staff.ID
	})

	byStaff := GroupByStaff(existing)

	for i := range ordered {
		candidate := &ordered[i]
		if !candidate.Staff.Active {
			continue
		}

		duration := candidate.EffectiveDuration(serviceDuration)
		interval, err := NewInterval(start, duration)
		if err != nil {
			continue
		}

		if HasConflict(interval, byStaff[candidate.Staff.ID]) {
			continue
		}

		return &StaffResolution{
			StaffID:         candidate.Staff.ID,
			StaffName:       candidate.Staff.Name,
			DurationMinutes: duration,
		}, nil
	}

	return nil, ErrNoStaffAvailable
}

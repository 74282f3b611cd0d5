package scheduling

import (
	"errors"
	"time"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	"github.com/d1sq/BMS-BookingEngine/pkg/types"
)

// ErrInvalidSlotDuration возвращается при slotDuration <= 0
var ErrInvalidSlotDuration = errors.New("scheduling: slot duration must be positive")

// GenerateSlotStarts tiles [open, close) with slotDuration steps.
// Слот включается, только если целиком помещается до закрытия
// (slotStart + slotDuration <= close); неполный хвостовой слот отбрасывается.
// При open >= close возвращается пустой список.
func GenerateSlotStarts(open, close types.TimeString, slotDuration int) ([]types.TimeString, error) {
	if slotDuration <= 0 {
		return nil, ErrInvalidSlotDuration
	}
	if !open.IsBefore(close) {
		return []types.TimeString{}, nil
	}

	starts := make([]types.TimeString, 0)
	current := open

	for current.IsBefore(close) {
		slotEnd, err := current.AddMinutes(slotDuration)
		if err != nil {
			break
		}
		if slotEnd.IsAfter(close) {
			break
		}
		starts = append(starts, current)

		current, err = current.AddMinutes(slotDuration)
		if err != nil {
			break
		}
	}

	return starts, nil
}

// ComputeSlots produces the ordered availability for one day in capacity
// mode: each slot start carries the number of remaining spots, counted by
// exact slot-start equality against existing active bookings.
func ComputeSlots(open, close types.TimeString, slotDuration int, existing []BookedInterval, capacity int) ([]domain.AvailableSlot, error) {
	starts, err := GenerateSlotStarts(open, close, slotDuration)
	if err != nil {
		return nil, err
	}

	slots := make([]domain.AvailableSlot, len(starts))
	for i, start := range starts {
		taken := CountAtSlot(start, existing)
		available := capacity - taken
		if available < 0 {
			available = 0
		}
		slots[i] = domain.AvailableSlot{
			StartTime:       start,
			DurationMinutes: slotDuration,
			AvailableSpots:  available,
			TotalSpots:      capacity,
		}
	}

	return slots, nil
}

// ComputeStaffSlots produces the ordered availability for one day in staff
// mode: a slot's free spots equal the number of eligible staff members with
// no overlapping active booking on that interval.
func ComputeStaffSlots(open, close types.TimeString, slotDuration, serviceDuration int, candidates []domain.StaffCandidate, existing []BookedInterval) ([]domain.AvailableSlot, error) {
	starts, err := GenerateSlotStarts(open, close, slotDuration)
	if err != nil {
		return nil, err
	}

	byStaff := GroupByStaff(existing)

	slots := make([]domain.AvailableSlot, 0, len(starts))
	for _, start := range starts {
		free := 0
		for i := range candidates {
			candidate := &candidates[i]
			interval, err := NewInterval(start, candidate.EffectiveDuration(serviceDuration))
			if err != nil {
				// Слот с переопределенной длительностью не влезает в день
				continue
			}
			if !HasConflict(interval, byStaff[candidate.Staff.ID]) {
				free++
			}
		}
		slots = append(slots, domain.AvailableSlot{
			StartTime:       start,
			DurationMinutes: slotDuration,
			AvailableSpots:  free,
			TotalSpots:      len(candidates),
		})
	}

	return slots, nil
}

// GroupByStaff indexes booked intervals by assigned staff id. Intervals
// without a staff assignment are dropped: they belong to capacity-mode
// history and never block a specific staff member.
func GroupByStaff(existing []BookedInterval) map[int64][]BookedInterval {
	byStaff := make(map[int64][]BookedInterval)
	for _, e := range existing {
		if e.StaffID == nil {
			continue
		}
		byStaff[*e.StaffID] = append(byStaff[*e.StaffID], e)
	}
	return byStaff
}

// ActiveIntervals converts bookings into booked intervals, skipping
// cancelled and expired reservations as well as rows with malformed times.
// Некорректные времена не валят расчет: такие строки просто исключаются.
func ActiveIntervals(bookings []*domain.Booking, now time.Time) []BookedInterval {
	intervals := make([]BookedInterval, 0, len(bookings))
	for _, b := range bookings {
		if !b.EffectivelyActive(now) {
			continue
		}
		if b.StartTime.Validate() != nil {
			continue
		}
		interval, err := NewInterval(b.StartTime, b.DurationMinutes)
		if err != nil {
			continue
		}
		intervals = append(intervals, BookedInterval{Interval: interval, StaffID: b.AssignedStaffID})
	}
	return intervals
}

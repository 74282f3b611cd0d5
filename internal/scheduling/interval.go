// Package scheduling содержит чистую логику расписания: генерацию слотов,
// проверку пересечений интервалов и назначение мастера. Функции пакета не
// имеют побочных эффектов и детерминированы для воспроизводимых тестов.
package scheduling

import (
	"github.com/d1sq/BMS-BookingEngine/pkg/types"
)

// Interval is a half-open [Start, End) time interval within one day.
type Interval struct {
	Start types.TimeString
	End   types.TimeString
}

// NewInterval builds an interval from a start time and a duration.
func NewInterval(start types.TimeString, durationMinutes int) (Interval, error) {
	end, err := start.AddMinutes(durationMinutes)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether two half-open intervals conflict.
// Интервалы пересекаются, только если:
// - начало одного СТРОГО раньше конца другого И
// - конец одного СТРОГО позже начала другого
// Граничные случаи (конец одного равен началу другого) пересечением не считаются.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.IsBefore(other.End) && i.End.IsAfter(other.Start)
}

// Contains reports whether the interval fully covers other.
func (i Interval) Contains(other Interval) bool {
	return !other.Start.IsBefore(i.Start) && !i.End.IsBefore(other.End)
}

// BookedInterval is an occupied interval extracted from an existing
// non-cancelled booking, optionally tagged with the assigned staff member.
type BookedInterval struct {
	Interval
	StaffID *int64
}

// HasConflict reports whether the candidate interval overlaps any of the
// existing intervals. Cancelled and expired reservations must be filtered
// out by the caller before this check.
func HasConflict(candidate Interval, existing []BookedInterval) bool {
	for _, e := range existing {
		if candidate.Overlaps(e.Interval) {
			return true
		}
	}
	return false
}

// CountOverlapping returns the number of existing intervals overlapping the
// candidate.
func CountOverlapping(candidate Interval, existing []BookedInterval) int {
	count := 0
	for _, e := range existing {
		if candidate.Overlaps(e.Interval) {
			count++
		}
	}
	return count
}

// CountAtSlot returns the number of existing intervals that start exactly
// at the given slot start. Режим capacity считает занятость по точному
// совпадению начала слота, а не по пересечению интервалов - поведение
// walk-in расписания, намеренно отличающееся от staff-режима.
func CountAtSlot(slotStart types.TimeString, existing []BookedInterval) int {
	count := 0
	for _, e := range existing {
		if e.Start == slotStart {
			count++
		}
	}
	return count
}

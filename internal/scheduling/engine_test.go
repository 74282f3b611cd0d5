package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d1sq/BMS-BookingEngine/internal/domain"
	"github.com/d1sq/BMS-BookingEngine/pkg/types"
)

func TestGenerateSlotStarts(t *testing.T) {
	t.Run("even tiling", func(t *testing.T) {
		starts, err := GenerateSlotStarts("09:00", "11:00", 30)
		require.NoError(t, err)
		assert.Equal(t, []types.TimeString{"09:00", "09:30", "10:00", "10:30"}, starts)
	})

	t.Run("partial trailing slot is dropped", func(t *testing.T) {
		starts, err := GenerateSlotStarts("09:00", "10:45", 30)
		require.NoError(t, err)
		assert.Equal(t, []types.TimeString{"09:00", "09:30", "10:00"}, starts)
	})

	t.Run("day ending at midnight", func(t *testing.T) {
		starts, err := GenerateSlotStarts("22:00", "24:00", 60)
		require.NoError(t, err)
		assert.Equal(t, []types.TimeString{"22:00", "23:00"}, starts)
	})

	t.Run("open equals close", func(t *testing.T) {
		starts, err := GenerateSlotStarts("09:00", "09:00", 30)
		require.NoError(t, err)
		assert.Empty(t, starts)
	})

	t.Run("open after close", func(t *testing.T) {
		starts, err := GenerateSlotStarts("18:00", "09:00", 30)
		require.NoError(t, err)
		assert.Empty(t, starts)
	})

	t.Run("non-positive duration", func(t *testing.T) {
		_, err := GenerateSlotStarts("09:00", "18:00", 0)
		assert.ErrorIs(t, err, ErrInvalidSlotDuration)
	})
}

func TestComputeSlots(t *testing.T) {
	existing := []BookedInterval{
		{Interval: mustInterval(t, "09:00", 30)},
		{Interval: mustInterval(t, "09:00", 30)},
		{Interval: mustInterval(t, "09:30", 30)},
	}

	slots, err := ComputeSlots("09:00", "10:30", 30, existing, 2)
	require.NoError(t, err)
	require.Len(t, slots, 3)

	assert.Equal(t, types.TimeString("09:00"), slots[0].StartTime)
	assert.Equal(t, 0, slots[0].AvailableSpots)
	assert.True(t, slots[0].IsFull())

	assert.Equal(t, 1, slots[1].AvailableSpots)
	assert.Equal(t, 2, slots[2].AvailableSpots)
	assert.Equal(t, 2, slots[2].TotalSpots)
}

func TestComputeSlots_OverbookedClampsToZero(t *testing.T) {
	existing := []BookedInterval{
		{Interval: mustInterval(t, "09:00", 30)},
		{Interval: mustInterval(t, "09:00", 30)},
		{Interval: mustInterval(t, "09:00", 30)},
	}

	slots, err := ComputeSlots("09:00", "09:30", 30, existing, 2)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, 0, slots[0].AvailableSpots)
}

func staffCandidate(id int64, priority int) domain.StaffCandidate {
	return domain.StaffCandidate{
		Staff:      domain.Staff{ID: id, Name: "Master", Active: true},
		Assignment: domain.StaffAssignment{StaffID: id, Priority: priority},
	}
}

func TestComputeStaffSlots(t *testing.T) {
	first := staffCandidate(1, 1)
	second := staffCandidate(2, 2)

	firstID := int64(1)
	existing := []BookedInterval{
		{Interval: mustInterval(t, "09:00", 60), StaffID: &firstID},
	}

	slots, err := ComputeStaffSlots("09:00", "11:00", 60, 60, []domain.StaffCandidate{first, second}, existing)
	require.NoError(t, err)
	require.Len(t, slots, 2)

	// Первый мастер занят в 09:00, свободен только второй
	assert.Equal(t, 1, slots[0].AvailableSpots)
	assert.Equal(t, 2, slots[0].TotalSpots)

	assert.Equal(t, 2, slots[1].AvailableSpots)
}

func TestComputeStaffSlots_DurationOverride(t *testing.T) {
	override := 120
	candidate := domain.StaffCandidate{
		Staff:      domain.Staff{ID: 1, Active: true},
		Assignment: domain.StaffAssignment{StaffID: 1, DurationOverrideMinutes: &override},
	}

	firstID := int64(1)
	existing := []BookedInterval{
		{Interval: mustInterval(t, "10:00", 60), StaffID: &firstID},
	}

	slots, err := ComputeStaffSlots("09:00", "12:00", 60, 60, []domain.StaffCandidate{candidate}, existing)
	require.NoError(t, err)
	require.Len(t, slots, 3)

	// Переопределенная длительность 120 минут: слот 09:00 зацепляет бронь 10:00
	assert.Equal(t, 0, slots[0].AvailableSpots)
	assert.Equal(t, 0, slots[1].AvailableSpots)
	// 11:00-13:00 начинается ровно на конце брони и не конфликтует
	assert.Equal(t, 1, slots[2].AvailableSpots)
}

package domain

import "time"

// Staff represents a staff member of a business
type Staff struct {
	ID         int64
	BusinessID int64
	Name       string
	Active     bool
	// CustomHours true, если у мастера индивидуальный график
	// (сам график управляется админ-флоу вне движка)
	CustomHours bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StaffAssignment links a staff member to a service they can perform
type StaffAssignment struct {
	StaffID   int64
	ServiceID int64
	// Priority определяет порядок перебора при назначении (меньше = раньше)
	Priority int
	// DurationOverrideMinutes переопределяет длительность услуги для этого мастера
	DurationOverrideMinutes *int

	CreatedAt time.Time
}

// StaffCandidate is a staff member eligible for an assignment, joined with
// the assignment row. Candidates are enumerated in deterministic order:
// assignment priority, then staff id.
type StaffCandidate struct {
	Staff      Staff
	Assignment StaffAssignment
}

// EffectiveDuration returns the service duration for this candidate,
// honouring the per-staff override.
func (c *StaffCandidate) EffectiveDuration(serviceDuration int) int {
	if c.Assignment.DurationOverrideMinutes != nil && *c.Assignment.DurationOverrideMinutes > 0 {
		return *c.Assignment.DurationOverrideMinutes
	}
	return serviceDuration
}

// DefaultOwnerStaffName имя автоматически создаваемого мастера.
// Бизнес без единой записи staff получает её при первом чтении.
const DefaultOwnerStaffName = "Owner"

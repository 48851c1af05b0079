package timetabler

import (
	"github.com/samber/lo"

	"github.com/jakechorley/exam-timetabler/pkg/core/model"
)

// GroupKeyFunc returns the key the spread rule groups courses by.
// Courses with an empty key are never grouped.
type GroupKeyFunc func(course model.Course) string

// DepartmentKey groups courses by owning department
func DepartmentKey(course model.Course) string {
	return course.DepartmentID
}

// NoGroupKey disables spread grouping
func NoGroupKey(model.Course) string {
	return ""
}

// Snapshot is the immutable input of one run. The engine never mutates it.
type Snapshot struct {
	Courses     []model.Course
	Rooms       []model.Room
	Constraints []model.Constraint
	Horizon     model.Horizon

	// GroupKey is used by the spread rule (defaults to DepartmentKey)
	GroupKey GroupKeyFunc
}

func (s *Snapshot) groupKey() GroupKeyFunc {
	if s.GroupKey == nil {
		return DepartmentKey
	}
	return s.GroupKey
}

func (s *Snapshot) geneSpace() GeneSpace {
	return GeneSpace{
		Days:  len(s.Horizon.Days),
		Slots: len(s.Horizon.TimeSlots),
		Rooms: len(s.Rooms),
	}
}

// validate rejects snapshots from which no assignment can be built
func (s *Snapshot) validate() error {
	if len(s.Courses) == 0 {
		return nil
	}
	if len(s.Rooms) == 0 {
		return invalidInput("rooms", "at least one room is required to schedule %d courses", len(s.Courses))
	}
	if len(s.Horizon.Days) == 0 {
		return invalidInput("horizon", "no exam days available")
	}
	if len(s.Horizon.TimeSlots) == 0 {
		return invalidInput("horizon", "no time slots available")
	}

	if duplicates := lo.FindDuplicates(lo.Map(s.Courses, func(c model.Course, _ int) string { return c.ID })); len(duplicates) > 0 {
		return invalidInput("courses", "duplicate course IDs %v", duplicates)
	}
	if duplicates := lo.FindDuplicates(lo.Map(s.Rooms, func(r model.Room, _ int) string { return r.ID })); len(duplicates) > 0 {
		return invalidInput("rooms", "duplicate room IDs %v", duplicates)
	}

	return nil
}

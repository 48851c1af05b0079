package db

import "github.com/jakechorley/exam-timetabler/pkg/core/model"

// DefaultDataset returns the sample departments, courses, rooms and constraints the
// scheduler starts with when no dataset is configured
func DefaultDataset() *Dataset {
	return &Dataset{
		Departments: []model.Department{
			{ID: "DEPT_CS", Name: "Computer Science"},
			{ID: "DEPT_MATH", Name: "Mathematics"},
			{ID: "DEPT_PHY", Name: "Physics"},
			{ID: "DEPT_HUM", Name: "Humanities"},
		},
		Courses: []model.Course{
			{ID: "CS101", Name: "Intro to CS", DepartmentID: "DEPT_CS", Students: 150, Units: 3},
			{ID: "MA201", Name: "Calculus II", DepartmentID: "DEPT_MATH", Students: 80, Units: 4},
			{ID: "PHY301", Name: "Quantum Physics", DepartmentID: "DEPT_PHY", Students: 50, Units: 3},
			{ID: "ENG102", Name: "Literature", DepartmentID: "DEPT_HUM", Students: 120, Units: 3},
			{ID: "HIS210", Name: "World History", DepartmentID: "DEPT_HUM", Students: 90, Units: 2},
		},
		Rooms: []model.Room{
			{ID: "R101", Capacity: 100},
			{ID: "R102", Capacity: 160},
			{ID: "R205", Capacity: 60},
			{ID: "AUD", Capacity: 200},
		},
		Constraints: []model.Constraint{
			{ID: "c1", Description: "No student should have two exams at the same time.", Kind: model.KindHard, Enabled: true, Rule: model.RuleSameTime},
			{ID: "c2", Description: "Exam capacity must not exceed room capacity.", Kind: model.KindHard, Enabled: true, Rule: model.RuleCapacity},
			{ID: "c3", Description: "A student should not have more than two exams in a row.", Kind: model.KindSoft, Enabled: true, Rule: model.RuleConsecutive},
			{ID: "c4", Description: "Spread out exams for the same year as much as possible.", Kind: model.KindSoft, Enabled: true, Rule: model.RuleSpread},
		},
	}
}

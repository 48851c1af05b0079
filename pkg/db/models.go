package db

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/jakechorley/exam-timetabler/pkg/core/model"
)

// Dataset is everything a timetable run is scheduled from
type Dataset struct {
	Departments []model.Department `json:"departments" yaml:"departments" validate:"dive"`
	Courses     []model.Course     `json:"courses" yaml:"courses" validate:"dive"`
	Rooms       []model.Room       `json:"rooms" yaml:"rooms" validate:"dive"`
	Constraints []model.Constraint `json:"constraints" yaml:"constraints" validate:"dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate checks every row and rejects duplicate IDs within each table
func (d *Dataset) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("dataset validation failed: %w", err)
	}

	tables := map[string][]string{
		"departments": lo.Map(d.Departments, func(x model.Department, _ int) string { return x.ID }),
		"courses":     lo.Map(d.Courses, func(x model.Course, _ int) string { return x.ID }),
		"rooms":       lo.Map(d.Rooms, func(x model.Room, _ int) string { return x.ID }),
		"constraints": lo.Map(d.Constraints, func(x model.Constraint, _ int) string { return x.ID }),
	}
	for _, table := range []string{"departments", "courses", "rooms", "constraints"} {
		if duplicates := lo.FindDuplicates(tables[table]); len(duplicates) > 0 {
			return fmt.Errorf("dataset validation failed: duplicate %s IDs %v", table, duplicates)
		}
	}

	return nil
}

// LoadDataset reads every table of a store
func LoadDataset(ctx context.Context, store DatasetStore) (*Dataset, error) {
	departments, err := store.GetDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get departments: %w", err)
	}

	courses, err := store.GetCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get courses: %w", err)
	}

	rooms, err := store.GetRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get rooms: %w", err)
	}

	constraints, err := store.GetConstraints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get constraints: %w", err)
	}

	return &Dataset{
		Departments: departments,
		Courses:     courses,
		Rooms:       rooms,
		Constraints: constraints,
	}, nil
}

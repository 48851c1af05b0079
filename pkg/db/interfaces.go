package db

import (
	"context"

	"github.com/jakechorley/exam-timetabler/pkg/core/model"
)

// DatasetStore defines the read operations the timetable services need.
// Both the file-backed db.FileStore and postgres.DB implement this interface.
type DatasetStore interface {
	GetDepartments(ctx context.Context) ([]model.Department, error)
	GetCourses(ctx context.Context) ([]model.Course, error)
	GetRooms(ctx context.Context) ([]model.Room, error)
	GetConstraints(ctx context.Context) ([]model.Constraint, error)
}

// DatasetWriter replaces the stored dataset in one step
type DatasetWriter interface {
	ReplaceDataset(ctx context.Context, dataset *Dataset) error
}

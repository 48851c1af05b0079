package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/exam-timetabler/pkg/core/model"
	"github.com/jakechorley/exam-timetabler/pkg/core/timetabler"
	"github.com/jakechorley/exam-timetabler/pkg/db"
)

// GetDepartments retrieves all department records
func (d *DB) GetDepartments(ctx context.Context) ([]model.Department, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name
		FROM department
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query departments: %w", err)
	}
	defer rows.Close()

	var departments []model.Department
	for rows.Next() {
		var dep model.Department
		if err := rows.Scan(&dep.ID, &dep.Name); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, dep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating departments: %w", err)
	}

	return departments, nil
}

// GetCourses retrieves all course records in their stored order
func (d *DB) GetCourses(ctx context.Context) ([]model.Course, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, department_id, students, units
		FROM course
		ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var c model.Course
		var departmentID *string
		if err := rows.Scan(&c.ID, &c.Name, &departmentID, &c.Students, &c.Units); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		if departmentID != nil {
			c.DepartmentID = *departmentID
		}
		courses = append(courses, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating courses: %w", err)
	}

	return courses, nil
}

// GetRooms retrieves all room records in their stored order
func (d *DB) GetRooms(ctx context.Context) ([]model.Room, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, capacity
		FROM room
		ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		var r model.Room
		if err := rows.Scan(&r.ID, &r.Capacity); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rooms: %w", err)
	}

	return rooms, nil
}

// GetConstraints retrieves all constraint records in their stored order
func (d *DB) GetConstraints(ctx context.Context) ([]model.Constraint, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, description, kind, enabled, rule
		FROM exam_constraint
		ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query constraints: %w", err)
	}
	defer rows.Close()

	var constraints []model.Constraint
	for rows.Next() {
		var c model.Constraint
		var rule *string
		if err := rows.Scan(&c.ID, &c.Description, &c.Kind, &c.Enabled, &rule); err != nil {
			return nil, fmt.Errorf("failed to scan constraint: %w", err)
		}
		if rule != nil {
			c.Rule = model.Rule(*rule)
		}
		constraints = append(constraints, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating constraints: %w", err)
	}

	return constraints, nil
}

// ReplaceDataset deletes every stored row and inserts the dataset in a single transaction
func (d *DB) ReplaceDataset(ctx context.Context, dataset *db.Dataset) error {
	if err := dataset.Validate(); err != nil {
		return err
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE department, course, room, exam_constraint`); err != nil {
		return fmt.Errorf("failed to clear dataset: %w", err)
	}

	batch := &pgx.Batch{}
	for _, dep := range dataset.Departments {
		batch.Queue(`INSERT INTO department (id, name) VALUES ($1, $2)`, dep.ID, dep.Name)
	}
	for i, c := range dataset.Courses {
		var departmentID *string
		if c.DepartmentID != "" {
			departmentID = &c.DepartmentID
		}
		batch.Queue(`
			INSERT INTO course (id, name, department_id, students, units, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, c.ID, c.Name, departmentID, c.Students, c.Units, i)
	}
	for i, r := range dataset.Rooms {
		batch.Queue(`INSERT INTO room (id, capacity, position) VALUES ($1, $2, $3)`, r.ID, r.Capacity, i)
	}
	for i, c := range dataset.Constraints {
		kind := c.Kind
		if !kind.IsValid() {
			kind = defaultKind(c)
		}
		var rule *string
		if c.Rule != "" {
			r := string(c.Rule)
			rule = &r
		}
		batch.Queue(`
			INSERT INTO exam_constraint (id, description, kind, enabled, rule, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, c.ID, c.Description, string(kind), c.Enabled, rule, i)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert dataset: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// defaultKind stores a constraint without a kind under the default of the rule it resolves to
func defaultKind(c model.Constraint) model.ConstraintKind {
	if rule, ok := timetabler.ResolveRule(c); ok {
		if criterion, ok := timetabler.NewCriterion(rule); ok {
			return criterion.DefaultKind()
		}
	}
	return model.KindSoft
}

var (
	_ db.DatasetStore  = (*DB)(nil)
	_ db.DatasetWriter = (*DB)(nil)
)

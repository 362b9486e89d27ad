package postgres

import (
	"context"
	"fmt"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/shared"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/student"
	"github.com/jackc/pgx/v5"
)

// StudentRepository implements student.Repository for PostgreSQL.
type StudentRepository struct {
	conn *Connection
}

var _ student.Repository = (*StudentRepository)(nil)

// Create creates a new student.
func (r *StudentRepository) Create(ctx context.Context, s *student.Student) error {
	q, err := r.conn.querier()
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, `INSERT INTO students (id, name, email) VALUES ($1, $2, $3)`, s.ID, s.Name, s.Email)
	if err != nil {
		if IsUniqueViolation(err) {
			return studentConflict(err)
		}
		return fmt.Errorf("failed to create student: %w", err)
	}

	return nil
}

// studentConflict tells the id and email constraints apart.
func studentConflict(err error) error {
	switch ConstraintName(err) {
	case "students_pkey":
		return student.ErrDuplicateID
	case "students_email_key":
		return student.ErrDuplicateEmail
	default:
		return shared.WrapError("student", "Create", shared.ErrAlreadyExists, "student already exists", err)
	}
}

// GetByID returns a student by id.
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*student.Student, error) {
	q, err := r.conn.querier()
	if err != nil {
		return nil, err
	}

	var s student.Student
	err = q.QueryRow(ctx, `SELECT id, name, email FROM students WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Email)
	if err != nil {
		if IsNoRows(err) {
			return nil, student.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student %d: %w", id, err)
	}
	return &s, nil
}

// List returns all students ordered by id.
func (r *StudentRepository) List(ctx context.Context) ([]*student.Student, error) {
	q, err := r.conn.querier()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `SELECT id, name, email FROM students ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*student.Student, error) {
		var s student.Student
		err := row.Scan(&s.ID, &s.Name, &s.Email)
		return &s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan students: %w", err)
	}
	return out, nil
}

// Delete removes a student. Test results are kept.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	q, err := r.conn.querier()
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete student %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return student.ErrStudentNotFound
	}
	return nil
}

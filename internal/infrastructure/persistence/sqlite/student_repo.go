package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/shared"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/student"
	"gorm.io/gorm"
)

// StudentRepository implements student.Repository.
type StudentRepository struct {
	db *gorm.DB
}

var _ student.Repository = (*StudentRepository)(nil)

// Create inserts a student. The id and email checks run in the same
// transaction as the insert so the reported conflict names the right field.
func (r *StudentRepository) Create(ctx context.Context, s *student.Student) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&studentModel{}).Where("id = ?", s.ID).Count(&n).Error; err != nil {
			return fmt.Errorf("check student id: %w", err)
		}
		if n > 0 {
			return student.ErrDuplicateID
		}

		if err := tx.Model(&studentModel{}).Where("email = ?", s.Email).Count(&n).Error; err != nil {
			return fmt.Errorf("check student email: %w", err)
		}
		if n > 0 {
			return student.ErrDuplicateEmail
		}

		m := studentModel{ID: s.ID, Name: s.Name, Email: s.Email}
		if err := tx.Create(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.WrapError("student", "Create", shared.ErrAlreadyExists, "student already exists", err)
			}
			return fmt.Errorf("insert student: %w", err)
		}
		return nil
	})
}

// GetByID returns the student or student.ErrStudentNotFound.
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*student.Student, error) {
	var m studentModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, student.ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get student %d: %w", id, err)
	}
	return m.toDomain(), nil
}

// List returns every student ordered by id.
func (r *StudentRepository) List(ctx context.Context) ([]*student.Student, error) {
	var rows []studentModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	out := make([]*student.Student, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}

// Delete removes the student row. Its test results stay.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&studentModel{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete student %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return student.ErrStudentNotFound
	}
	return nil
}

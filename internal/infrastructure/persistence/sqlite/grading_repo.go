package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/grading"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/shared"
	"gorm.io/gorm"
)

// TestRepository implements grading.TestRepository.
type TestRepository struct {
	db *gorm.DB
}

var _ grading.TestRepository = (*TestRepository)(nil)

// Create inserts a test.
func (r *TestRepository) Create(ctx context.Context, t *grading.Test) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&testModel{}).Where("id = ?", t.ID).Count(&n).Error; err != nil {
			return fmt.Errorf("check test id: %w", err)
		}
		if n > 0 {
			return grading.ErrDuplicateTest
		}

		m := testModel{ID: t.ID, Name: t.Name, MaxScore: t.MaxScore}
		err := tx.Create(&m).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return grading.ErrDuplicateTest
		}
		if err != nil {
			return fmt.Errorf("insert test: %w", err)
		}
		return nil
	})
}

// GetByID returns the test or grading.ErrTestNotFound.
func (r *TestRepository) GetByID(ctx context.Context, id int64) (*grading.Test, error) {
	var m testModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, grading.ErrTestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get test %d: %w", id, err)
	}
	return m.toDomain(), nil
}

// List returns every test ordered by id.
func (r *TestRepository) List(ctx context.Context) ([]*grading.Test, error) {
	var rows []testModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}

	out := make([]*grading.Test, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}

// ResultRepository implements grading.ResultRepository.
type ResultRepository struct {
	db *gorm.DB
}

var _ grading.ResultRepository = (*ResultRepository)(nil)

// Submit checks both references and inserts the result in one transaction.
func (r *ResultRepository) Submit(ctx context.Context, res *grading.Result) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRow(tx, &studentModel{}, res.StudentID, grading.ErrUnknownStudent); err != nil {
			return err
		}
		if err := requireRow(tx, &testModel{}, res.TestID, grading.ErrUnknownTest); err != nil {
			return err
		}

		m := resultModel{StudentID: res.StudentID, TestID: res.TestID, Score: res.Score}
		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("insert test result: %w", err)
		}
		res.ID = m.ID
		return nil
	})
}

func requireRow(tx *gorm.DB, model any, id int64, missing *shared.DomainError) error {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("check reference %d: %w", id, err)
	}
	if n == 0 {
		return missing
	}
	return nil
}

// ListByTest returns the results of a test in insertion order.
func (r *ResultRepository) ListByTest(ctx context.Context, testID int64) ([]grading.Result, error) {
	return r.list(ctx, "test_id = ?", testID)
}

// ListByStudent returns the results of a student in insertion order.
func (r *ResultRepository) ListByStudent(ctx context.Context, studentID int64) ([]grading.Result, error) {
	return r.list(ctx, "student_id = ?", studentID)
}

func (r *ResultRepository) list(ctx context.Context, cond string, id int64) ([]grading.Result, error) {
	var rows []resultModel
	if err := r.db.WithContext(ctx).Where(cond, id).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list test results: %w", err)
	}

	out := make([]grading.Result, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}

// ListScoredByTest joins the results of a test with their students. The
// inner join drops results whose student is gone.
func (r *ResultRepository) ListScoredByTest(ctx context.Context, testID int64) ([]grading.ScoredResult, error) {
	var rows []scoredRow
	err := r.db.WithContext(ctx).
		Table("test_results AS r").
		Select("r.id, r.student_id, r.test_id, r.score, s.name, s.email").
		Joins("JOIN students AS s ON s.id = r.student_id").
		Where("r.test_id = ?", testID).
		Order("r.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list scored results: %w", err)
	}

	out := make([]grading.ScoredResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

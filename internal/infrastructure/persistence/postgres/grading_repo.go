package postgres

import (
	"context"
	"fmt"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/grading"
	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEST REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// TestRepository implements grading.TestRepository for PostgreSQL.
type TestRepository struct {
	conn *Connection
}

var _ grading.TestRepository = (*TestRepository)(nil)

// Create creates a new test.
func (r *TestRepository) Create(ctx context.Context, t *grading.Test) error {
	q, err := r.conn.querier()
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, `INSERT INTO tests (id, name, max_score) VALUES ($1, $2, $3)`, t.ID, t.Name, t.MaxScore)
	if err != nil {
		if IsUniqueViolation(err) {
			return grading.ErrDuplicateTest
		}
		return fmt.Errorf("failed to create test: %w", err)
	}
	return nil
}

// GetByID returns a test by id.
func (r *TestRepository) GetByID(ctx context.Context, id int64) (*grading.Test, error) {
	q, err := r.conn.querier()
	if err != nil {
		return nil, err
	}

	var t grading.Test
	err = q.QueryRow(ctx, `SELECT id, name, max_score FROM tests WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.MaxScore)
	if err != nil {
		if IsNoRows(err) {
			return nil, grading.ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test %d: %w", id, err)
	}
	return &t, nil
}

// List returns all tests ordered by id.
func (r *TestRepository) List(ctx context.Context) ([]*grading.Test, error) {
	q, err := r.conn.querier()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `SELECT id, name, max_score FROM tests ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*grading.Test, error) {
		var t grading.Test
		err := row.Scan(&t.ID, &t.Name, &t.MaxScore)
		return &t, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan tests: %w", err)
	}
	return out, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// RESULT REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// ResultRepository implements grading.ResultRepository for PostgreSQL.
type ResultRepository struct {
	conn *Connection
}

var _ grading.ResultRepository = (*ResultRepository)(nil)

// Submit stores a result. The student row is key-share locked for the
// duration of the insert, so a concurrent delete waits for it.
func (r *ResultRepository) Submit(ctx context.Context, res *grading.Result) error {
	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		var id int64
		err := tx.QueryRow(ctx, `SELECT id FROM students WHERE id = $1 FOR KEY SHARE`, res.StudentID).Scan(&id)
		if IsNoRows(err) {
			return grading.ErrUnknownStudent
		}
		if err != nil {
			return fmt.Errorf("failed to check student %d: %w", res.StudentID, err)
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO test_results (student_id, test_id, score) VALUES ($1, $2, $3) RETURNING id`,
			res.StudentID, res.TestID, res.Score,
		).Scan(&res.ID)
		if err != nil {
			res.ID = 0
			if IsForeignKeyViolation(err) {
				return grading.ErrUnknownTest
			}
			return fmt.Errorf("failed to insert test result: %w", err)
		}
		return nil
	})
}

// ListByTest returns the results of a test in insertion order.
func (r *ResultRepository) ListByTest(ctx context.Context, testID int64) ([]grading.Result, error) {
	return r.list(ctx, `SELECT id, student_id, test_id, score FROM test_results WHERE test_id = $1 ORDER BY id`, testID)
}

// ListByStudent returns the results of a student in insertion order.
func (r *ResultRepository) ListByStudent(ctx context.Context, studentID int64) ([]grading.Result, error) {
	return r.list(ctx, `SELECT id, student_id, test_id, score FROM test_results WHERE student_id = $1 ORDER BY id`, studentID)
}

func (r *ResultRepository) list(ctx context.Context, query string, id int64) ([]grading.Result, error) {
	q, err := r.conn.querier()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list test results: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (grading.Result, error) {
		var res grading.Result
		err := row.Scan(&res.ID, &res.StudentID, &res.TestID, &res.Score)
		return res, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan test results: %w", err)
	}
	return out, nil
}

// ListScoredByTest joins the results of a test with their students.
// Results of deleted students drop out of the inner join.
func (r *ResultRepository) ListScoredByTest(ctx context.Context, testID int64) ([]grading.ScoredResult, error) {
	q, err := r.conn.querier()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `
		SELECT r.id, r.student_id, r.test_id, r.score, s.name, s.email
		FROM test_results r
		JOIN students s ON s.id = r.student_id
		WHERE r.test_id = $1
		ORDER BY r.id
	`, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scored results: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (grading.ScoredResult, error) {
		var sr grading.ScoredResult
		err := row.Scan(&sr.Result.ID, &sr.Result.StudentID, &sr.Result.TestID, &sr.Result.Score,
			&sr.Student.Name, &sr.Student.Email)
		sr.Student.ID = sr.Result.StudentID
		return sr, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan scored results: %w", err)
	}
	return out, nil
}

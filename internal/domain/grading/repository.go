package grading

import "context"

// TestRepository defines persistence operations for tests.
type TestRepository interface {
	// Create stores a new test. Returns ErrDuplicateTest if the id is taken.
	Create(ctx context.Context, t *Test) error

	// GetByID returns the test or ErrTestNotFound.
	GetByID(ctx context.Context, id int64) (*Test, error)

	// List returns every test in storage order (ascending id).
	List(ctx context.Context) ([]*Test, error)
}

// ResultRepository defines persistence operations for test results.
type ResultRepository interface {
	// Submit stores a result and sets r.ID. Returns ErrUnknownStudent or
	// ErrUnknownTest, with nothing persisted, when a reference is missing.
	Submit(ctx context.Context, r *Result) error

	// ListByTest returns the results of a test in insertion order.
	ListByTest(ctx context.Context, testID int64) ([]Result, error)

	// ListByStudent returns the results of a student in insertion order.
	ListByStudent(ctx context.Context, studentID int64) ([]Result, error)

	// ListScoredByTest returns the results of a test joined with their
	// students, in insertion order. Results whose student was deleted are
	// omitted.
	ListScoredByTest(ctx context.Context, testID int64) ([]ScoredResult, error)
}

// StatsCache caches aggregate outcomes per test. Implementations report a
// miss with ok == false.
type StatsCache interface {
	GetAverage(ctx context.Context, testID int64) (avg float64, ok bool, err error)
	SetAverage(ctx context.Context, testID int64, avg float64) error
	GetHighestScorer(ctx context.Context, testID int64) (s *ScoredResult, ok bool, err error)
	SetHighestScorer(ctx context.Context, testID int64, s ScoredResult) error

	// InvalidateTest drops every cached aggregate of one test.
	InvalidateTest(ctx context.Context, testID int64) error

	// InvalidateHighestScorers drops the cached highest scorer of every test.
	InvalidateHighestScorers(ctx context.Context) error
}

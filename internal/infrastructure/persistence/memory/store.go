// Package memory implements the gradebook repositories on in-process maps.
// It backs DATABASE_DRIVER=memory and the HTTP tests. Data is lost on exit.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/grading"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/student"
)

// Store holds every table behind one lock, so that reference checks on
// submission and a concurrent delete cannot interleave.
type Store struct {
	mu sync.RWMutex

	students map[int64]student.Student
	emails   map[string]int64
	tests    map[int64]grading.Test

	// results is kept in insertion order.
	results []grading.Result
	nextID  int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		students: make(map[int64]student.Student),
		emails:   make(map[string]int64),
		tests:    make(map[int64]grading.Test),
		nextID:   1,
	}
}

// Students returns the student repository view of the store.
func (s *Store) Students() *StudentRepository { return &StudentRepository{s: s} }

// Tests returns the test repository view of the store.
func (s *Store) Tests() *TestRepository { return &TestRepository{s: s} }

// Results returns the result repository view of the store.
func (s *Store) Results() *ResultRepository { return &ResultRepository{s: s} }

// Ping always succeeds. It lets the store serve as a health check target.
func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// Close is a no-op.
func (s *Store) Close() error { return nil }

// ══════════════════════════════════════════════════════════════════════════════
// STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

// StudentRepository implements student.Repository.
type StudentRepository struct {
	s *Store
}

var _ student.Repository = (*StudentRepository)(nil)

// Create stores a new student.
func (r *StudentRepository) Create(ctx context.Context, st *student.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.students[st.ID]; ok {
		return student.ErrDuplicateID
	}
	if _, ok := r.s.emails[st.Email]; ok {
		return student.ErrDuplicateEmail
	}

	r.s.students[st.ID] = *st
	r.s.emails[st.Email] = st.ID
	return nil
}

// GetByID returns the student with the given id.
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*student.Student, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st, ok := r.s.students[id]
	if !ok {
		return nil, student.ErrStudentNotFound
	}
	return &st, nil
}

// List returns every student ordered by id.
func (r *StudentRepository) List(ctx context.Context) ([]*student.Student, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*student.Student, 0, len(r.s.students))
	for _, st := range r.s.students {
		st := st
		out = append(out, &st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete removes the student and leaves its results in place.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st, ok := r.s.students[id]
	if !ok {
		return student.ErrStudentNotFound
	}
	delete(r.s.emails, st.Email)
	delete(r.s.students, id)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TESTS
// ══════════════════════════════════════════════════════════════════════════════

// TestRepository implements grading.TestRepository.
type TestRepository struct {
	s *Store
}

var _ grading.TestRepository = (*TestRepository)(nil)

// Create stores a new test.
func (r *TestRepository) Create(ctx context.Context, t *grading.Test) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tests[t.ID]; ok {
		return grading.ErrDuplicateTest
	}
	r.s.tests[t.ID] = *t
	return nil
}

// GetByID returns the test with the given id.
func (r *TestRepository) GetByID(ctx context.Context, id int64) (*grading.Test, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tests[id]
	if !ok {
		return nil, grading.ErrTestNotFound
	}
	return &t, nil
}

// List returns every test ordered by id.
func (r *TestRepository) List(ctx context.Context) ([]*grading.Test, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*grading.Test, 0, len(r.s.tests))
	for _, t := range r.s.tests {
		t := t
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// RESULTS
// ══════════════════════════════════════════════════════════════════════════════

// ResultRepository implements grading.ResultRepository.
type ResultRepository struct {
	s *Store
}

var _ grading.ResultRepository = (*ResultRepository)(nil)

// Submit checks both references and appends the result under one lock.
func (r *ResultRepository) Submit(ctx context.Context, res *grading.Result) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.students[res.StudentID]; !ok {
		return grading.ErrUnknownStudent
	}
	if _, ok := r.s.tests[res.TestID]; !ok {
		return grading.ErrUnknownTest
	}

	res.ID = r.s.nextID
	r.s.nextID++
	r.s.results = append(r.s.results, *res)
	return nil
}

// ListByTest returns the results of a test in insertion order.
func (r *ResultRepository) ListByTest(ctx context.Context, testID int64) ([]grading.Result, error) {
	return r.filter(func(res grading.Result) bool { return res.TestID == testID }), nil
}

// ListByStudent returns the results of a student in insertion order.
func (r *ResultRepository) ListByStudent(ctx context.Context, studentID int64) ([]grading.Result, error) {
	return r.filter(func(res grading.Result) bool { return res.StudentID == studentID }), nil
}

// ListScoredByTest joins the results of a test with their students.
func (r *ResultRepository) ListScoredByTest(ctx context.Context, testID int64) ([]grading.ScoredResult, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []grading.ScoredResult{}
	for _, res := range r.s.results {
		if res.TestID != testID {
			continue
		}
		st, ok := r.s.students[res.StudentID]
		if !ok {
			continue
		}
		out = append(out, grading.ScoredResult{Result: res, Student: st})
	}
	return out, nil
}

func (r *ResultRepository) filter(keep func(grading.Result) bool) []grading.Result {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []grading.Result{}
	for _, res := range r.s.results {
		if keep(res) {
			out = append(out, res)
		}
	}
	return out
}

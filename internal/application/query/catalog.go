// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/grading"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/student"
)

// StudentDTO is the public shape of a student.
type StudentDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func newStudentDTO(s *student.Student) StudentDTO {
	return StudentDTO{ID: s.ID, Name: s.Name, Email: s.Email}
}

// TestDTO is the public shape of a test.
type TestDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	MaxScore int    `json:"max_score"`
}

func newTestDTO(t *grading.Test) TestDTO {
	return TestDTO{ID: t.ID, Name: t.Name, MaxScore: t.MaxScore}
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

// StudentsHandler answers student lookups.
type StudentsHandler struct {
	students student.Repository
}

// NewStudentsHandler creates a new StudentsHandler.
func NewStudentsHandler(students student.Repository) *StudentsHandler {
	return &StudentsHandler{students: students}
}

// Get returns one student or student.ErrStudentNotFound.
func (h *StudentsHandler) Get(ctx context.Context, id int64) (*StudentDTO, error) {
	s, err := h.students.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get_student: %w", err)
	}
	dto := newStudentDTO(s)
	return &dto, nil
}

// List returns every student ordered by id. The slice is never nil.
func (h *StudentsHandler) List(ctx context.Context) ([]StudentDTO, error) {
	list, err := h.students.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list_students: %w", err)
	}

	out := make([]StudentDTO, 0, len(list))
	for _, s := range list {
		out = append(out, newStudentDTO(s))
	}
	return out, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TESTS
// ══════════════════════════════════════════════════════════════════════════════

// TestsHandler answers test lookups.
type TestsHandler struct {
	tests grading.TestRepository
}

// NewTestsHandler creates a new TestsHandler.
func NewTestsHandler(tests grading.TestRepository) *TestsHandler {
	return &TestsHandler{tests: tests}
}

// Get returns one test or grading.ErrTestNotFound.
func (h *TestsHandler) Get(ctx context.Context, id int64) (*TestDTO, error) {
	t, err := h.tests.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get_test: %w", err)
	}
	dto := newTestDTO(t)
	return &dto, nil
}

// List returns every test ordered by id. The slice is never nil.
func (h *TestsHandler) List(ctx context.Context) ([]TestDTO, error) {
	list, err := h.tests.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list_tests: %w", err)
	}

	out := make([]TestDTO, 0, len(list))
	for _, t := range list {
		out = append(out, newTestDTO(t))
	}
	return out, nil
}

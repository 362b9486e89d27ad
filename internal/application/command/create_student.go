// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/grading"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/student"
	"github.com/SamijonovSardor/Programming-topshiriq/pkg/logger"
)

// Confirmation messages returned by successful commands.
const (
	MsgStudentCreated = "Student created successfully"
	MsgStudentDeleted = "Student deleted successfully"
	MsgTestCreated    = "Test created successfully"
	MsgResultCreated  = "Test result created successfully"
)

// Result is the confirmation of a successful command.
type Result struct {
	Message string
}

// ══════════════════════════════════════════════════════════════════════════════
// CREATE STUDENT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// CreateStudentCommand contains the data of a new student.
type CreateStudentCommand struct {
	ID    int64
	Name  string
	Email string
}

// CreateStudentHandler handles the CreateStudentCommand.
type CreateStudentHandler struct {
	students student.Repository
	cache    grading.StatsCache // optional
}

// NewCreateStudentHandler creates a new CreateStudentHandler. cache may be nil.
func NewCreateStudentHandler(students student.Repository, cache grading.StatsCache) *CreateStudentHandler {
	return &CreateStudentHandler{students: students, cache: cache}
}

// Handle validates and stores the student.
// Returns ErrDuplicateID or ErrDuplicateEmail when either is taken.
//
// Results outlive their student, so reusing a deleted id brings its old
// results back into highest-scorer ranking. Every cached scorer is dropped.
func (h *CreateStudentHandler) Handle(ctx context.Context, cmd CreateStudentCommand) (*Result, error) {
	s, err := student.New(cmd.ID, cmd.Name, cmd.Email)
	if err != nil {
		return nil, err
	}

	if err := h.students.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("create_student: %w", err)
	}

	if h.cache != nil {
		if err := h.cache.InvalidateHighestScorers(ctx); err != nil {
			logger.FromContext(ctx).Warn("stats cache invalidation failed",
				logger.Operation("create_student"),
				logger.StudentID(cmd.ID),
				logger.Err(err),
			)
		}
	}

	return &Result{Message: MsgStudentCreated}, nil
}

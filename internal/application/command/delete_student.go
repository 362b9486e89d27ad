package command

import (
	"context"
	"fmt"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/grading"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/student"
	"github.com/SamijonovSardor/Programming-topshiriq/pkg/logger"
)

// DeleteStudentCommand names the student to remove.
type DeleteStudentCommand struct {
	ID int64
}

// DeleteStudentHandler handles the DeleteStudentCommand.
type DeleteStudentHandler struct {
	students student.Repository
	cache    grading.StatsCache // optional
}

// NewDeleteStudentHandler creates a new DeleteStudentHandler. cache may be nil.
func NewDeleteStudentHandler(students student.Repository, cache grading.StatsCache) *DeleteStudentHandler {
	return &DeleteStudentHandler{students: students, cache: cache}
}

// Handle deletes the student. The student's results stay and keep counting
// toward averages, but a deleted student can no longer be a highest scorer,
// so every cached scorer is dropped.
func (h *DeleteStudentHandler) Handle(ctx context.Context, cmd DeleteStudentCommand) (*Result, error) {
	if err := h.students.Delete(ctx, cmd.ID); err != nil {
		return nil, fmt.Errorf("delete_student: %w", err)
	}

	if h.cache != nil {
		if err := h.cache.InvalidateHighestScorers(ctx); err != nil {
			logger.FromContext(ctx).Warn("stats cache invalidation failed",
				logger.Operation("delete_student"),
				logger.StudentID(cmd.ID),
				logger.Err(err),
			)
		}
	}

	return &Result{Message: MsgStudentDeleted}, nil
}

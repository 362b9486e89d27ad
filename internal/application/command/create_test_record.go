package command

import (
	"context"
	"fmt"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/grading"
)

// CreateTestCommand contains the data of a new test.
type CreateTestCommand struct {
	ID       int64
	Name     string
	MaxScore int
}

// CreateTestHandler handles the CreateTestCommand.
type CreateTestHandler struct {
	tests grading.TestRepository
}

// NewCreateTestHandler creates a new CreateTestHandler.
func NewCreateTestHandler(tests grading.TestRepository) *CreateTestHandler {
	return &CreateTestHandler{tests: tests}
}

// Handle validates and stores the test.
func (h *CreateTestHandler) Handle(ctx context.Context, cmd CreateTestCommand) (*Result, error) {
	t, err := grading.NewTest(cmd.ID, cmd.Name, cmd.MaxScore)
	if err != nil {
		return nil, err
	}

	if err := h.tests.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create_test: %w", err)
	}

	return &Result{Message: MsgTestCreated}, nil
}

package query

import (
	"context"
	"fmt"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/grading"
)

// ResultDTO is the public shape of a test result. The system id is not
// exposed.
type ResultDTO struct {
	StudentID int64 `json:"student_id"`
	TestID    int64 `json:"test_id"`
	Score     int   `json:"score"`
}

func newResultDTOs(results []grading.Result) []ResultDTO {
	out := make([]ResultDTO, 0, len(results))
	for _, r := range results {
		out = append(out, ResultDTO{StudentID: r.StudentID, TestID: r.TestID, Score: r.Score})
	}
	return out
}

// ResultsHandler lists test results. Unknown ids give an empty list.
type ResultsHandler struct {
	results grading.ResultRepository
}

// NewResultsHandler creates a new ResultsHandler.
func NewResultsHandler(results grading.ResultRepository) *ResultsHandler {
	return &ResultsHandler{results: results}
}

// ByTest returns the results of a test in insertion order, including those
// of deleted students.
func (h *ResultsHandler) ByTest(ctx context.Context, testID int64) ([]ResultDTO, error) {
	results, err := h.results.ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("list_results_by_test: %w", err)
	}
	return newResultDTOs(results), nil
}

// ByStudent returns the results of a student in insertion order.
func (h *ResultsHandler) ByStudent(ctx context.Context, studentID int64) ([]ResultDTO, error) {
	results, err := h.results.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list_results_by_student: %w", err)
	}
	return newResultDTOs(results), nil
}

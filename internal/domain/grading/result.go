package grading

import (
	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/shared"
	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/student"
)

// Result is one student's attempt at one test. The score is not bounded by
// the test's MaxScore, and a student may hold several results for one test.
type Result struct {
	// ID is assigned by the store on submission.
	ID        int64
	StudentID int64
	TestID    int64
	Score     int
}

// ScoredResult is a result joined with the student that holds it.
type ScoredResult struct {
	Result  Result
	Student student.Student
}

// Domain errors.
var (
	ErrUnknownStudent = shared.ForeignKey("result", "Submit", "student does not exist")
	ErrUnknownTest    = shared.ForeignKey("result", "Submit", "test does not exist")
	ErrNoResults      = shared.NoData("result", "Average", "no results for this test")
	ErrNoScorer       = shared.NoData("result", "HighestScorer", "no scorer found for this test")
)

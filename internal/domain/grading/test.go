// Package grading contains tests, test results and the aggregates computed
// over them.
package grading

import (
	"fmt"
	"unicode/utf8"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/shared"
)

// Test name length bounds, counted in characters.
const (
	TestNameMinLength = 2
	TestNameMaxLength = 100
)

// Test is an assessment students can submit results for.
type Test struct {
	ID       int64
	Name     string
	MaxScore int
}

// Domain errors.
var (
	ErrTestNotFound  = shared.NotFound("test", "Get", "test not found")
	ErrDuplicateTest = shared.Conflict("test", "Create", "test with this id already exists")
)

// NewTest validates the fields and returns a Test.
func NewTest(id int64, name string, maxScore int) (*Test, error) {
	t := &Test{ID: id, Name: name, MaxScore: maxScore}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the field constraints of a test.
func (t *Test) Validate() error {
	n := utf8.RuneCountInString(t.Name)
	if n < TestNameMinLength || n > TestNameMaxLength {
		return shared.Validation("test", "Validate",
			fmt.Sprintf("name must be %d-%d characters", TestNameMinLength, TestNameMaxLength))
	}
	return nil
}

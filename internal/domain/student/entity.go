package student

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/shared"
)

// Name length bounds, counted in characters.
const (
	NameMinLength = 2
	NameMaxLength = 50
)

// Student is a person who takes tests.
type Student struct {
	ID    int64
	Name  string
	Email string
}

// Domain errors.
var (
	ErrStudentNotFound = shared.NotFound("student", "Get", "student not found")
	ErrDuplicateID     = shared.Conflict("student", "Create", "student with this id already exists")
	ErrDuplicateEmail  = shared.Conflict("student", "Create", "student with this email already exists")
)

// New validates the fields and returns a Student.
func New(id int64, name, email string) (*Student, error) {
	s := &Student{ID: id, Name: name, Email: email}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the field constraints of a student.
func (s *Student) Validate() error {
	n := utf8.RuneCountInString(s.Name)
	if n < NameMinLength || n > NameMaxLength {
		return shared.Validation("student", "Validate",
			fmt.Sprintf("name must be %d-%d characters", NameMinLength, NameMaxLength))
	}
	if strings.TrimSpace(s.Email) == "" {
		return shared.Validation("student", "Validate", "email is required")
	}
	return nil
}

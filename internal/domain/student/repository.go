package student

import "context"

// Repository defines persistence operations for students.
type Repository interface {
	// Create stores a new student.
	// Returns ErrDuplicateID or ErrDuplicateEmail on a uniqueness violation.
	Create(ctx context.Context, s *Student) error

	// GetByID returns the student with the given id.
	// Returns ErrStudentNotFound if there is none.
	GetByID(ctx context.Context, id int64) (*Student, error)

	// List returns every student in storage order (ascending id).
	List(ctx context.Context) ([]*Student, error)

	// Delete removes the student. Test results are not touched.
	// Returns ErrStudentNotFound if there is none.
	Delete(ctx context.Context, id int64) error
}

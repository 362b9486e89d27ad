// Package student contains the Student entity and its repository contract.
//
// A Student is created once with an externally assigned id, never updated in
// place, and may be deleted. Deleting a student leaves its test results
// untouched, so result rows may outlive the student they reference.
//
// # Creating a student
//
//	s, err := student.New(42, "Ada Lovelace", "ada@example.com")
//	if err != nil {
//	    // err matches shared.ErrValidation
//	}
//	err = repo.Create(ctx, s)
//	// ErrDuplicateID / ErrDuplicateEmail match shared.ErrAlreadyExists
//
// # Errors
//
// Every error returned by a Repository implementation is one of the sentinel
// values below (matched with errors.Is) or a wrapped infrastructure error.
package student

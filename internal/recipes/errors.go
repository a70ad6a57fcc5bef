package recipes

import "fmt"

// NotFoundError reports that a recipe or ingredient referenced by id does not
// exist in the caller's bakery. It is surfaced unchanged and is not worth
// retrying.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// BadRequestError reports a structural validation failure: a malformed
// ingredient entry, a reference to an absent ingredient, or a delete blocked
// by active products. Retrying with the same input fails the same way.
type BadRequestError struct {
	Reason string
}

func (e *BadRequestError) Error() string {
	return e.Reason
}

func notFound(resource string, id uint) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func badRequestf(format string, args ...any) *BadRequestError {
	return &BadRequestError{Reason: fmt.Sprintf(format, args...)}
}

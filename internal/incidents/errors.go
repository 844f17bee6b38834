package incidents

import "errors"

// Failure taxonomy of the lifecycle engine. Every operation returns one of
// these (possibly wrapped with context) instead of an unstructured fault.
var (
	// ErrIncidentNotFound is returned when an incident id cannot be resolved.
	ErrIncidentNotFound = errors.New("incident not found")

	// ErrAssigneeNotFound is returned when the target assignee id cannot be resolved.
	ErrAssigneeNotFound = errors.New("assignee not found")

	// ErrReporterNotFound is returned when the reporter id of a by-reporter
	// query cannot be resolved.
	ErrReporterNotFound = errors.New("reporter not found")

	// ErrCategoryNotFound is returned when the referenced category id cannot
	// be resolved.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrForbidden is returned when an authorization predicate is false for
	// the acting user.
	ErrForbidden = errors.New("not authorized for this incident")

	// ErrIllegalTransition is returned when the taxonomy forbids the
	// requested status transition.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrInvalidState is returned when a precondition on the current status
	// is not met, e.g. delete outside REPORTED.
	ErrInvalidState = errors.New("operation not allowed in current status")

	// ErrInvalidAssignee is returned when the target assignee lacks the
	// maintenance capability.
	ErrInvalidAssignee = errors.New("assignee must have maintenance role")
)

package gamification

import "errors"

// Sentinel errors returned by the engine. Handlers map these to HTTP
// statuses; wrap with fmt.Errorf("...: %w", err) to add context.
var (
	// ErrNotFound means the referenced assignment, chore, or user does not
	// exist or is outside the caller's family.
	ErrNotFound = errors.New("not found")

	// ErrNotAssignee means the caller tried to complete an assignment that
	// belongs to someone else.
	ErrNotAssignee = errors.New("not the assignee")

	// ErrNotGuardian means the operation requires a parent or admin of the
	// assignment's family.
	ErrNotGuardian = errors.New("guardian role required")

	// ErrInvalidStatus means the assignment is not in the state the
	// transition requires.
	ErrInvalidStatus = errors.New("invalid assignment status")

	// ErrValidation means the request payload failed validation.
	ErrValidation = errors.New("validation failed")
)

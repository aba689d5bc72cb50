package service

import "errors"

// Error taxonomy shared by every service. Controllers map these to HTTP
// statuses; services wrap them with context via fmt.Errorf("...: %w", ...).
var (
	// ErrValidation marks a missing or malformed required field.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound marks a referenced panel/question/user that does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrDeadlineExceeded marks an action attempted after the stage deadline.
	// It is always checked before any mutation.
	ErrDeadlineExceeded = errors.New("stage deadline has passed")
	// ErrForbidden marks a role that lacks permission for the action.
	ErrForbidden = errors.New("forbidden")
	// ErrInsufficientPool marks a distribution run that cannot satisfy the
	// per-student quota. The engine aborts cleanly instead of looping.
	ErrInsufficientPool = errors.New("not enough distinct questions to satisfy quota")
	// ErrUpstream marks a store/blob/notifier failure; callers may retry.
	ErrUpstream = errors.New("upstream service unavailable")
)

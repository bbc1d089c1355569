package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrProposalNotFound          = errors.New("proposal not found")
	ErrInvalidProposalID         = errors.New("invalid proposal id")
	ErrTemplateNotFound          = errors.New("pricing template not found")
	ErrSnapshotNotFound          = errors.New("snapshot not found")
	ErrInvalidTransition         = errors.New("invalid proposal status transition")
	ErrTokenInvalid              = errors.New("invalid or expired token")
	ErrTokenAlreadyUsed          = errors.New("token already used")
	ErrNotAvailableForAcceptance = errors.New("proposal not available for acceptance")
	ErrNotAccepted               = errors.New("proposal not accepted")
	ErrNoDepositRequired         = errors.New("no deposit required")
	ErrAlreadyPaid               = errors.New("deposit already paid")
	ErrNotExpired                = errors.New("proposal token has not expired")
	ErrDependencyFailure         = errors.New("dependency failure")
)

// ErrValidation is matched by every *ValidationError through errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalidField(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// dependencyError wraps a collaborator failure so callers can match
// ErrDependencyFailure while logs keep the cause.
func dependencyError(dep string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrDependencyFailure, dep, err)
}

package services

import "errors"

// Domain error kinds. Handlers translate these to HTTP statuses in one
// place; services wrap them with fmt.Errorf("...: %w", Err...) so the
// kind survives while the message stays specific.
var (
	// ErrValidation marks malformed or missing caller input.
	ErrValidation = errors.New("invalid input")

	// ErrForbidden marks an authenticated caller acting outside its
	// authority.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict marks an operation conflicting with current state,
	// e.g. a duplicate live application or a resubmitted assessment.
	ErrConflict = errors.New("conflict")

	// ErrInvalidTransition marks an application status change not
	// allowed by the transition table.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidCredentials covers unknown email and password mismatch
	// without distinguishing the two.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountUnverified gates login until the email is verified.
	ErrAccountUnverified = errors.New("email not verified")

	// ErrAccountDeactivated gates login for soft-deleted accounts.
	ErrAccountDeactivated = errors.New("account deactivated")

	// ErrUpstream marks a failed or unusable generative-text response.
	ErrUpstream = errors.New("upstream generation failed")
)

package services

import "errors"

var (
	ErrUnauthenticated   = errors.New("you must be signed in")
	ErrForbidden         = errors.New("You don't have permission to view this chat")
	ErrInvalidInput      = errors.New("invalid input")
	ErrSelfInterest      = errors.New("you cannot show interest in yourself")
	ErrDuplicateInterest = errors.New("You've already shown interest in this person for this event")
	ErrMatchNotFound     = errors.New("Match not found")
	ErrEventNotFound     = errors.New("Event not found")
	ErrUserNotFound      = errors.New("Profile not found")
	ErrEventFull         = errors.New("This event is full")
)

// invalid wraps ErrInvalidInput with a message the client can show.
func invalid(msg string) error {
	return &inputError{msg: msg}
}

type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func (e *inputError) Unwrap() error { return ErrInvalidInput }

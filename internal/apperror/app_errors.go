package apperror

import (
	"errors"
	"fmt"
)

// Kinds. Every error returned by the core wraps exactly one of these.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidState = errors.New("invalid state")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrAuth         = errors.New("authentication failed")
	ErrStorage      = errors.New("storage failure")
)

var (
	ErrMissingParticipant = fmt.Errorf("%w: both participants are required", ErrInvalidInput)
	ErrInvalidCell        = fmt.Errorf("%w: invalid cell index", ErrInvalidInput)
	ErrCellOccupied       = fmt.Errorf("%w: cell is already occupied", ErrInvalidInput)
	ErrInvalidUsername    = fmt.Errorf("%w: username must be 3-32 letters, digits, '_' or '-'", ErrInvalidInput)
	ErrWeakPassword       = fmt.Errorf("%w: password is too short", ErrInvalidInput)
	ErrMalformedBody      = fmt.Errorf("%w: malformed request body", ErrInvalidInput)

	ErrGameFinished       = fmt.Errorf("%w: game is already finished", ErrInvalidState)
	ErrGameNotCompleted   = fmt.Errorf("%w: game is not completed", ErrInvalidState)
	ErrNoRematchRequested = fmt.Errorf("%w: no rematch requested", ErrInvalidState)

	ErrNotYourTurn    = fmt.Errorf("%w: it's not your turn", ErrForbidden)
	ErrNotParticipant = fmt.Errorf("%w: you are not a participant in this game", ErrForbidden)

	ErrGameNotFound = fmt.Errorf("%w: game", ErrNotFound)
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	ErrRematchAlreadyRequested = fmt.Errorf("%w: rematch already requested", ErrConflict)
	ErrRematchAlreadyAccepted  = fmt.Errorf("%w: rematch already accepted", ErrConflict)
	ErrConcurrentModification  = fmt.Errorf("%w: game was modified concurrently", ErrConflict)
	ErrUserAlreadyExists       = fmt.Errorf("%w: username is taken", ErrConflict)

	ErrTokenRequired      = fmt.Errorf("%w: token required", ErrAuth)
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrAuth)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", ErrAuth)
)

var kinds = []error{
	ErrInvalidInput,
	ErrInvalidState,
	ErrForbidden,
	ErrNotFound,
	ErrConflict,
	ErrAuth,
	ErrStorage,
}

// KindOf - returns the kind sentinel wrapped by err, or nil for an untagged error.
func KindOf(err error) error {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}

	return nil
}

// Storage - tags a persistence failure.
func Storage(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

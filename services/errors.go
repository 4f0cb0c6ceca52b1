package services

import "errors"

// Errors shared across services and the HTTP error mapping.
var (
	// Not found
	ErrMatchNotFound      = errors.New("match not found")
	ErrTournamentNotFound = errors.New("tournament not found")

	// Validation and business rules
	ErrMatchInvalid        = errors.New("match requires at least one opponent")
	ErrInvalidBracket      = errors.New("bracket requires at least 2 participants with the host among them")
	ErrMatchNotCompletable = errors.New("match has no resolvable winner, ties are not allowed")
	ErrNoFieldsToUpdate    = errors.New("no fields to update")

	// Conflicts
	ErrMatchSlotsFull       = errors.New("both opponent slots are already occupied")
	ErrMatchAlreadyFinished = errors.New("match is already finished")
	ErrUpdateConflict       = errors.New("record was modified concurrently")
)

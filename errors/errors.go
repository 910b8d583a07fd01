package errors

import "fmt"

var (
	// Session core taxonomy. Every failure is scoped to the operation
	// that raised it; engines keep their last consistent state.
	ErrValidation     = fmt.Errorf("invalid input")
	ErrNoActiveUser   = fmt.Errorf("no active user")
	ErrFetchFailed    = fmt.Errorf("fetch failed")
	ErrRoomNotFound   = fmt.Errorf("room not found")
	ErrNotParticipant = fmt.Errorf("sender is not a participant of the room")

	// Authentication gate.
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")

	ErrWorkerPanic = fmt.Errorf("worker panic")
)

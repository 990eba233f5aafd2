package draw

import "errors"

// Public, stable errors for callers. The HTTP layer maps these to status
// codes; nothing here carries participant data.
var (
	ErrInsufficientParticipants = errors.New("need at least 2 participants")
	ErrDuplicateName            = errors.New("duplicate participant name")
	ErrDrawExhausted            = errors.New("could not generate valid assignments")
	ErrPoolExhausted            = errors.New("no names left to draw")
	ErrInvalidToken             = errors.New("invalid token")
	ErrNoDraw                   = errors.New("no draw configured")
	ErrInvalidInput             = errors.New("invalid input")
)

package services

import "errors"

// Error taxonomy surfaced by the chat services. Handlers map these onto HTTP
// statuses; anything else is treated as a store failure (500).
var (
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrNotParticipant = errors.New("user is not a participant in this conversation")
	ErrInvalidInput   = errors.New("invalid input")
)

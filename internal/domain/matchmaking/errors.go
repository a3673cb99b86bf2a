package matchmaking

import "errors"

var (
	ErrTicketNotFound     = errors.New("queue ticket not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrActiveTicketExists = errors.New("player already has a queued ticket for this mode and region")
	ErrInvalidTransition  = errors.New("invalid state transition")
)

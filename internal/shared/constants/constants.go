package constants

const (
	// HTTP Headers
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"

	// Context keys
	ContextKeyPlayerID  = "player_id"
	ContextKeyRequestID = "request_id"

	// Database table names
	TableQueueTickets = "queue_tickets"
	TableMatches      = "matches"
	TableProgressions = "player_progressions"

	// Error messages
	ErrMsgInternalServerError = "Internal server error occurred"
	ErrMsgUnauthorized        = "Unauthorized access"
)

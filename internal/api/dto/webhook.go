package dto

// WebhookAckResponse is the only success shape webhook endpoints return.
// Unhandled topics get the same acknowledgement so providers stop
// redelivering them.
type WebhookAckResponse struct {
	Success bool   `json:"success"`
	Topic   string `json:"topic,omitempty"`
}

// ErrorResponse is intentionally generic: webhook endpoints must not leak
// which check failed to a caller probing the signature scheme.
type ErrorResponse struct {
	Error string `json:"error"`
}

var (
	ErrResponseUnauthorized = ErrorResponse{Error: "unauthorized"}
	ErrResponseNotFound     = ErrorResponse{Error: "not found"}
	ErrResponseInternal     = ErrorResponse{Error: "internal error"}
)

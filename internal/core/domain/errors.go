package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnsupportedMIMEType indicates the upload MIME type is not on the allow-list
	ErrUnsupportedMIMEType = errors.New("unsupported mime type")

	// ErrFileTooLarge indicates the upload exceeds the size cap
	ErrFileTooLarge = errors.New("file too large")

	// ErrDocumentBusy indicates the document is already being processed or indexed
	ErrDocumentBusy = errors.New("document already claimed")

	// ErrDimensionMismatch indicates an embedding length differs from the index
	// dimension. This is a fatal configuration error, never retried.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrChatTurn indicates a model or tool failure during a conversation turn.
	// Thread memory is left unmodified when this is returned.
	ErrChatTurn = errors.New("chat turn failed")

	// ErrServiceUnavailable indicates the AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)

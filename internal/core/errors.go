package core

import "errors"

var (
	// ErrIndexUnavailable means the document index could not be loaded or read.
	ErrIndexUnavailable = errors.New("index unavailable")
	// ErrEmbedding means the query could not be turned into a vector.
	ErrEmbedding = errors.New("embedding failed")
	// ErrModelUnavailable means the completion service call failed.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrEmptyQuery is returned for blank queries before any remote call.
	ErrEmptyQuery = errors.New("empty query")
	// ErrInvalidHistory is returned for caller-supplied history with roles
	// other than user and assistant.
	ErrInvalidHistory = errors.New("invalid conversation history")
	// ErrSessionNotFound is returned for unknown session ids.
	ErrSessionNotFound = errors.New("session not found")
)

package chat

import "errors"

var (
	// ErrNoRetrievalService is returned when the view has no session to query.
	ErrNoRetrievalService = errors.New("retrieval service is required")
)

package models

import "errors"

// Sentinel errors for action construction.
var (
	ErrUnknownActionType = errors.New("unknown action type")
	ErrInvalidPayload    = errors.New("invalid payload")
)

// Sentinel errors for executor operations. These surface as structured
// failures, never as panics.
var (
	ErrActionNotFound    = errors.New("action not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

package domain

import "errors"

// Generic sentinel errors shared by repositories and services.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// Registration ledger rejections. None of these are retried by the ledger itself.
var (
	ErrEventNotFound = errors.New("event not found")
	ErrEventNotOpen  = errors.New("event is not open for registration")
	ErrEventFull     = errors.New("event is full")
	ErrNotRegistered = errors.New("not registered for this event")
)

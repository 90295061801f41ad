package models

import "errors"

// Error taxonomy shared by the store, the session and the HTTP surface.
var (
	ErrAuthFailure       = errors.New("authentication failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrPostNotFound      = errors.New("post not found")
	ErrInvalidCategory   = errors.New("invalid post category")
	ErrUnknownField      = errors.New("unknown field")
	ErrCorruptDocument   = errors.New("corrupt nation document")
	ErrPersistence       = errors.New("persistence failure")
)

package types

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrActivityNotFound   = errors.New("activity not found in city catalog")
	ErrTemplateNotFound   = errors.New("day template not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidShareToken  = errors.New("invalid or expired share token")
	ErrInvalidInput       = errors.New("invalid input")
)

// ErrConcurrentUpdate is returned when an itinerary changed between read and write.
var ErrConcurrentUpdate = errors.New("itinerary was modified concurrently, reload and retry")

package services

import (
	"errors"
)

// Error taxonomy shared by the handlers. Matched with errors.Is; anything
// else coming out of a service is a store failure and maps to a 500.
var (
	ErrEmptyText    = errors.New("note text is empty")
	ErrTextTooLong  = errors.New("note text exceeds 200 characters")
	ErrBlocked      = errors.New("ip is blocked")
	ErrNotFound     = errors.New("not found")
	ErrNotRenotable = errors.New("target note cannot be renoted")
	ErrEmptyName    = errors.New("emoji name is empty")
	ErrNoFile       = errors.New("no image file supplied")
)

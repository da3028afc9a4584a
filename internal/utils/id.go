package utils

import "github.com/google/uuid"

// NewID returns an opaque unique identifier. Correlation identifiers must
// not be guessable, so a spoofed reply cannot match someone else's pending
// request.
func NewID() string {
	return uuid.NewString()
}

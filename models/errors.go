package models

import "errors"

// Domain error taxonomy. Controllers map these onto HTTP status codes;
// everything unrecognized is treated as a storage failure (500).
var (
	ErrNotFound       = errors.New("not found")
	ErrEmailTaken     = errors.New("email already registered")
	ErrVoteOutOfRange = errors.New("urgency vote must be between 1 and 5")
)

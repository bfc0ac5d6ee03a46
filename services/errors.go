package services

import "errors"

// Client-visible failure conditions. Handlers map these onto status codes;
// anything else is a 500.
var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyEnrolled = errors.New("already enrolled in this challenge")
)

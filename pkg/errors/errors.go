package votecast_errors

import "errors"

// Common errors
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrAlreadyExists = errors.New("already exists")
	ErrAlreadyVoted  = errors.New("already voted")
	ErrRateLimited   = errors.New("rate limited")
	ErrPersistence   = errors.New("persistence failed")
)

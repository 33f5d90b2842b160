package server

import "errors"

var (
	// ErrBind indicates a single listen attempt failed.
	ErrBind = errors.New("server: bind failed")

	// ErrRequiredBind indicates a required listen attempt failed.
	ErrRequiredBind = errors.New("server: required bind failed")

	// ErrNoAttempts indicates Bind was called with nothing to bind.
	ErrNoAttempts = errors.New("server: no listen attempts")
)

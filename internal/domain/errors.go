package domain

import "errors"

var (
	// ErrValidation marks a malformed or incomplete request body.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks missing transport credentials or settings.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransport marks a provider rejecting or failing a send.
	ErrTransport = errors.New("transport error")
	// ErrDataLoad marks an unreadable historical dataset.
	ErrDataLoad = errors.New("data load error")
)

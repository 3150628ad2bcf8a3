package sitepreview

import (
	"errors"
	"fmt"
)

// Sentinel errors for site preview operations.
var (
	ErrNotFound    = errors.New("sitepreview: not found")
	ErrRateLimited = errors.New("sitepreview: rate limited by server")
	ErrBadRequest  = errors.New("sitepreview: bad request")
	ErrServer      = errors.New("sitepreview: server error")
	ErrInvalidURL  = errors.New("sitepreview: invalid url")
	ErrNotHTML     = errors.New("sitepreview: response is not html")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op  string // Operation: "fetch", "parse"
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("sitepreview %s [%s]: %v", e.Op, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError creates an Error with context.
func wrapError(op, url string, err error) error {
	return &Error{
		Op:  op,
		URL: url,
		Err: err,
	}
}

package scraper

import "fmt"

// StatusError is returned when the provider answers with a non-2xx status
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status code: %d", e.Code)
}

// ParseError is returned when the provider response cannot be decoded
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse availability response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

package service

import "errors"

// ErrInvalidInput marks request payloads that fail presence checks. Wrap it
// with fmt.Errorf("%w: ...") so handlers can classify with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

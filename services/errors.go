package services

import (
	"errors"
	"fmt"
)

// Configuration errors. Callers match them with errors.Is; the wrapping
// ValidationError says which fee field or module triggered it.
var (
	ErrNegativeFee        = errors.New("fee percentage cannot be negative")
	ErrInvalidWidth       = errors.New("invalid module width")
	ErrInvalidAlignment   = errors.New("invalid module alignment")
	ErrDuplicateFooter    = errors.New("template has more than one footer module")
	ErrMissingFooter      = errors.New("template has no footer module")
	ErrMissingModule      = errors.New("template is missing a required module")
	ErrUnregisteredModule = errors.New("module type has no renderer")
	ErrTemplateNotFound   = errors.New("template not found")
	ErrQuoteNotFound      = errors.New("quote not found")
	ErrUnknownFormat      = errors.New("unknown export format")
)

// ValidationError wraps a sentinel error with the location that caused it.
type ValidationError struct {
	Err      error
	Field    string
	ModuleID string
	Index    int
	Details  string
}

func (e *ValidationError) Error() string {
	where := e.Field
	if e.ModuleID != "" {
		where = fmt.Sprintf("module %q (#%d)", e.ModuleID, e.Index+1)
	}
	msg := e.Err.Error()
	if where != "" {
		msg = where + ": " + msg
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func moduleError(err error, m Module, index int, details string) *ValidationError {
	return &ValidationError{Err: err, ModuleID: m.Label(), Index: index, Details: details}
}

package tables

import (
	"context"
	"errors"

	errorslib "github.com/goliatone/go-errors"
	"github.com/goliatone/go-tables/export"
)

// ErrorKind defines table error kinds.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "not_found"
	KindConfiguration ErrorKind = "configuration"
	KindInternal      ErrorKind = "internal"
	KindNotImpl       ErrorKind = "not_implemented"
)

var (
	// ErrPageNotAnInteger is wrapped when a requested page number cannot be parsed.
	ErrPageNotAnInteger = errors.New("page number is not an integer")
	// ErrEmptyPage is wrapped when a requested page is out of range.
	ErrEmptyPage = errors.New("page contains no results")
	// ErrMissingValue is returned by Accessor.Resolve when a path segment is absent.
	ErrMissingValue = errors.New("value not found")
)

// Error wraps table errors with a kind.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new table error.
func NewError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindFromError maps an error to its table error kind. Export errors keep
// their meaning.
func KindFromError(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var tableErr *Error
	if errors.As(err, &tableErr) {
		return tableErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindInternal
	}
	switch export.KindFromError(err) {
	case export.KindValidation:
		return KindValidation
	case export.KindNotFound:
		return KindNotFound
	case export.KindNotImpl:
		return KindNotImpl
	}
	return KindInternal
}

// AsGoError maps an error into a go-errors error.
func AsGoError(err error) *errorslib.Error {
	if err == nil {
		return nil
	}

	var ge *errorslib.Error
	if errors.As(err, &ge) {
		return ge
	}

	var tableErr *Error
	if !errors.As(err, &tableErr) {
		var exportErr *export.ExportError
		if errors.As(err, &exportErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return export.AsGoError(err)
		}
	}

	msg := err.Error()
	if tableErr != nil && tableErr.Msg != "" {
		msg = tableErr.Msg
	}

	switch KindFromError(err) {
	case KindValidation:
		return errorslib.New(msg, errorslib.CategoryValidation).WithTextCode("validation")
	case KindNotFound:
		return errorslib.New(msg, errorslib.CategoryNotFound).WithTextCode("not_found")
	case KindConfiguration:
		return errorslib.New(msg, errorslib.CategoryInternal).WithTextCode("improperly_configured")
	case KindNotImpl:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("not_implemented")
	default:
		return errorslib.New(msg, errorslib.CategoryInternal).WithTextCode("internal")
	}
}

package usecase

import (
	"errors"
	"strings"
)

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeLocked       = "ACCOUNT_LOCKED"
	CodeConflict     = "CONFLICT"

	CodeQueryFailed  = "QUERY_FAILED"
	CodeWriteFailed  = "WRITE_FAILED"
	CodeUpstreamFail = "UPSTREAM_FAILURE"
)

// DomainError is a caller-visible failure (bad input, missing record, auth).
type DomainError struct {
	Code    string
	Message string
	Fields  []ValidationError
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError wraps a collaborator failure. Its message is never shown to clients.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// HasCode reports whether err is a DomainError with the given code.
func HasCode(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}

func validationFailed(errs []ValidationError) *DomainError {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed: " + strings.Join(parts, ", "),
		Fields:  errs,
	}
}

func invalid(field, message string) *DomainError {
	return validationFailed([]ValidationError{{Field: field, Message: message}})
}

func notFound(message string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: message}
}

func conflict(message string) *DomainError {
	return &DomainError{Code: CodeConflict, Message: message}
}

func unauthorized() *DomainError {
	return &DomainError{Code: CodeUnauthorized, Message: "invalid credentials or session"}
}

func queryFailed(what string, err error) *TechnicalError {
	return &TechnicalError{Code: CodeQueryFailed, Message: "query failed: " + what, Err: err}
}

func writeFailed(what string, err error) *TechnicalError {
	return &TechnicalError{Code: CodeWriteFailed, Message: "write failed: " + what, Err: err}
}

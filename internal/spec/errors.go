package spec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorCode categorizes build errors for clearer handling and messaging.
type ErrorCode string

const (
	UndefinedReference    ErrorCode = "UndefinedReference"
	DuplicateKey          ErrorCode = "DuplicateKey"
	SchemaExampleMismatch ErrorCode = "SchemaExampleMismatch"
	Integrity             ErrorCode = "Integrity"
	Serialization         ErrorCode = "Serialization"
	InvalidDefinition     ErrorCode = "InvalidDefinition"
	Validation            ErrorCode = "Validation"
	InputError            ErrorCode = "InputError"
	ParseError            ErrorCode = "ParseError"
)

// Sentinels for errors.Is matching by code.
var (
	ErrUndefinedReference    = &SpecError{Code: UndefinedReference}
	ErrDuplicateKey          = &SpecError{Code: DuplicateKey}
	ErrSchemaExampleMismatch = &SpecError{Code: SchemaExampleMismatch}
	ErrIntegrity             = &SpecError{Code: Integrity}
	ErrSerialization         = &SpecError{Code: Serialization}
	ErrInvalidDefinition     = &SpecError{Code: InvalidDefinition}
	ErrValidation            = &SpecError{Code: Validation}
)

// SpecError is a structured error naming the registry and key involved, when known.
type SpecError struct {
	Code     ErrorCode
	Message  string
	Registry string
	Key      string
	Location string // file path, for loader errors
	Cause    error
}

func (e *SpecError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *SpecError) Unwrap() error { return e.Cause }

// Is reports whether target is a SpecError with the same code.
func (e *SpecError) Is(target error) bool {
	t, ok := target.(*SpecError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func undefinedRef(registry, key string) *SpecError {
	return &SpecError{
		Code:     UndefinedReference,
		Message:  fmt.Sprintf("%s: undefined reference %q", registry, key),
		Registry: registry,
		Key:      key,
	}
}

func duplicateKey(registry, key string) *SpecError {
	return &SpecError{
		Code:     DuplicateKey,
		Message:  fmt.Sprintf("%s: key %q is already defined", registry, key),
		Registry: registry,
		Key:      key,
	}
}

func invalidDef(registry, key, format string, args ...any) *SpecError {
	return &SpecError{
		Code:     InvalidDefinition,
		Message:  fmt.Sprintf("%s: %q: %s", registry, key, fmt.Sprintf(format, args...)),
		Registry: registry,
		Key:      key,
	}
}

// fromValidationErrors turns validator field errors into one InvalidDefinition.
func fromValidationErrors(registry, key string, err error) *SpecError {
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return &SpecError{Code: InvalidDefinition, Message: fmt.Sprintf("%s: %q: %v", registry, key, err), Registry: registry, Key: key, Cause: err}
	}
	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		messages = append(messages, ve.Field()+": "+FormatValidationError(ve))
	}
	return &SpecError{
		Code:     InvalidDefinition,
		Message:  fmt.Sprintf("%s: %q: %s", registry, key, strings.Join(messages, "; ")),
		Registry: registry,
		Key:      key,
		Cause:    err,
	}
}

// FormatValidationError converts a validator.FieldError to a human-readable message.
func FormatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "required_if":
		return fmt.Sprintf("must be set when %s", ve.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	case "url":
		return "must be a valid URL"
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}

// Package errors provides the coded error type shared by the ring pipeline,
// the container patcher, the stores, the HTTP API and the CLI.
//
// Every code belongs to one failure class of the pipeline:
//   - CONFIGURATION: out-of-range ring parameters. The solver always clamps
//     them, so the code only names the class in diagnostics and config
//     loading.
//   - TEMPLATE_UNAVAILABLE: regeneration was requested before a module
//     template was decoded.
//   - DECODE: a template buffer could not be decoded.
//   - CONTAINER_FORMAT: the binary container is malformed (the container
//     package carries the sub-reason).
//   - CONTAINER_TRUNCATION: an overrunning chunk was clipped. Patching
//     records it as a warning and carries on.
//
// Usage:
//
//	err := errors.New(errors.ErrCodeTemplateUnavailable, "no module template loaded")
//	if errors.Is(err, errors.ErrCodeTemplateUnavailable) {
//	    // load a template first
//	}
//	err = errors.Wrap(errors.ErrCodeDecode, cause, "decode template %s", name)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error class.
type Code string

const (
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeConfiguration Code = "CONFIGURATION"

	ErrCodeTemplateUnavailable Code = "TEMPLATE_UNAVAILABLE"
	ErrCodeDecode              Code = "DECODE"

	ErrCodeContainerFormat     Code = "CONTAINER_FORMAT"
	ErrCodeContainerTruncation Code = "CONTAINER_TRUNCATION"

	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeNetwork  Code = "NETWORK_ERROR"
	ErrCodeStore    Code = "STORE_ERROR"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

type codeInfo struct {
	status int
	hint   string
}

var codes = map[Code]codeInfo{
	ErrCodeInvalidInput:        {http.StatusBadRequest, ""},
	ErrCodeConfiguration:       {http.StatusBadRequest, "check the config file and RINGTOWER_* variables"},
	ErrCodeTemplateUnavailable: {http.StatusConflict, "load a module template first (--template or template_source)"},
	ErrCodeDecode:              {http.StatusBadRequest, "the template must be a GLB or glTF JSON file with at least one mesh"},
	ErrCodeContainerFormat:     {http.StatusBadRequest, ""},
	ErrCodeContainerTruncation: {http.StatusOK, ""},
	ErrCodeNotFound:            {http.StatusNotFound, ""},
	ErrCodeNetwork:             {http.StatusBadGateway, "the download is retried; check the URL and connectivity"},
	ErrCodeStore:               {http.StatusInternalServerError, "check the store backend settings"},
	ErrCodeInternal:            {http.StatusInternalServerError, ""},
	ErrCodeUnsupported:         {http.StatusNotImplemented, ""},
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix for coded
// errors, and err.Error() otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Hint returns a short remedy for the error's code, or "" when there is
// nothing useful to suggest.
func Hint(err error) string {
	return codes[GetCode(err)].hint
}

// HTTPStatus maps err to the status used by the API server. Uncoded errors
// are internal.
func HTTPStatus(err error) int {
	if info, ok := codes[GetCode(err)]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

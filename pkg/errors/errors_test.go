package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorString(t *testing.T) {
	err := New(ErrCodeDecode, "decode template %s", "arch.glb")
	if err.Error() != "DECODE: decode template arch.glb" {
		t.Errorf("Error() = %q", err.Error())
	}

	cause := errors.New("unexpected EOF")
	wrapped := Wrap(ErrCodeContainerFormat, cause, "parse container")
	if wrapped.Error() != "CONTAINER_FORMAT: parse container: unexpected EOF" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
	if !errors.Is(wrapped, cause) || errors.Unwrap(wrapped) != cause {
		t.Error("wrapped error should unwrap to its cause")
	}
}

func TestCodes(t *testing.T) {
	inner := New(ErrCodeNotFound, "asset tower.glb")
	tests := []struct {
		name    string
		err     error
		code    Code
		message string
	}{
		{"coded", New(ErrCodeTemplateUnavailable, "no template"), ErrCodeTemplateUnavailable, "no template"},
		{"outermost wins", Wrap(ErrCodeStore, inner, "get asset"), ErrCodeStore, "get asset"},
		{"fmt wrapped", fmt.Errorf("export: %w", inner), ErrCodeNotFound, "asset tower.glb"},
		{"plain", errors.New("plain"), "", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false", tt.code)
			}
			if Is(tt.err, ErrCodeUnsupported) {
				t.Error("Is(UNSUPPORTED) = true")
			}
			if got := UserMessage(tt.err); got != tt.message {
				t.Errorf("UserMessage() = %q, want %q", got, tt.message)
			}
		})
	}

	if Is(nil, ErrCodeInternal) || GetCode(nil) != "" {
		t.Error("nil error should carry no code")
	}
	if Is(errors.New("plain"), "") {
		t.Error("Is with an empty code should be false")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidInput, "bad"), http.StatusBadRequest},
		{New(ErrCodeContainerFormat, "bad magic"), http.StatusBadRequest},
		{New(ErrCodeNotFound, "missing"), http.StatusNotFound},
		{New(ErrCodeTemplateUnavailable, "none"), http.StatusConflict},
		{Wrap(ErrCodeNetwork, errors.New("timeout"), "fetch"), http.StatusBadGateway},
		{New(ErrCodeUnsupported, "pdf"), http.StatusNotImplemented},
		{New(Code("SOMETHING_NEW"), "?"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestHint(t *testing.T) {
	if Hint(New(ErrCodeTemplateUnavailable, "none")) == "" {
		t.Error("TEMPLATE_UNAVAILABLE should carry a hint")
	}
	if got := Hint(New(ErrCodeNotFound, "missing")); got != "" {
		t.Errorf("NOT_FOUND hint = %q, want none", got)
	}
	if got := Hint(errors.New("plain")); got != "" {
		t.Errorf("plain error hint = %q", got)
	}
}

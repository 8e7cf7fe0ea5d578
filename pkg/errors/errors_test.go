package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidSchema, "column %q not found", "Year")

	if err.Code != ErrCodeInvalidSchema {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidSchema)
	}

	if err.Message != `column "Year" not found` {
		t.Errorf("Message = %v", err.Message)
	}

	expected := `INVALID_SCHEMA: column "Year" not found`
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "fetch dataset")

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if err.Error() != "NETWORK_ERROR: fetch dataset: connection refused" {
		t.Errorf("Error() = %v", err.Error())
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeInvalidYear, "x"), ErrCodeInvalidYear, true},
		{"non-matching code", New(ErrCodeInvalidYear, "x"), ErrCodeNetwork, false},
		{"outer code wins", Wrap(ErrCodeNetwork, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeNetwork, true},
		{"plain error", errors.New("plain"), ErrCodeInvalidInput, false},
		{"nil", nil, ErrCodeInvalidInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCodeAndUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidScale, "unknown scale %q", "cubic")
	if GetCode(err) != ErrCodeInvalidScale {
		t.Errorf("GetCode() = %v", GetCode(err))
	}
	if UserMessage(err) != `unknown scale "cubic"` {
		t.Errorf("UserMessage() = %v", UserMessage(err))
	}

	plain := errors.New("boom")
	if GetCode(plain) != "" {
		t.Errorf("GetCode(plain) = %v, want empty", GetCode(plain))
	}
	if UserMessage(plain) != "boom" {
		t.Errorf("UserMessage(plain) = %v", UserMessage(plain))
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidYear, "x"), 400},
		{New(ErrCodeFileNotFound, "x"), 404},
		{New(ErrCodeUnsupported, "x"), 501},
		{New(ErrCodeNetwork, "x"), 502},
		{errors.New("x"), 500},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidYear, "x"), ExitUsage},
		{New(ErrCodeInvalidSchema, "x"), ExitDataErr},
		{Wrap(ErrCodeFileNotFound, errors.New("enoent"), "x"), ExitNoInput},
		{New(ErrCodeTimeout, "x"), ExitUnavailable},
		{New(ErrCodeInvalidConfig, "x"), ExitConfig},
		{errors.New("x"), ExitFailure},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

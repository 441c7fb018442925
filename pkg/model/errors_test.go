package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	err := &Error{Kind: KindTransport, Op: "ListURLs", Status: 404, Message: "not found"}
	if got := err.Error(); got != "not found" {
		t.Errorf("Error() = %q, want %q", got, "not found")
	}
	want := "ListURLs: [TRANSPORT_ERROR 404] not found"
	if got := err.Detail(); got != want {
		t.Errorf("Detail() = %q, want %q", got, want)
	}
}

func TestIsKind_Wrapped(t *testing.T) {
	base := NewValidationError("Shorten", "URL is required")
	wrapped := fmt.Errorf("shorten: %w", base)

	if !IsKind(wrapped, KindValidation) {
		t.Error("expected wrapped error to be KindValidation")
	}
	if IsKind(wrapped, KindTransport) {
		t.Error("did not expect KindTransport")
	}
	if IsKind(errors.New("plain"), KindValidation) {
		t.Error("plain errors have no kind")
	}
}

func TestIsUnauthorized(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"401", &Error{Kind: KindAuth, Status: 401, Message: "Unauthorized"}, true},
		{"403", &Error{Kind: KindAuth, Status: 403, Message: "Forbidden"}, false},
		{"wrapped 401", fmt.Errorf("list: %w", &Error{Status: 401}), true},
		{"message only", errors.New("HTTP 401"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUnauthorized(tt.err); got != tt.want {
				t.Errorf("IsUnauthorized() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewAuthError_CarriesStatus(t *testing.T) {
	cause := &Error{Kind: KindAuth, Status: 401, Message: "Invalid login attempt"}
	err := NewAuthError("Login", "Invalid username or password", cause)
	if err.Status != 401 {
		t.Errorf("Status = %d, want 401", err.Status)
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable with errors.Is")
	}
}

func TestMessageOf(t *testing.T) {
	if got := MessageOf(&Error{}, "Registration failed"); got != "Registration failed" {
		t.Errorf("empty message: got %q", got)
	}
	if got := MessageOf(&Error{Message: "username taken"}, "x"); got != "username taken" {
		t.Errorf("got %q", got)
	}
	if got := MessageOf(errors.New("dial tcp: refused"), "x"); got != "dial tcp: refused" {
		t.Errorf("got %q", got)
	}
	if got := MessageOf(nil, "fallback"); got != "fallback" {
		t.Errorf("nil: got %q", got)
	}
}

func TestSession_Present(t *testing.T) {
	tests := []struct {
		name string
		s    Session
		want bool
	}{
		{"empty", Session{}, false},
		{"token only", Session{Token: "t"}, false},
		{"user only", Session{User: &User{Username: "alice"}}, false},
		{"both", Session{Token: "t", User: &User{Username: "alice"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Present(); got != tt.want {
				t.Errorf("Present() = %v, want %v", got, tt.want)
			}
		})
	}
}

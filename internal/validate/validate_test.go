package validate

import (
	"testing"

	"github.com/me/linkshort/pkg/model"
)

func TestStruct_Shorten(t *testing.T) {
	tests := []struct {
		name    string
		input   Shorten
		wantMsg string
	}{
		{"valid", Shorten{OriginalURL: "https://example.com/a?b=c"}, ""},
		{"valid with alias", Shorten{OriginalURL: "http://example.com", CustomCode: "my-link_1"}, ""},
		{"empty url", Shorten{}, "URL is required"},
		{"malformed url", Shorten{OriginalURL: "not a url"}, "Please enter a valid URL (http:// or https://)"},
		{"non-http scheme", Shorten{OriginalURL: "ftp://example.com/file"}, "Please enter a valid URL (http:// or https://)"},
		{"alias too short", Shorten{OriginalURL: "https://example.com", CustomCode: "ab"}, "Custom alias must be at least 3 characters"},
		{"alias bad chars", Shorten{OriginalURL: "https://example.com", CustomCode: "a b/c"}, "Custom alias may only contain letters, digits, '-' and '_'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct("Shorten", tt.input)
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %q", tt.wantMsg)
			}
			if !model.IsKind(err, model.KindValidation) {
				t.Errorf("kind: expected validation error, got %v", err)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestStruct_Signup(t *testing.T) {
	valid := Signup{Username: "alice", Email: "alice@example.com", Password: "secret1", ConfirmPassword: "secret1"}
	if err := Struct("Signup", valid); err != nil {
		t.Fatalf("valid signup rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(s *Signup)
		wantMsg string
	}{
		{"short username", func(s *Signup) { s.Username = "al" }, "Username must be at least 3 characters"},
		{"bad email", func(s *Signup) { s.Email = "alice@" }, "Please enter a valid email address"},
		{"short password", func(s *Signup) { s.Password, s.ConfirmPassword = "12345", "12345" }, "Password must be at least 6 characters"},
		{"mismatch", func(s *Signup) { s.ConfirmPassword = "secret2" }, "Passwords do not match"},
		{"missing email", func(s *Signup) { s.Email = "" }, "Email is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := Struct("Signup", in)
			if err == nil || err.Error() != tt.wantMsg {
				t.Errorf("error = %v, want %q", err, tt.wantMsg)
			}
		})
	}
}

func TestStruct_Login(t *testing.T) {
	if err := Struct("Login", Login{Username: "alice"}); err == nil || err.Error() != "Password is required" {
		t.Errorf("error = %v", err)
	}
	if err := Struct("Login", Login{Username: "a", Password: "b"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStruct_Code(t *testing.T) {
	if err := Struct("Check", Code{ShortCode: "abc123"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := Struct("Check", Code{ShortCode: "../etc"}); err == nil {
		t.Error("expected error for path-like code")
	}
}

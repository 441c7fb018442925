package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/me/linkshort/internal/devgateway"
	"github.com/me/linkshort/pkg/model"
)

// testEnv is a dev gateway plus an isolated home and session file.
type testEnv struct {
	gatewayURL  string
	sessionPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	srvLogger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	ts := httptest.NewServer(devgateway.New(devgateway.DefaultConfig(), srvLogger).Handler())
	t.Cleanup(ts.Close)

	return &testEnv{
		gatewayURL:  ts.URL + "/gateway",
		sessionPath: filepath.Join(t.TempDir(), "session.json"),
	}
}

// run executes one CLI invocation, as a separate process would.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--gateway", e.gatewayURL, "--session-path", e.sessionPath}, args...))

	err := root.Execute()
	return buf.String(), err
}

func (e *testEnv) mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := e.run(t, stdin, args...)
	if err != nil {
		t.Fatalf("%v: %v\noutput: %s", args, err, out)
	}
	return out
}

func (e *testEnv) persisted(t *testing.T) map[string]string {
	t.Helper()
	data, err := os.ReadFile(e.sessionPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read session file: %v", err)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("parse session file: %v", err)
	}
	return m
}

func TestSignupLoginLogout(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "alice\nalice@example.com\nsecret1\nsecret1\n", "signup")
	if !strings.Contains(out, "Signed in as alice") {
		t.Errorf("signup output: %s", out)
	}
	stored := env.persisted(t)
	if stored[model.KeyAuthToken] == "" || !strings.Contains(stored[model.KeyCurrentUser], `"username":"alice"`) {
		t.Fatalf("persisted session = %v", stored)
	}

	// A fresh invocation restores the session from disk.
	out = env.mustRun(t, "", "whoami")
	if !strings.Contains(out, "Username:  alice") {
		t.Errorf("whoami output: %s", out)
	}
	if !strings.Contains(out, "expires") {
		t.Errorf("whoami should show token expiry: %s", out)
	}

	out = env.mustRun(t, "", "logout")
	if !strings.Contains(out, "Signed out") {
		t.Errorf("logout output: %s", out)
	}
	if stored := env.persisted(t); stored != nil {
		t.Errorf("session file remains after logout: %v", stored)
	}

	if _, err := env.run(t, "", "whoami"); err == nil {
		t.Error("whoami should fail when signed out")
	}

	out = env.mustRun(t, "", "login", "-u", "alice", "-p", "secret1")
	if !strings.Contains(out, "Signed in as alice") {
		t.Errorf("login output: %s", out)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "", "signup", "-u", "alice", "--email", "alice@example.com", "-p", "secret1")
	env.mustRun(t, "", "logout")

	_, err := env.run(t, "alice\nwrong\n", "login")
	if err == nil || err.Error() != "Invalid username or password" {
		t.Fatalf("error = %v", err)
	}
	if stored := env.persisted(t); stored != nil {
		t.Errorf("failed login persisted a session: %v", stored)
	}
}

func TestSignup_PasswordMismatch(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "bob\nbob@example.com\nsecret1\nsecret2\n", "signup")
	if err == nil || err.Error() != "Passwords do not match" {
		t.Fatalf("error = %v", err)
	}
}

func TestSignup_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "", "signup", "-u", "alice", "--email", "alice@example.com", "-p", "secret1")
	env.mustRun(t, "", "logout")

	_, err := env.run(t, "", "signup", "-u", "alice", "--email", "other@example.com", "-p", "secret1")
	if err == nil || !strings.Contains(err.Error(), "already taken") {
		t.Fatalf("error = %v", err)
	}
}

var codePattern = regexp.MustCompile(`Code:\s+(\S+)`)
var idPattern = regexp.MustCompile(`ID:\s+(\S+)`)

func TestLinkCommands(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "", "signup", "-u", "alice", "--email", "alice@example.com", "-p", "secret1")

	out := env.mustRun(t, "", "shorten", "https://example.com/article", "--alias", "promo")
	if !strings.Contains(out, "/gateway/urls/redirect/promo") {
		t.Errorf("shorten output: %s", out)
	}
	m := idPattern.FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("no ID in output: %s", out)
	}
	promoID := m[1]

	out = env.mustRun(t, "", "shorten", "https://example.com/other")
	if codePattern.FindStringSubmatch(out) == nil {
		t.Fatalf("no code in output: %s", out)
	}

	out = env.mustRun(t, "", "list")
	if !strings.Contains(out, "promo") || !strings.Contains(out, "https://example.com/other") {
		t.Errorf("list output: %s", out)
	}
	if !strings.Contains(out, "2 links") {
		t.Errorf("list should count links: %s", out)
	}

	if out := env.mustRun(t, "", "check", "promo"); !strings.Contains(out, "promo is taken") {
		t.Errorf("check output: %s", out)
	}
	if out := env.mustRun(t, "", "check", "free-code"); !strings.Contains(out, "free-code is available") {
		t.Errorf("check output: %s", out)
	}

	if out := env.mustRun(t, "", "resolve", "promo"); strings.TrimSpace(out) != "https://example.com/article" {
		t.Errorf("resolve output: %q", out)
	}

	env.mustRun(t, "", "delete", promoID)
	if out := env.mustRun(t, "", "check", "promo"); !strings.Contains(out, "available") {
		t.Errorf("promo should be free after delete: %s", out)
	}
}

func TestShorten_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "", "signup", "-u", "alice", "--email", "alice@example.com", "-p", "secret1")

	tests := []struct {
		args    []string
		wantErr string
	}{
		{[]string{"shorten", "example.com"}, "Please enter a valid URL"},
		{[]string{"shorten", "https://example.com", "--alias", "x"}, "at least 3"},
	}
	for _, tt := range tests {
		_, err := env.run(t, "", tt.args...)
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("%v: error = %v, want containing %q", tt.args, err, tt.wantErr)
		}
	}
}

func TestCommandsRequireSession(t *testing.T) {
	env := newTestEnv(t)
	for _, args := range [][]string{
		{"list"},
		{"shorten", "https://example.com"},
		{"delete", "abc"},
	} {
		if _, err := env.run(t, "", args...); err != errNotSignedIn {
			t.Errorf("%v: error = %v, want errNotSignedIn", args, err)
		}
	}
}

func TestRevokedSessionSignsOut(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "", "signup", "-u", "alice", "--email", "alice@example.com", "-p", "secret1")

	// Revoke the token behind the CLI's back.
	token := env.persisted(t)[model.KeyAuthToken]
	req, _ := http.NewRequest(http.MethodPost, env.gatewayURL+"/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	resp.Body.Close()

	_, err = env.run(t, "", "list")
	if err == nil || !strings.Contains(err.Error(), "session expired") {
		t.Fatalf("error = %v", err)
	}
	if stored := env.persisted(t); stored != nil {
		t.Errorf("session file remains after 401: %v", stored)
	}
}

func TestQRCommand(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "", "qr", "promo")
	if !strings.Contains(out, "qr-promo.png") {
		t.Errorf("qr output: %s", out)
	}
	data, err := os.ReadFile("qr-promo.png")
	if err != nil {
		t.Fatalf("read png: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("not a PNG")
	}

	out = env.mustRun(t, "", "qr", "promo", "--terminal")
	if !strings.Contains(out, "/urls/redirect/promo") {
		t.Errorf("terminal output should end with the URL: %s", out)
	}
}

func TestQRCommand_RejectsInvalidCode(t *testing.T) {
	env := newTestEnv(t)

	for _, code := range []string{"../../x", "a/b", "has space"} {
		_, err := env.run(t, "", "qr", code)
		if err == nil || !strings.Contains(err.Error(), "may only contain") {
			t.Errorf("qr %q error = %v", code, err)
		}
	}
	matches, _ := filepath.Glob("qr-*")
	if len(matches) != 0 {
		t.Errorf("qr wrote files for invalid codes: %v", matches)
	}
}

func TestSQLiteSessionStore(t *testing.T) {
	env := newTestEnv(t)
	env.sessionPath = filepath.Join(t.TempDir(), "session.db")

	env.mustRun(t, "", "--session-store", "sqlite", "signup", "-u", "alice", "--email", "alice@example.com", "-p", "secret1")
	out := env.mustRun(t, "", "--session-store", "sqlite", "whoami")
	if !strings.Contains(out, "alice") {
		t.Errorf("whoami output: %s", out)
	}
}

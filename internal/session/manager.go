package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/me/linkshort/internal/validate"
	"github.com/me/linkshort/pkg/gateway"
	"github.com/me/linkshort/pkg/model"
)

// Messages surfaced to the user.
const (
	MsgNoToken            = "no token received"
	MsgInvalidCredentials = "Invalid username or password"
	MsgLoginFailed        = "Login failed"
	MsgRegistrationFailed = "Registration failed"
)

// Gateway is the subset of the gateway client the manager drives.
type Gateway interface {
	Login(ctx context.Context, username, password string) (*model.LoginResponse, error)
	Register(ctx context.Context, username, password, email string) (*gateway.Response, error)
	Logout(ctx context.Context) error
}

// Manager implements restore, login, signup and logout on top of a State.
type Manager struct {
	state   *State
	gateway Gateway
	logger  *slog.Logger
	now     func() time.Time

	restoreOnce sync.Once
	restored    model.Session
	restoreErr  error
}

// Option configures optional Manager settings.
type Option func(*Manager)

// WithClock overrides the time source used to stamp new sessions.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a session manager.
func NewManager(state *State, gw Gateway, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		state:   state,
		gateway: gw,
		logger:  logger.With("component", "session-manager"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the session-context object the manager mutates.
func (m *Manager) State() *State {
	return m.state
}

// Restore loads the persisted session. It runs once; later calls return the
// first result without touching the store again.
func (m *Manager) Restore(ctx context.Context) (model.Session, error) {
	m.restoreOnce.Do(func() {
		m.restored, m.restoreErr = m.state.load(ctx)
		if m.restoreErr == nil && m.restored.Present() {
			m.logger.Debug("session restored", "username", m.restored.Username())
		}
	})
	if m.restoreErr != nil {
		return model.Session{}, m.restoreErr
	}
	return m.state.Current(), nil
}

// Login signs in and persists the new session.
func (m *Manager) Login(ctx context.Context, username, password string) (model.Session, error) {
	const op = "Login"
	if err := validate.Struct(op, validate.Login{Username: username, Password: password}); err != nil {
		return model.Session{}, err
	}

	resp, err := m.gateway.Login(ctx, username, password)
	if err != nil {
		m.logger.Debug("login rejected", "username", username, "error", err)
		return model.Session{}, loginError(op, err)
	}
	if resp == nil || resp.Token == "" {
		return model.Session{}, model.NewAuthError(op, MsgNoToken, nil)
	}

	sess := model.Session{
		Token: resp.Token,
		User:  &model.User{Username: username, CreatedAt: m.now().UTC()},
	}
	if err := m.state.Set(ctx, sess); err != nil {
		return model.Session{}, err
	}
	m.logger.Info("signed in", "username", username)
	return m.state.Current(), nil
}

// loginError rewrites gateway login failures into user-facing auth errors.
func loginError(op string, err error) error {
	if model.IsKind(err, model.KindValidation) {
		return err
	}
	msg := model.MessageOf(err, MsgLoginFailed)
	if strings.Contains(strings.ToLower(msg), "invalid login") {
		msg = MsgInvalidCredentials
	}
	return model.NewAuthError(op, msg, err)
}

// Signup registers the account and then signs in with the same credentials.
// Registration alone never establishes a session.
func (m *Manager) Signup(ctx context.Context, username, password, email string) (model.Session, error) {
	const op = "Signup"
	if err := validate.Struct(op, validate.Signup{Username: username, Email: email, Password: password}); err != nil {
		return model.Session{}, err
	}

	if _, err := m.gateway.Register(ctx, username, password, email); err != nil {
		m.logger.Debug("registration rejected", "username", username, "error", err)
		return model.Session{}, model.NewRegistrationError(op, model.MessageOf(err, MsgRegistrationFailed), err)
	}
	m.logger.Info("account registered", "username", username)

	return m.Login(ctx, username, password)
}

// Logout revokes the token on the gateway when possible and always clears
// the local session. It never fails from the caller's point of view.
func (m *Manager) Logout(ctx context.Context) {
	if m.state.Token() != "" {
		if err := m.gateway.Logout(ctx); err != nil {
			m.logger.Warn("gateway logout failed; clearing local session anyway", "error", err)
		}
	}
	if err := m.state.Clear(context.WithoutCancel(ctx)); err != nil {
		m.logger.Warn("failed to remove persisted session", "error", err)
	}
	m.logger.Info("signed out")
}

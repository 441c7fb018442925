// Package session owns the client's authentication state: the bearer token,
// the current user, their persisted mirror, and the operations that change
// them.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/me/linkshort/internal/store"
	"github.com/me/linkshort/pkg/model"
)

// ErrPartialSession is returned when asked to hold a token without a user or
// a user without a token.
var ErrPartialSession = errors.New("session must have both a token and a user")

// State is the single owner of the session. Readers call Current or Token;
// writers go through Set and Clear, which update the store before returning.
type State struct {
	mu      sync.RWMutex
	store   store.Store
	current model.Session
	logger  *slog.Logger

	notifyMu sync.Mutex
	subMu    sync.Mutex
	subs     map[int]func(model.Session)
	nextID   int
}

// NewState returns an absent session backed by st.
func NewState(st store.Store, logger *slog.Logger) *State {
	return &State{
		store:  st,
		logger: logger.With("component", "session"),
		subs:   make(map[int]func(model.Session)),
	}
}

// Current returns a copy of the session.
func (s *State) Current() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySession(s.current)
}

// Token returns the bearer token, or "" when signed out.
func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// Set persists sess and makes it current. Memory is only updated once both
// keys are written.
func (s *State) Set(ctx context.Context, sess model.Session) error {
	if !sess.Present() {
		return ErrPartialSession
	}
	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	s.mu.Lock()
	if err := s.store.SetAll(ctx, map[string]string{
		model.KeyAuthToken:   sess.Token,
		model.KeyCurrentUser: string(userJSON),
	}); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist session: %w", err)
	}
	s.current = copySession(sess)

	s.logger.Debug("session set", "username", sess.Username())
	s.unlockAndNotify(s.current)
	return nil
}

// Clear drops the session and removes both persisted keys. Memory is cleared
// even if the store fails, so a dead token is never used again.
func (s *State) Clear(ctx context.Context) error {
	_, err := s.clear(ctx, "")
	return err
}

// Invalidate is called by the gateway client when the gateway rejects token.
// The session is cleared only if token is still the current one; a session
// installed while the rejected request was in flight is kept. It never fails.
func (s *State) Invalidate(ctx context.Context, token string, cause error) {
	if token == "" {
		return
	}
	cleared, err := s.clear(context.WithoutCancel(ctx), token)
	if !cleared {
		s.logger.Debug("ignoring rejection of a replaced token")
		return
	}
	s.logger.Info("session invalidated by gateway", "reason", model.MessageOf(cause, "unauthorized"))
	if err != nil {
		s.logger.Warn("failed to remove persisted session", "error", err)
	}
}

// clear empties the session. A non-empty token makes it conditional: the
// session is left alone unless it still holds that token.
func (s *State) clear(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	if token != "" && s.current.Token != token {
		s.mu.Unlock()
		return false, nil
	}
	wasPresent := s.current.Present()
	s.current = model.Session{}
	err := s.store.Delete(ctx, model.KeyAuthToken, model.KeyCurrentUser)
	if err != nil {
		err = fmt.Errorf("remove persisted session: %w", err)
	}

	if !wasPresent {
		s.mu.Unlock()
		return true, err
	}
	s.logger.Debug("session cleared")
	s.unlockAndNotify(model.Session{})
	return true, err
}

// load reads the persisted record into memory. Anything short of a token
// plus a decodable user leaves the session absent and the keys removed.
func (s *State) load(ctx context.Context) (model.Session, error) {
	token, hasToken, err := s.store.Get(ctx, model.KeyAuthToken)
	if err != nil {
		return model.Session{}, fmt.Errorf("read %s: %w", model.KeyAuthToken, err)
	}
	userJSON, hasUser, err := s.store.Get(ctx, model.KeyCurrentUser)
	if err != nil {
		return model.Session{}, fmt.Errorf("read %s: %w", model.KeyCurrentUser, err)
	}

	if !hasToken && !hasUser {
		return model.Session{}, nil
	}

	if hasToken && token != "" && hasUser {
		var user model.User
		err := json.Unmarshal([]byte(userJSON), &user)
		switch {
		case err != nil:
			s.logger.Warn("stored user is corrupt; starting signed out", "error", err)
		case user.Username == "":
			s.logger.Warn("stored user has no username; starting signed out")
		default:
			sess := model.Session{Token: token, User: &user}
			s.mu.Lock()
			s.current = sess
			s.unlockAndNotify(sess)
			return copySession(sess), nil
		}
	}

	s.logger.Debug("discarding incomplete persisted session", "has_token", hasToken, "has_user", hasUser)
	if err := s.store.Delete(ctx, model.KeyAuthToken, model.KeyCurrentUser); err != nil {
		s.logger.Warn("failed to remove incomplete session", "error", err)
	}
	return model.Session{}, nil
}

// Subscribe registers fn to be called after every change, in the order the
// changes happened. fn must not change the session. The returned function
// removes the subscription.
func (s *State) Subscribe(fn func(model.Session)) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// unlockAndNotify releases s.mu and hands snap, the session as it stood
// under the lock, to every subscriber. notifyMu is taken before s.mu is
// released so deliveries follow mutation order.
func (s *State) unlockAndNotify(snap model.Session) {
	snap = copySession(snap)
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	s.subMu.Lock()
	fns := make([]func(model.Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(copySession(snap))
	}
}

func copySession(sess model.Session) model.Session {
	if sess.User != nil {
		u := *sess.User
		sess.User = &u
	}
	return sess
}

package devgateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/me/linkshort/internal/validate"
	"github.com/me/linkshort/pkg/model"
)

const (
	tokenIssuer = "linkshort-devgateway"

	ctxKeyClaims ctxKey = "claims"
)

var errTokenRevoked = errors.New("token revoked")

// account is a registered user.
type account struct {
	Username     string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// tokenClaims are the claims carried by issued tokens.
type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

func (s *Server) issueToken(username string) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.config.TokenTTL)
	claims := tokenClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// parseToken verifies raw and checks it has not been revoked.
func (s *Server) parseToken(raw string) (*tokenClaims, error) {
	if raw == "" {
		return nil, errors.New("missing token")
	}
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(s.config.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return nil, errTokenRevoked
	}
	return claims, nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := validate.Struct("Register", validate.Signup{Username: req.Username, Email: req.Email, Password: req.Password}); err != nil {
		respondValidation(w, "Register", err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password", "error", err)
		respondMessage(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	s.mu.Lock()
	if _, taken := s.users[strings.ToLower(req.Username)]; taken {
		s.mu.Unlock()
		respondMessage(w, http.StatusConflict, fmt.Sprintf("Username '%s' is already taken.", req.Username))
		return
	}
	s.users[strings.ToLower(req.Username)] = &account{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	s.mu.Unlock()

	s.logger.Info("user registered", "username", req.Username)
	respondMessage(w, http.StatusCreated, "User registered successfully.")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validate.Struct("Login", validate.Login{Username: req.Username, Password: req.Password}); err != nil {
		respondValidation(w, "Login", err.Error())
		return
	}

	s.mu.Lock()
	acct := s.users[strings.ToLower(strings.TrimSpace(req.Username))]
	s.mu.Unlock()

	if acct == nil || bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(req.Password)) != nil {
		respondMessage(w, http.StatusUnauthorized, "Invalid login attempt.")
		return
	}

	token, expires, err := s.issueToken(acct.Username)
	if err != nil {
		s.logger.Error("issue token", "error", err)
		respondMessage(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	respondJSON(w, http.StatusOK, model.LoginResponse{
		Token:     token,
		Username:  acct.Username,
		ExpiresAt: &expires,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims, _ := r.Context().Value(ctxKeyClaims).(*tokenClaims)
	if claims != nil {
		now := s.now()
		s.mu.Lock()
		for id, exp := range s.revoked {
			if exp.Before(now) {
				delete(s.revoked, id)
			}
		}
		s.revoked[claims.ID] = claims.ExpiresAt.Time
		s.mu.Unlock()
	}
	respondMessage(w, http.StatusOK, "Logged out successfully.")
}
